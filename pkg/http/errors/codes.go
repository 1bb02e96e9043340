package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Account errors
	ErrCodeRegistrationFailed = "registration_failed"
	ErrCodeLoginFailed        = "login_failed"
	ErrCodeRefreshFailed      = "refresh_failed"
	ErrCodeEmailTaken         = "email_taken"

	// Match / rating errors
	ErrCodeInvalidMatch        = "invalid_match"
	ErrCodeMatchNotFound       = "match_not_found"
	ErrCodePlayerNotFound      = "player_not_found"
	ErrCodeNoMatches           = "no_matches"
	ErrCodeMatchCreationFailed = "match_creation_failed"

	// Wordle errors
	ErrCodeInvalidGuess          = "invalid_guess"
	ErrCodeAlreadyCompletedToday = "already_completed_today"
	ErrCodeNoMoreGuesses         = "no_more_guesses"
	ErrCodeInconsistentState     = "inconsistent_state"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// Event errors
	ErrCodeEventNotFound = "event_not_found"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
)
