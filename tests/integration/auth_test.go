//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestRegisterFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	player := registerPlayer(t, baseURL, uniqueEmail("register"), "testpassword123")

	if player.ID == "" {
		t.Fatal("player ID is empty")
	}
	if player.RefreshToken == "" {
		t.Fatal("refresh token is empty")
	}
}

func TestLoginFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	email := uniqueEmail("login")
	password := "testpassword123"

	registered := registerPlayer(t, baseURL, email, password)
	logged := loginPlayer(t, baseURL, email, password)

	if logged.ID != registered.ID {
		t.Fatalf("login returned a different player: %s vs %s", logged.ID, registered.ID)
	}
}

func TestRefreshFlow(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	player := registerPlayer(t, baseURL, uniqueEmail("refresh"), "testpassword123")

	resp := postJSON(t, fmt.Sprintf("%s/v1/auth/refresh", baseURL), "", map[string]string{
		"refresh_token": player.RefreshToken,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected refresh status: %d", resp.StatusCode)
	}
	refreshed := decodeTokens(t, resp)
	if refreshed.AccessToken == player.AccessToken {
		t.Fatal("refresh returned the same access token")
	}
}

func TestMeRequiresAuth(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	if status := getJSON(t, fmt.Sprintf("%s/v1/auth/me", baseURL), "", nil); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	player := registerPlayer(t, baseURL, uniqueEmail("me"), "testpassword123")

	var me struct {
		Email string `json:"email"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/auth/me", baseURL), player.AccessToken, &me); status != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", status)
	}
}
