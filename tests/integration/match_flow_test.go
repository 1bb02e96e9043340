//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMatchRecordingAdjustsRatings(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	winner := registerPlayer(t, baseURL, uniqueEmail("winner"), "testpassword123")
	loser := registerPlayer(t, baseURL, uniqueEmail("loser"), "testpassword123")

	resp := postJSON(t, fmt.Sprintf("%s/v1/matches", baseURL), winner.AccessToken, map[string]interface{}{
		"winner_id":     winner.ID,
		"loser_id":      loser.ID,
		"winning_score": 21,
		"losing_score":  15,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected record status: %d", resp.StatusCode)
	}

	var winnerRating struct {
		Rating int `json:"rating"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/players/%s/rating", baseURL, winner.ID), "", &winnerRating); status != http.StatusOK {
		t.Fatalf("unexpected rating status: %d", status)
	}
	if winnerRating.Rating <= 1000 {
		t.Fatalf("winner rating did not increase: %d", winnerRating.Rating)
	}

	var loserRating struct {
		Rating int `json:"rating"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/players/%s/rating", baseURL, loser.ID), "", &loserRating); status != http.StatusOK {
		t.Fatalf("unexpected rating status: %d", status)
	}
	if loserRating.Rating >= 1000 {
		t.Fatalf("loser rating did not decrease: %d", loserRating.Rating)
	}
}

func TestRecentMatchesAndLeaderboard(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	a := registerPlayer(t, baseURL, uniqueEmail("board-a"), "testpassword123")
	b := registerPlayer(t, baseURL, uniqueEmail("board-b"), "testpassword123")

	resp := postJSON(t, fmt.Sprintf("%s/v1/matches", baseURL), a.AccessToken, map[string]interface{}{
		"winner_id":     a.ID,
		"loser_id":      b.ID,
		"winning_score": 21,
		"losing_score":  19,
	})
	resp.Body.Close()

	var recent []struct {
		MatchID string `json:"match_id"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/matches/recent", baseURL), "", &recent); status != http.StatusOK {
		t.Fatalf("unexpected recent status: %d", status)
	}
	if len(recent) == 0 {
		t.Fatal("recent matches is empty after recording")
	}

	var board struct {
		Leaders []struct {
			PlayerID string `json:"player_id"`
		} `json:"leaders"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/leaderboard", baseURL), "", &board); status != http.StatusOK {
		t.Fatalf("unexpected leaderboard status: %d", status)
	}
	if len(board.Leaders) == 0 {
		t.Fatal("leaderboard has no leaders after recording a match")
	}
}
