//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestPlayersDirectory(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")

	player := registerPlayer(t, baseURL, uniqueEmail("directory"), "testpassword123")

	var players []struct {
		ID     string `json:"id"`
		Rating int    `json:"rating"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/players", baseURL), "", &players); status != http.StatusOK {
		t.Fatalf("unexpected list status: %d", status)
	}

	found := false
	for _, p := range players {
		if p.ID == player.ID {
			found = true
			if p.Rating == 0 {
				t.Fatal("listed player has no rating")
			}
		}
	}
	if !found {
		t.Fatal("registered player missing from directory")
	}

	var detail struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		Rating      int    `json:"rating"`
	}
	if status := getJSON(t, fmt.Sprintf("%s/v1/players/%s", baseURL, player.ID), "", &detail); status != http.StatusOK {
		t.Fatalf("unexpected detail status: %d", status)
	}
	if detail.ID != player.ID || detail.DisplayName == "" {
		t.Fatalf("detail does not match registered player: %+v", detail)
	}
}
