//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

type playerInfo struct {
	ID           string
	AccessToken  string
	RefreshToken string
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func registerPlayer(t *testing.T, baseURL, email, password string) playerInfo {
	t.Helper()

	payload := map[string]string{
		"email":        email,
		"password":     password,
		"display_name": fmt.Sprintf("it-player-%d", time.Now().UnixNano()),
	}
	resp := postJSON(t, fmt.Sprintf("%s/v1/auth/register", baseURL), "", payload)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status: %d", resp.StatusCode)
	}
	return decodeTokens(t, resp)
}

func loginPlayer(t *testing.T, baseURL, email, password string) playerInfo {
	t.Helper()

	resp := postJSON(t, fmt.Sprintf("%s/v1/auth/login", baseURL), "", map[string]string{
		"email":    email,
		"password": password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	return decodeTokens(t, resp)
}

func decodeTokens(t *testing.T, resp *http.Response) playerInfo {
	t.Helper()

	var out struct {
		PlayerID     string `json:"player_id"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode token response failed: %v", err)
	}
	if out.AccessToken == "" {
		t.Fatalf("empty access token in response")
	}
	return playerInfo{
		ID:           out.PlayerID,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}
}

func postJSON(t *testing.T, url, token string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	return resp
}

func getJSON(t *testing.T, url, token string, out interface{}) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
