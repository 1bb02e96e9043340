//go:build integration
// +build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	wsmsg "github.com/rankerhq/ranker/pkg/http/ws"
)

func TestLiveFeedBroadcastsMatchRecorded(t *testing.T) {
	baseHTTP := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	baseWS := envOrDefault("INTEGRATION_WS_URL", "ws://localhost:8080/ws/live")

	conn, _, err := websocket.DefaultDialer.Dial(baseWS, nil)
	if err != nil {
		t.Fatalf("dial live feed: %v", err)
	}
	defer conn.Close()

	winner := registerPlayer(t, baseHTTP, uniqueEmail("ws-winner"), "testpassword123")
	loser := registerPlayer(t, baseHTTP, uniqueEmail("ws-loser"), "testpassword123")

	resp := postJSON(t, fmt.Sprintf("%s/v1/matches", baseHTTP), winner.AccessToken, map[string]interface{}{
		"winner_id":     winner.ID,
		"loser_id":      loser.ID,
		"winning_score": 21,
		"losing_score":  12,
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected record status: %d", resp.StatusCode)
	}

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(time.Until(deadline)))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read live feed: %v", err)
		}

		var msg wsmsg.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Type == wsmsg.TypeMatchRecorded || msg.Type == wsmsg.TypeLeaderboardUpdate {
			return
		}
	}
	t.Fatal("no match broadcast received before deadline")
}

func TestLiveFeedPingPong(t *testing.T) {
	baseWS := envOrDefault("INTEGRATION_WS_URL", "ws://localhost:8080/ws/live")

	conn, _, err := websocket.DefaultDialer.Dial(baseWS, nil)
	if err != nil {
		t.Fatalf("dial live feed: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(wsmsg.Message{Type: wsmsg.TypePing, RequestID: "it-1"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wsmsg.Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read pong: %v", err)
		}
		if msg.Type == wsmsg.TypePong {
			if msg.RequestID != "it-1" {
				t.Fatalf("pong echoed wrong request id: %s", msg.RequestID)
			}
			return
		}
	}
}
