package leaderboard

import (
	"fmt"

	ws "github.com/rankerhq/ranker/pkg/http/ws"
)

func toWSEntries(leaders []Leader) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(leaders))
	for i, l := range leaders {
		result[i] = ws.LeaderboardEntry{
			Rank:        l.Rank,
			PlayerID:    l.PlayerID.String(),
			DisplayName: l.DisplayName,
			Rating:      l.Rating,
			Trend:       l.Trend,
		}
	}
	return result
}

func scoreLine(winning, losing int) string {
	return fmt.Sprintf("%d-%d", winning, losing)
}
