// Package recommend ranks catalog players for a buyer. This is the
// deterministic ranking the platform falls back on when no external
// advisory service is configured: filter to the buyer's preferred player
// types, then take the top performers.
package recommend

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/models"
)

// DefaultLimit is the number of players recommended per buyer.
const DefaultLimit = 5

// TopPlayers returns up to limit player IDs ranked by performance score,
// restricted to the buyer's preferred types when any are set.
func TopPlayers(profile *models.BuyerProfile, catalog []models.Player, limit int) []uuid.UUID {
	if limit <= 0 {
		limit = DefaultLimit
	}

	preferred := make(map[string]bool, len(profile.PreferredTypes))
	for _, pt := range profile.PreferredTypes {
		preferred[pt] = true
	}

	filtered := make([]models.Player, 0, len(catalog))
	for _, p := range catalog {
		if len(preferred) > 0 && !preferred[string(p.PlayerType)] {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].PerformanceScore > filtered[j].PerformanceScore
	})

	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	ids := make([]uuid.UUID, len(filtered))
	for i, p := range filtered {
		ids[i] = p.ID
	}
	return ids
}
