package recommend

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/auctionpro/internal/models"
	"github.com/stretchr/testify/assert"
)

func catalogPlayer(pt models.PlayerType, score float64) models.Player {
	return models.Player{
		ID:               uuid.New(),
		Name:             "player",
		PlayerType:       pt,
		PerformanceScore: score,
	}
}

func TestTopPlayersFiltersByPreferredType(t *testing.T) {
	batsman := catalogPlayer(models.PlayerTypeBatsman, 9)
	bowler := catalogPlayer(models.PlayerTypeBowler, 8)
	keeper := catalogPlayer(models.PlayerTypeWicketKeeper, 7)

	profile := &models.BuyerProfile{PreferredTypes: []string{"bowler"}}
	got := TopPlayers(profile, []models.Player{batsman, bowler, keeper}, 5)

	assert.Equal(t, []uuid.UUID{bowler.ID}, got)
}

func TestTopPlayersNoPreferenceMeansWholeCatalog(t *testing.T) {
	low := catalogPlayer(models.PlayerTypeBatsman, 2)
	high := catalogPlayer(models.PlayerTypeBowler, 9)
	mid := catalogPlayer(models.PlayerTypeAllRounder, 5)

	profile := &models.BuyerProfile{}
	got := TopPlayers(profile, []models.Player{low, high, mid}, 5)

	assert.Equal(t, []uuid.UUID{high.ID, mid.ID, low.ID}, got)
}

func TestTopPlayersRespectsLimit(t *testing.T) {
	var catalog []models.Player
	for i := 0; i < 10; i++ {
		catalog = append(catalog, catalogPlayer(models.PlayerTypeBatsman, float64(i)))
	}

	profile := &models.BuyerProfile{}
	got := TopPlayers(profile, catalog, 3)

	assert.Len(t, got, 3)
	assert.Equal(t, catalog[9].ID, got[0])
	assert.Equal(t, catalog[8].ID, got[1])
	assert.Equal(t, catalog[7].ID, got[2])
}

func TestTopPlayersDefaultLimit(t *testing.T) {
	var catalog []models.Player
	for i := 0; i < 10; i++ {
		catalog = append(catalog, catalogPlayer(models.PlayerTypeBowler, float64(i)))
	}

	profile := &models.BuyerProfile{}
	got := TopPlayers(profile, catalog, 0)
	assert.Len(t, got, DefaultLimit)
}

func TestTopPlayersEmptyCatalog(t *testing.T) {
	profile := &models.BuyerProfile{PreferredTypes: []string{"batsman"}}
	assert.Empty(t, TopPlayers(profile, nil, 5))
}

// Equal scores keep catalog order: the sort is stable.
func TestTopPlayersStableOnTies(t *testing.T) {
	first := catalogPlayer(models.PlayerTypeBatsman, 5)
	second := catalogPlayer(models.PlayerTypeBatsman, 5)

	profile := &models.BuyerProfile{}
	got := TopPlayers(profile, []models.Player{first, second}, 5)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, got)
}
