package players

import (
	"math"

	"github.com/mcdev12/auctionpro/internal/models"
)

// PerformanceScore rates a player on a 0-10 scale from their raw stats.
// Pure function: batting weighs 40% (strike rate prioritized), bowling
// 35% (economy prioritized, lower is better), fielding 15%, overall
// form/experience 10%. Roles only accrue the components they play.
func PerformanceScore(stats models.PlayerStats, playerType models.PlayerType) float64 {
	var score float64

	if playerType == models.PlayerTypeBatsman || playerType == models.PlayerTypeAllRounder || playerType == models.PlayerTypeWicketKeeper {
		var batting float64
		if stats.StrikeRate > 0 {
			batting += math.Min(stats.StrikeRate/150*4, 4)
		}
		if stats.BattingAverage > 0 {
			batting += math.Min(stats.BattingAverage/50*2, 2)
		}
		batting += float64(stats.Centuries)*0.5 + float64(stats.Fifties)*0.3
		score += math.Min(batting, 4) * 0.4
	}

	if playerType == models.PlayerTypeBowler || playerType == models.PlayerTypeAllRounder {
		var bowling float64
		if stats.EconomyRate > 0 {
			bowling += math.Max(0, (8-stats.EconomyRate)/8*4)
		}
		if stats.WicketsTaken > 0 {
			bowling += math.Min(float64(stats.WicketsTaken)/100*2, 2)
		}
		score += math.Min(bowling, 3.5) * 0.35
	}

	fielding := float64(stats.Catches)*0.1 + float64(stats.RunOuts)*0.2
	score += math.Min(fielding, 1.5) * 0.15

	overall := stats.RecentFormRating/10*0.5 + math.Min(float64(stats.ExperienceYears)/15, 1)*0.5
	score += overall * 0.1

	return math.Min(score*10, 10.0)
}
