package progress

import "balagh/internal/models"

const (
	// LevelUpThreshold is the minimum single award that earns a level
	LevelUpThreshold = 20
	// StarsPerCorrectAnswer is awarded per correct quiz answer
	StarsPerCorrectAnswer = 10
)

// Advance applies one qualifying activity on today to a streak.
//
// Same day leaves the streak as is, the day after the last activity extends
// it, and anything else (no history, an unreadable date, a gap, or a date in
// the future) restarts it at 1. The returned date is always today.
func Advance(lastActive *string, streak int, today Date) (int, string) {
	next := 1
	if lastActive != nil {
		if last, err := ParseDate(*lastActive); err == nil {
			switch last.DaysUntil(today) {
			case 0:
				next = streak
				if next < 1 {
					next = 1
				}
			case 1:
				next = streak + 1
			}
		}
	}
	return next, today.String()
}

// ApplyStreak runs Advance against p in place
func ApplyStreak(p *models.KidsProgress, today Date) {
	streak, date := Advance(p.LastActiveDate, p.DailyStreak, today)
	p.DailyStreak = streak
	p.LastActiveDate = &date
}

// GameAward builds the update for finishing a game that earned stars on top
// of current. A level is gained only when the single award reaches
// LevelUpThreshold.
func GameAward(current models.KidsProgress, earned int) models.ProgressUpdate {
	if earned < 0 {
		earned = 0
	}
	stars := current.Stars + earned
	update := models.ProgressUpdate{Stars: &stars}
	if earned >= LevelUpThreshold {
		level := current.Level + 1
		update.Level = &level
	}
	return update
}

// QuizStars converts correct answers into stars
func QuizStars(correct int) int {
	if correct < 0 {
		return 0
	}
	return correct * StarsPerCorrectAnswer
}
