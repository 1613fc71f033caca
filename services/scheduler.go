// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartProgressionScheduler runs the two background jobs: the streak
// inactivity sweep (so a lapsed streak is observable before the user's
// next activity) and the periodic catalog refresh.
func (s *ProgressionService) StartProgressionScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 6 hours: zero out streaks that lapsed
	_, _ = sched.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(func() {
			reset, err := s.Streaks.SweepInactiveStreaks()
			if err != nil {
				log.Printf("[Scheduler] streak sweep failed: %v", err)
				return
			}
			if reset > 0 {
				log.Printf("🧹 Streak sweep: zeroed %d lapsed streaks", reset)
			}
		}),
	)

	// Every hour: pick up admin edits to the catalogs
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			if err := s.Catalog.Refresh(); err != nil {
				log.Printf("[Scheduler] catalog refresh failed: %v", err)
			}
		}),
	)
}
