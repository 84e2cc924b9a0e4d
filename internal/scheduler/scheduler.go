// Package scheduler runs the recurring report reminder: working days only,
// at the configured wall time in the configured timezone.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Reminder is the broadcast the job triggers.
type Reminder interface {
	SendReminders(ctx context.Context) (int, error)
}

// Start creates the scheduler with one weekday job and starts it. The
// returned scheduler should be shut down alongside the bot.
func Start(r Reminder, loc *time.Location, hour, minute int) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.WeeklyJob(1,
			gocron.NewWeekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
			gocron.NewAtTimes(gocron.NewAtTime(uint(hour), uint(minute), 0)),
		),
		gocron.NewTask(func() {
			sent, err := r.SendReminders(context.Background())
			if err != nil {
				log.Printf("Error broadcasting scheduled reminder: %v", err)
				return
			}
			log.Printf("Scheduled reminder sent to %d users", sent)
		}),
	)
	if err != nil {
		return nil, err
	}

	s.Start()
	return s, nil
}
