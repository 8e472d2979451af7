package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"scorebot/internal/handler"
	"scorebot/internal/service"
)

// Digest posts the leaderboard on a cron schedule.
type Digest struct {
	sched  gocron.Scheduler
	board  *service.LeaderboardService
	poster Poster
}

// NewDigest schedules the leaderboard post. crontab uses the five-field form.
func NewDigest(crontab string, board *service.LeaderboardService, poster Poster) (*Digest, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	d := &Digest{sched: sched, board: board, poster: poster}
	_, err = sched.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(d.post),
		gocron.WithName("leaderboard-digest"),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to schedule digest %q: %w", crontab, err)
	}
	return d, nil
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (d *Digest) Run(ctx context.Context) error {
	d.sched.Start()
	log.Info().Msg("Leaderboard digest scheduled")
	<-ctx.Done()
	return d.sched.Shutdown()
}

func (d *Digest) post() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	top, err := d.board.Top(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Digest failed to load leaderboard")
		return
	}
	if len(top) == 0 {
		return
	}
	if err := d.poster.Post(ctx, "Daily standings\n\n"+handler.FormatLeaderboard(top)); err != nil {
		log.Error().Err(err).Msg("Digest failed to post")
	}
}
