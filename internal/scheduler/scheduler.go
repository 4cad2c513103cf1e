// Package scheduler runs the periodic background jobs of the API.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/fx"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/pkg/logger/log"
)

// DueProcessor processes the notifications whose delay has elapsed.
type DueProcessor interface {
	ProcessDue(ctx context.Context) (int, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

func New(conf *config.Config, notifications DueProcessor) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		ctx:       ctx,
		cancel:    cancel,
	}

	// Singleton mode skips a tick while the previous sweep is still running.
	_, err := s.scheduler.Every(conf.Notification.PollInterval).
		SingletonMode().
		Tag("notifications").
		Do(s.run, "notifications", notifications.ProcessDue)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("schedule notifications: %w", err)
	}
	return s, nil
}

func (s *Scheduler) run(name string, job func(ctx context.Context) (int, error)) {
	n, err := job(s.ctx)
	if err != nil {
		log.Errorw(s.ctx, "scheduled job failed", "job", name, "error", err)
		return
	}
	if n > 0 {
		log.Infow(s.ctx, "scheduled job done", "job", name, "processed", n)
	}
}

func (s *Scheduler) Start() {
	log.Infow(s.ctx, "starting scheduler", "jobs", len(s.scheduler.Jobs()))
	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.cancel()
}

// RegisterScheduler ties the scheduler to the application lifecycle.
func RegisterScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}
