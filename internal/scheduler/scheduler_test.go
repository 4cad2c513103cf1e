package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/config"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (p *countingProcessor) ProcessDue(context.Context) (int, error) {
	p.calls.Add(1)
	return 1, p.err
}

func TestSchedulerRunsNotificationSweep(t *testing.T) {
	conf := &config.Config{}
	conf.Notification.PollInterval = 50 * time.Millisecond

	for name, procErr := range map[string]error{
		"success": nil,
		"failure": errors.New("redis down"),
	} {
		t.Run(name, func(t *testing.T) {
			processor := &countingProcessor{err: procErr}
			s, err := New(conf, processor)
			require.NoError(t, err)

			s.Start()
			defer s.Stop()

			assert.Eventually(t, func() bool {
				return processor.calls.Load() >= 2
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestSchedulerStopCancelsJobs(t *testing.T) {
	conf := &config.Config{}
	conf.Notification.PollInterval = time.Hour

	s, err := New(conf, &countingProcessor{})
	require.NoError(t, err)

	s.Start()
	s.Stop()
	assert.Error(t, s.ctx.Err())
}
