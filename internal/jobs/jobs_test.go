package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProcessor struct {
	calls atomic.Int32
}

func (m *mockProcessor) ProcessPending(ctx context.Context) (int, int) {
	m.calls.Add(1)
	return 1, 0
}

type mockSweeper struct {
	limit int
	err   error
}

func (m *mockSweeper) Sweep(ctx context.Context, limit int) (int, error) {
	m.limit = limit
	return 0, m.err
}

func TestEmailQueueJob_Run(t *testing.T) {
	p := &mockProcessor{}
	job := NewEmailQueueJob(p, zap.NewNop())

	job.Run(context.Background())

	assert.Equal(t, int32(1), p.calls.Load())
	assert.Equal(t, "email_queue", job.Name())
}

func TestAttachmentCleanupJob_Run(t *testing.T) {
	s := &mockSweeper{err: errors.New("db down")}
	job := NewAttachmentCleanupJob(s, zap.NewNop())

	job.Run(context.Background())

	assert.Equal(t, cleanupBatchSize, s.limit)
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.Register("every minute", NewEmailQueueJob(&mockProcessor{}, zap.NewNop()))

	assert.Error(t, err)
}

func TestScheduler_RunsRegisteredJobs(t *testing.T) {
	p := &mockProcessor{}
	s := NewScheduler(zap.NewNop())
	require.NoError(t, s.Register("* * * * * *", NewEmailQueueJob(p, zap.NewNop())))

	s.Start()
	assert.Eventually(t, func() bool { return p.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
