package closer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/internal/service/biddingservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func NewMock(t *testing.T, schedule string) (*Closer, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	cfg := &config.Config{CloseSchedule: schedule, EndingSoonWindow: time.Hour}
	c := New(cfg, service)
	t.Cleanup(c.workerPool.Close)
	return c, service
}

func TestRun(t *testing.T) {
	tests := []struct {
		name             string
		prepareMock      func(s *MockService)
		expectedClosed   int
		expectedReminded int
	}{
		{
			name: "closes every overdue auction",
			prepareMock: func(s *MockService) {
				s.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return([]int{1, 2, 3}, nil)
				s.EXPECT().CloseAuction(gomock.Any(), 1).Return(biddingservice.CloseOutcomeWithWinner, nil)
				s.EXPECT().CloseAuction(gomock.Any(), 2).Return(biddingservice.CloseOutcomeNoWinner, nil)
				s.EXPECT().CloseAuction(gomock.Any(), 3).Return(biddingservice.CloseOutcomeAlreadyClosed, nil)
				s.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(4, nil)
			},
			expectedClosed:   2,
			expectedReminded: 4,
		},
		{
			name: "one failure does not stop the batch",
			prepareMock: func(s *MockService) {
				s.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return([]int{1, 2}, nil)
				s.EXPECT().CloseAuction(gomock.Any(), 1).Return(biddingservice.CloseOutcome(""), errors.New("lock timeout"))
				s.EXPECT().CloseAuction(gomock.Any(), 2).Return(biddingservice.CloseOutcomeWithWinner, nil)
				s.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(0, nil)
			},
			expectedClosed: 1,
		},
		{
			name: "reminders are sent when listing fails",
			prepareMock: func(s *MockService) {
				s.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return(nil, errors.New("db down"))
				s.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(1, nil)
			},
			expectedReminded: 1,
		},
		{
			name: "nothing to do",
			prepareMock: func(s *MockService) {
				s.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return(nil, nil)
				s.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(0, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, service := NewMock(t, "")
			tt.prepareMock(service)

			closed, reminded := c.Run(context.Background())

			assert.Equal(t, tt.expectedClosed, closed)
			assert.Equal(t, tt.expectedReminded, reminded)
		})
	}
}

func TestRunSkipsAuctionsAlreadyBeingClosed(t *testing.T) {
	c, service := NewMock(t, "")
	c.inFlight.Store(2, struct{}{})

	service.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return([]int{1, 2}, nil)
	service.EXPECT().CloseAuction(gomock.Any(), 1).Return(biddingservice.CloseOutcomeNoWinner, nil)
	service.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(0, nil)

	closed, _ := c.Run(context.Background())
	assert.Equal(t, 1, closed)

	_, stillMarked := c.inFlight.Load(2)
	assert.True(t, stillMarked)
	_, released := c.inFlight.Load(1)
	assert.False(t, released)
}

func TestRunReleasesAuctionWhenPoolRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	c, service := NewMock(t, "")
	pool := NewMockWorkerPoolI(ctrl)
	c.workerPool = pool

	service.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return([]int{7}, nil)
	pool.EXPECT().AddTask(gomock.Any(), gomock.Any()).Return(context.Canceled)
	service.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(0, nil)

	closed, _ := c.Run(context.Background())
	assert.Equal(t, 0, closed)

	_, marked := c.inFlight.Load(7)
	assert.False(t, marked)
}

func TestRunSurvivesPanickingClose(t *testing.T) {
	c, service := NewMock(t, "")

	service.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return([]int{1, 2}, nil)
	service.EXPECT().CloseAuction(gomock.Any(), 1).DoAndReturn(
		func(context.Context, int) (biddingservice.CloseOutcome, error) {
			panic("nil winner")
		})
	service.EXPECT().CloseAuction(gomock.Any(), 2).Return(biddingservice.CloseOutcomeWithWinner, nil)
	service.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).Return(0, nil)

	type result struct{ closed, reminded int }
	finished := make(chan result, 1)
	go func() {
		closed, reminded := c.Run(context.Background())
		finished <- result{closed, reminded}
	}()

	select {
	case r := <-finished:
		assert.Equal(t, 1, r.closed)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "run did not return after a panicking close")
	}

	_, marked := c.inFlight.Load(1)
	assert.False(t, marked)
}

func TestStart(t *testing.T) {
	t.Run("disabled without schedule", func(t *testing.T) {
		c, _ := NewMock(t, "")
		assert.NoError(t, c.Start(context.Background()))
		assert.Empty(t, c.cron.Entries())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		c, _ := NewMock(t, "every now and then")
		assert.Error(t, c.Start(context.Background()))
	})

	t.Run("runs on schedule until cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := NewMockService(ctrl)
		c := New(&config.Config{CloseSchedule: "@every 1s", EndingSoonWindow: time.Hour}, service)

		ran := make(chan struct{}, 1)
		service.EXPECT().ExpiredAuctions(gomock.Any(), batchSize).Return(nil, nil).MinTimes(1)
		service.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, batchSize).
			DoAndReturn(func(context.Context, time.Duration, int) (int, error) {
				select {
				case ran <- struct{}{}:
				default:
				}
				return 0, nil
			}).MinTimes(1)

		ctx, cancel := context.WithCancel(context.Background())
		require.NoError(t, c.Start(ctx))
		require.Len(t, c.cron.Entries(), 1)

		select {
		case <-ran:
		case <-time.After(3 * time.Second):
			t.Fatal("closer did not run")
		}
		cancel()
		<-c.cron.Stop().Done()
	})
}
