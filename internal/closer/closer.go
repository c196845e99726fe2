package closer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/internal/service/biddingservice"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=closer.go -destination=closer_mock.go -package=closer

type Service interface {
	ExpiredAuctions(ctx context.Context, limit int) ([]int, error)
	CloseAuction(ctx context.Context, auctionID int) (biddingservice.CloseOutcome, error)
	NotifyEndingSoon(ctx context.Context, window time.Duration, limit int) (int, error)
}

const (
	batchSize = 100
	workers   = 10
)

// Closer completes overdue auctions on a cron schedule and sends
// ending-soon reminders after each run.
type Closer struct {
	service    Service
	workerPool WorkerPoolI
	schedule   string
	window     time.Duration
	batch      int
	cron       *cron.Cron
	inFlight   sync.Map
}

func New(cfg *config.Config, service Service) *Closer {
	return &Closer{
		service:    service,
		workerPool: NewWorkerPool(workers),
		schedule:   cfg.CloseSchedule,
		window:     cfg.EndingSoonWindow,
		batch:      batchSize,
		cron:       cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the job and returns. An empty schedule disables the closer.
func (c *Closer) Start(ctx context.Context) error {
	if c.schedule == "" {
		zap.L().Info("Auction closer disabled")
		return nil
	}
	if _, err := c.cron.AddFunc(c.schedule, func() { c.Run(ctx) }); err != nil {
		return fmt.Errorf("invalid close schedule %q: %w", c.schedule, err)
	}
	c.cron.Start()
	zap.L().Info("Auction closer started", zap.String("schedule", c.schedule))

	go func() {
		<-ctx.Done()
		<-c.cron.Stop().Done()
		c.workerPool.Close()
		zap.L().Info("Auction closer stopped")
	}()
	return nil
}

// Run closes one batch of overdue auctions and then sends reminders.
func (c *Closer) Run(ctx context.Context) (closed int, reminded int) {
	closed, err := c.closeExpired(ctx)
	if err != nil {
		zap.L().Error("Error closing auctions", zap.Error(err))
	}
	if closed > 0 {
		zap.L().Info("Closed overdue auctions", zap.Int("count", closed))
	}

	reminded, err = c.service.NotifyEndingSoon(ctx, c.window, c.batch)
	if err != nil {
		zap.L().Error("Error sending ending reminders", zap.Error(err))
	}
	return closed, reminded
}

func (c *Closer) closeExpired(ctx context.Context) (int, error) {
	ids, err := c.service.ExpiredAuctions(ctx, c.batch)
	if err != nil {
		return 0, err
	}

	var (
		g      errgroup.Group
		closed atomic.Int64
	)
	for _, id := range ids {
		if _, loaded := c.inFlight.LoadOrStore(id, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			done := make(chan error, 1)
			err := c.workerPool.AddTask(ctx, func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						err = fmt.Errorf("auction %d: close panicked: %v", id, r)
					}
					c.inFlight.Delete(id)
					done <- err
				}()

				outcome, err := c.service.CloseAuction(ctx, id)
				if err != nil {
					return fmt.Errorf("auction %d: %w", id, err)
				}
				if outcome.Closed() {
					closed.Add(1)
				}
				return nil
			})
			if err != nil {
				c.inFlight.Delete(id)
				return err
			}
			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}

	err = g.Wait()
	return int(closed.Load()), err
}
