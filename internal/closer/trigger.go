package closer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/handlers/bids"
	"github.com/GlebRadaev/artauction/pkg/clients"
	"go.uber.org/zap"
)

const closeExpiredPath = "/api/auctions/close-expired"

// Trigger drives a remote service through its close-expired endpoint.
type Trigger struct {
	client clients.HTTPClientI
	url    string
	token  string
}

func NewTrigger(client clients.HTTPClientI, serviceAddress, token string) *Trigger {
	return &Trigger{
		client: client,
		url:    strings.TrimRight(serviceAddress, "/") + closeExpiredPath,
		token:  token,
	}
}

func (t *Trigger) Run(ctx context.Context) (*dto.CloseExpiredResponseDTO, error) {
	headers := http.Header{}
	headers.Set(bids.CloserTokenHeader, t.token)

	status, body, err := t.client.Post(ctx, t.url, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("close-expired request failed: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("close-expired returned status %d: %s", status, string(body))
	}

	var resp dto.CloseExpiredResponseDTO
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("invalid close-expired response: %w", err)
	}
	return &resp, nil
}

// Loop calls Run every interval until ctx is done. A zero interval runs once.
func (t *Trigger) Loop(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		_, err := t.runAndLog(ctx)
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.runAndLog(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.runAndLog(ctx)
		}
	}
}

func (t *Trigger) runAndLog(ctx context.Context) (*dto.CloseExpiredResponseDTO, error) {
	resp, err := t.Run(ctx)
	if err != nil {
		zap.L().Error("close-expired run failed", zap.Error(err))
		return nil, err
	}
	zap.L().Info("close-expired run finished",
		zap.Int("closed", resp.Closed),
		zap.Int("reminded", resp.Reminded),
	)
	return resp, nil
}
