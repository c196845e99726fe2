package service

import (
	"testing"

	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/GlebRadaev/artauction/internal/repo"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "secret",
		MinBidIncrement:     "1.00",
		DefaultDurationDays: 7,
		CategoryCacheSize:   16,
	}
}

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	txManager := pg.NewMockTXManager(ctrl)
	repos := repo.New(mockPool, txManager)

	services, err := New(repos, txManager, testConfig())
	require.NoError(t, err)

	assert.NotNil(t, services.AuthService)
	assert.NotNil(t, services.AuctionService)
	assert.NotNil(t, services.BiddingService)
	assert.NotNil(t, services.WalletService)
	assert.NotNil(t, services.NotificationService)
	assert.NotNil(t, services.JWTService)
}

func TestNewRejectsBadIncrement(t *testing.T) {
	for _, increment := range []string{"abc", "0", "-1"} {
		cfg := testConfig()
		cfg.MinBidIncrement = increment

		_, err := New(&repo.Repositories{}, nil, cfg)
		assert.Error(t, err, increment)
	}
}
