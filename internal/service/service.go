package service

import (
	"fmt"

	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/GlebRadaev/artauction/internal/repo"
	"github.com/GlebRadaev/artauction/internal/service/auctionservice"
	"github.com/GlebRadaev/artauction/internal/service/authservice"
	"github.com/GlebRadaev/artauction/internal/service/biddingservice"
	"github.com/GlebRadaev/artauction/internal/service/notificationservice"
	"github.com/GlebRadaev/artauction/internal/service/walletservice"
	pkgauth "github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/shopspring/decimal"
)

type Services struct {
	AuthService         *authservice.Service
	AuctionService      *auctionservice.Service
	BiddingService      *biddingservice.Service
	WalletService       *walletservice.Service
	NotificationService *notificationservice.Service
	JWTService          pkgauth.JWTServiceInterface
}

func New(repo *repo.Repositories, txManager pg.TXManager, cfg *config.Config) (*Services, error) {
	increment, err := decimal.NewFromString(cfg.MinBidIncrement)
	if err != nil || !increment.IsPositive() {
		return nil, fmt.Errorf("invalid minimum bid increment %q", cfg.MinBidIncrement)
	}

	jwtService := pkgauth.NewJWTService(cfg.JWTSecret)
	biddingService := biddingservice.New(repo.AuctionRepo, repo.BidRepo, repo.NotificationRepo, txManager, increment)
	auctionService := auctionservice.New(
		repo.AuctionRepo,
		repo.BidRepo,
		repo.CategoryRepo,
		repo.NotificationRepo,
		biddingService,
		txManager,
		increment,
		cfg.DefaultDurationDays,
		cfg.CategoryCacheSize,
	)
	walletService := walletservice.New(repo.WalletRepo, repo.AuctionRepo, repo.NotificationRepo, txManager)
	authService := authservice.New(repo.UserRepo, pkgauth.NewHashService(cfg.HashCost), jwtService, cfg.TokenTTL)

	return &Services{
		AuthService:         authService,
		AuctionService:      auctionService,
		BiddingService:      biddingService,
		WalletService:       walletService,
		NotificationService: notificationservice.New(repo.NotificationRepo),
		JWTService:          jwtService,
	}, nil
}
