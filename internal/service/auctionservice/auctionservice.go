package auctionservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/GlebRadaev/artauction/internal/service/biddingservice"
	"github.com/GlebRadaev/artauction/pkg/money"
	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=auctionservice.go -destination=auctionservice_mock.go -package=auctionservice

type AuctionRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Auction, error)
	GetForUpdate(ctx context.Context, id int) (*domain.Auction, error)
	Create(ctx context.Context, a *domain.Auction) (*domain.Auction, error)
	Update(ctx context.Context, a *domain.Auction) error
	Cancel(ctx context.Context, id int) (bool, error)
	ListActive(ctx context.Context, f domain.AuctionFilter) ([]domain.Auction, error)
	ListBySeller(ctx context.Context, sellerID int) ([]domain.Auction, error)
	ListWon(ctx context.Context, winnerID int) ([]domain.Auction, error)
	ListPendingPayments(ctx context.Context, winnerID int) ([]domain.Auction, error)
}

type BidRepo interface {
	ListByAuction(ctx context.Context, auctionID int) ([]domain.Bid, error)
}

type CategoryRepo interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type NotificationRepo interface {
	CreateForAllExcept(ctx context.Context, exceptUserID int, typ domain.NotificationType, message string) (int64, error)
}

// Closer completes overdue auctions. Implemented by the bidding service.
type Closer interface {
	CloseAuction(ctx context.Context, auctionID int) (biddingservice.CloseOutcome, error)
}

const (
	PageSize        = 12
	MinDurationDays = 1
	MaxDurationDays = 30

	categoriesKey = "categories"
)

var (
	ErrInvalidAuction   = errors.New("invalid auction")
	ErrHasBids          = errors.New("auction already has bids")
	ErrCategoryNotFound = errors.New("category not found")
)

type CreateAuctionInput struct {
	Title        string
	Description  string
	ImagePath    string
	CategoryID   *int
	StartingBid  string
	DurationDays int
}

type UpdateAuctionInput struct {
	Title        string
	Description  string
	CategoryID   *int
	DurationDays int
}

type ListFilter struct {
	CategoryID *int
	MinPrice   string
	MaxPrice   string
	Search     string
	Page       int
}

type AuctionDetails struct {
	Auction    *domain.Auction
	Bids       []domain.Bid
	MinimumBid decimal.Decimal
}

type Service struct {
	auctionRepo      AuctionRepo
	bidRepo          BidRepo
	categoryRepo     CategoryRepo
	notificationRepo NotificationRepo
	closer           Closer
	txManager        pg.TXManager
	categories       *lru.Cache
	increment        decimal.Decimal
	defaultDuration  int
	now              func() time.Time
}

func New(
	auctionRepo AuctionRepo,
	bidRepo BidRepo,
	categoryRepo CategoryRepo,
	notificationRepo NotificationRepo,
	closer Closer,
	txManager pg.TXManager,
	increment decimal.Decimal,
	defaultDurationDays int,
	cacheSize int,
) *Service {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, _ := lru.New(cacheSize)
	return &Service{
		auctionRepo:      auctionRepo,
		bidRepo:          bidRepo,
		categoryRepo:     categoryRepo,
		notificationRepo: notificationRepo,
		closer:           closer,
		txManager:        txManager,
		categories:       cache,
		increment:        increment,
		defaultDuration:  defaultDurationDays,
		now:              time.Now,
	}
}

func (s *Service) duration(days int) (time.Duration, error) {
	if days == 0 {
		days = s.defaultDuration
	}
	if days < MinDurationDays || days > MaxDurationDays {
		return 0, fmt.Errorf("%w: duration must be between %d and %d days", ErrInvalidAuction, MinDurationDays, MaxDurationDays)
	}
	return time.Duration(days) * 24 * time.Hour, nil
}

func (s *Service) checkText(title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidAuction)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidAuction)
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id *int) error {
	if id == nil {
		return nil
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID == *id {
			return nil
		}
	}
	return ErrCategoryNotFound
}

// Create lists a new auction and tells every other user about it.
func (s *Service) Create(ctx context.Context, sellerID int, in CreateAuctionInput) (*domain.Auction, error) {
	if err := s.checkText(in.Title, in.Description); err != nil {
		return nil, err
	}
	startingBid, err := money.ParsePositive(in.StartingBid)
	if err != nil {
		return nil, err
	}
	duration, err := s.duration(in.DurationDays)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	auction := &domain.Auction{
		SellerID:      sellerID,
		CategoryID:    in.CategoryID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		ImagePath:     in.ImagePath,
		StartingBid:   startingBid,
		EndTime:       s.now().Add(duration),
		Status:        domain.AuctionActive,
		PaymentStatus: domain.PaymentPending,
	}

	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		created, err := s.auctionRepo.Create(ctx, auction)
		if err != nil {
			return err
		}
		auction = created

		msg := fmt.Sprintf("New auction: '%s' starting at RM%s.", auction.Title, money.Format(startingBid))
		_, err = s.notificationRepo.CreateForAllExcept(ctx, sellerID, domain.NotificationNewAuction, msg)
		return err
	})
	if err != nil {
		zap.L().Error("failed to create auction", zap.Int("seller_id", sellerID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("auction created", zap.Int("auction_id", auction.ID), zap.Int("seller_id", sellerID))
	return auction, nil
}

// Get returns the auction with its bid history. An active auction whose end
// time has passed is closed before it is returned.
func (s *Service) Get(ctx context.Context, id int) (*AuctionDetails, error) {
	auction, err := s.auctionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if auction == nil {
		return nil, domain.ErrAuctionNotFound
	}

	if auction.Overdue(s.now()) {
		if _, err := s.closer.CloseAuction(ctx, id); err != nil {
			return nil, err
		}
		auction, err = s.auctionRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if auction == nil {
			return nil, domain.ErrAuctionNotFound
		}
	}

	bids, err := s.bidRepo.ListByAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AuctionDetails{
		Auction:    auction,
		Bids:       bids,
		MinimumBid: auction.MinimumBid(s.increment),
	}, nil
}

func (s *Service) ListActive(ctx context.Context, filter ListFilter) ([]domain.Auction, error) {
	f := domain.AuctionFilter{
		CategoryID: filter.CategoryID,
		Search:     filter.Search,
		Limit:      PageSize,
	}
	if filter.Page > 1 {
		f.Offset = (filter.Page - 1) * PageSize
	}
	if filter.MinPrice != "" {
		d, err := money.Parse(filter.MinPrice)
		if err != nil {
			return nil, err
		}
		f.MinPrice = decimal.NewNullDecimal(d)
	}
	if filter.MaxPrice != "" {
		d, err := money.Parse(filter.MaxPrice)
		if err != nil {
			return nil, err
		}
		f.MaxPrice = decimal.NewNullDecimal(d)
	}

	auctions, err := s.auctionRepo.ListActive(ctx, f)
	if err != nil {
		zap.L().Error("failed to list auctions", zap.Error(err))
		return nil, err
	}
	return auctions, nil
}

// editable locks the auction and checks that sellerID may still change it.
func (s *Service) editable(ctx context.Context, sellerID, id int) (*domain.Auction, error) {
	auction, err := s.auctionRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if auction == nil {
		return nil, domain.ErrAuctionNotFound
	}
	if auction.SellerID != sellerID {
		return nil, domain.ErrUnauthorized
	}
	if auction.Status != domain.AuctionActive {
		return nil, domain.ErrAuctionClosed
	}
	if auction.BidCount > 0 || auction.CurrentBid.Valid {
		return nil, ErrHasBids
	}
	return auction, nil
}

// Update edits an auction nobody has bid on yet. The end time restarts from now.
func (s *Service) Update(ctx context.Context, sellerID, id int, in UpdateAuctionInput) (*domain.Auction, error) {
	if err := s.checkText(in.Title, in.Description); err != nil {
		return nil, err
	}
	duration, err := s.duration(in.DurationDays)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	var auction *domain.Auction
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		a, err := s.editable(ctx, sellerID, id)
		if err != nil {
			return err
		}
		a.Title = strings.TrimSpace(in.Title)
		a.Description = strings.TrimSpace(in.Description)
		a.CategoryID = in.CategoryID
		a.EndTime = s.now().Add(duration)
		if err := s.auctionRepo.Update(ctx, a); err != nil {
			return err
		}
		auction = a
		return nil
	})
	if err != nil {
		zap.L().Info("auction update rejected", zap.Int("auction_id", id), zap.Int("seller_id", sellerID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("auction updated", zap.Int("auction_id", id))
	return auction, nil
}

// Cancel withdraws an auction nobody has bid on yet.
func (s *Service) Cancel(ctx context.Context, sellerID, id int) error {
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := s.editable(ctx, sellerID, id); err != nil {
			return err
		}
		ok, err := s.auctionRepo.Cancel(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrAuctionClosed
		}
		return nil
	})
	if err != nil {
		zap.L().Info("auction cancel rejected", zap.Int("auction_id", id), zap.Int("seller_id", sellerID), zap.Error(err))
		return err
	}

	zap.L().Info("auction cancelled", zap.Int("auction_id", id))
	return nil
}

func (s *Service) ListBySeller(ctx context.Context, sellerID int) ([]domain.Auction, error) {
	return s.auctionRepo.ListBySeller(ctx, sellerID)
}

func (s *Service) ListWon(ctx context.Context, userID int) ([]domain.Auction, error) {
	return s.auctionRepo.ListWon(ctx, userID)
}

func (s *Service) ListPendingPayments(ctx context.Context, userID int) ([]domain.Auction, error) {
	return s.auctionRepo.ListPendingPayments(ctx, userID)
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := s.categories.Get(categoriesKey); ok {
		return cached.([]domain.Category), nil
	}
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		zap.L().Error("failed to list categories", zap.Error(err))
		return nil, err
	}
	s.categories.Add(categoriesKey, categories)
	return categories, nil
}
