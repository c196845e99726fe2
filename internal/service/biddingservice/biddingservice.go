package biddingservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/metrics"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=biddingservice.go -destination=biddingservice_mock.go -package=biddingservice

type AuctionRepo interface {
	GetByID(ctx context.Context, id int) (*domain.Auction, error)
	GetForUpdate(ctx context.Context, id int) (*domain.Auction, error)
	SetCurrentBid(ctx context.Context, id int, amount decimal.Decimal) error
	Complete(ctx context.Context, id int, winnerID *int, soldPrice decimal.NullDecimal, endTime *time.Time) (bool, error)
	MarkEndingNotified(ctx context.Context, id int) (bool, error)
	FindExpired(ctx context.Context, now time.Time, limit int) ([]int, error)
	FindEndingSoon(ctx context.Context, now, until time.Time, limit int) ([]int, error)
}

type BidRepo interface {
	Create(ctx context.Context, bid *domain.Bid) (*domain.Bid, error)
	Highest(ctx context.Context, auctionID int) (*domain.Bid, error)
	ListByAuction(ctx context.Context, auctionID int) ([]domain.Bid, error)
	ListByBidder(ctx context.Context, bidderID int) ([]domain.Bid, error)
	BidderIDs(ctx context.Context, auctionID int) ([]int, error)
}

type NotificationRepo interface {
	Create(ctx context.Context, userID int, typ domain.NotificationType, message string) error
}

var (
	ErrSelfBidding = errors.New("you cannot bid on your own auction")
	ErrBidTooLow   = errors.New("bid is too low")
	ErrNoBidsYet   = errors.New("auction has no bids yet")
)

// BidTooLowError reports the smallest amount that would have been accepted.
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid is too low: minimum bid is RM%s", money.Format(e.Minimum))
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}

type CloseOutcome string

const (
	CloseOutcomeWithWinner    CloseOutcome = "completed_with_winner"
	CloseOutcomeNoWinner      CloseOutcome = "completed_no_winner"
	CloseOutcomeAlreadyClosed CloseOutcome = "already_closed"
	CloseOutcomeNotDue        CloseOutcome = "not_due"
)

// Closed reports whether this call moved the auction to completed.
func (o CloseOutcome) Closed() bool {
	return o == CloseOutcomeWithWinner || o == CloseOutcomeNoWinner
}

type PlaceBidResult struct {
	Bid         *domain.Bid
	PreviousBid *domain.Bid
	CurrentBid  decimal.Decimal
}

type Service struct {
	auctionRepo      AuctionRepo
	bidRepo          BidRepo
	notificationRepo NotificationRepo
	txManager        pg.TXManager
	increment        decimal.Decimal
	now              func() time.Time
}

func New(auctionRepo AuctionRepo, bidRepo BidRepo, notificationRepo NotificationRepo, txManager pg.TXManager, increment decimal.Decimal) *Service {
	return &Service{
		auctionRepo:      auctionRepo,
		bidRepo:          bidRepo,
		notificationRepo: notificationRepo,
		txManager:        txManager,
		increment:        increment,
		now:              time.Now,
	}
}

func (s *Service) PlaceBid(ctx context.Context, auctionID, bidderID int, amount string) (*PlaceBidResult, error) {
	value, err := money.ParsePositive(amount)
	if err != nil {
		metrics.RecordBid("invalid")
		return nil, err
	}

	var result *PlaceBidResult
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		auction, err := s.auctionRepo.GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction == nil {
			return domain.ErrAuctionNotFound
		}
		if !auction.AcceptsBids(s.now()) {
			return domain.ErrAuctionClosed
		}
		if auction.SellerID == bidderID {
			return ErrSelfBidding
		}

		previous, err := s.bidRepo.Highest(ctx, auctionID)
		if err != nil {
			return err
		}
		minimum := auction.MinimumBid(s.increment)
		if previous != nil {
			if fromLog := previous.Amount.Add(s.increment); fromLog.GreaterThan(minimum) {
				minimum = fromLog
			}
		}
		if value.LessThan(minimum) {
			return &BidTooLowError{Minimum: minimum}
		}

		bid, err := s.bidRepo.Create(ctx, &domain.Bid{AuctionID: auctionID, BidderID: bidderID, Amount: value})
		if err != nil {
			return err
		}
		if err := s.auctionRepo.SetCurrentBid(ctx, auctionID, value); err != nil {
			return err
		}
		if previous != nil && previous.BidderID != bidderID {
			msg := fmt.Sprintf("You have been outbid on '%s'. The highest bid is now RM%s.", auction.Title, money.Format(value))
			if err := s.notificationRepo.Create(ctx, previous.BidderID, domain.NotificationOutbid, msg); err != nil {
				return err
			}
		}

		result = &PlaceBidResult{Bid: bid, PreviousBid: previous, CurrentBid: value}
		return nil
	})
	if err != nil {
		if isRejection(err) {
			metrics.RecordBid("rejected")
			zap.L().Info("bid rejected", zap.Int("auction_id", auctionID), zap.Int("bidder_id", bidderID), zap.Error(err))
		} else {
			metrics.RecordBid("error")
			zap.L().Error("failed to place bid", zap.Int("auction_id", auctionID), zap.Error(err))
		}
		return nil, err
	}

	metrics.RecordBid("accepted")
	zap.L().Info("bid accepted",
		zap.Int("auction_id", auctionID),
		zap.Int("bidder_id", bidderID),
		zap.String("amount", money.Format(value)))
	return result, nil
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrAuctionNotFound) ||
		errors.Is(err, domain.ErrAuctionClosed) ||
		errors.Is(err, ErrSelfBidding) ||
		errors.Is(err, ErrBidTooLow)
}

// CloseAuction completes an overdue active auction. Closing an auction that
// is no longer active is a no-op, which makes the call safe to repeat.
func (s *Service) CloseAuction(ctx context.Context, auctionID int) (CloseOutcome, error) {
	var outcome CloseOutcome
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		auction, err := s.auctionRepo.GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction == nil {
			return domain.ErrAuctionNotFound
		}
		if auction.Status != domain.AuctionActive {
			outcome = CloseOutcomeAlreadyClosed
			return nil
		}
		if auction.EndTime.After(s.now()) {
			outcome = CloseOutcomeNotDue
			return nil
		}

		top, err := s.bidRepo.Highest(ctx, auctionID)
		if err != nil {
			return err
		}
		outcome, err = s.complete(ctx, auction, top, nil)
		return err
	})
	if err != nil {
		zap.L().Error("failed to close auction", zap.Int("auction_id", auctionID), zap.Error(err))
		return "", err
	}

	metrics.RecordClose(string(outcome))
	if outcome.Closed() {
		zap.L().Info("auction closed", zap.Int("auction_id", auctionID), zap.String("outcome", string(outcome)))
	}
	return outcome, nil
}

// AcceptBid lets the seller end the auction now and sell to the highest bidder.
func (s *Service) AcceptBid(ctx context.Context, auctionID, sellerID int) (CloseOutcome, error) {
	var outcome CloseOutcome
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		auction, err := s.auctionRepo.GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction == nil {
			return domain.ErrAuctionNotFound
		}
		if auction.SellerID != sellerID {
			return domain.ErrUnauthorized
		}
		if auction.Status != domain.AuctionActive {
			return domain.ErrAuctionClosed
		}

		top, err := s.bidRepo.Highest(ctx, auctionID)
		if err != nil {
			return err
		}
		if top == nil {
			return ErrNoBidsYet
		}
		now := s.now()
		outcome, err = s.complete(ctx, auction, top, &now)
		return err
	})
	if err != nil {
		zap.L().Info("early acceptance failed", zap.Int("auction_id", auctionID), zap.Int("seller_id", sellerID), zap.Error(err))
		return "", err
	}

	metrics.RecordClose(string(outcome))
	zap.L().Info("bid accepted early", zap.Int("auction_id", auctionID), zap.String("outcome", string(outcome)))
	return outcome, nil
}

// complete writes status, winner and sold price together. Must run inside
// the transaction holding the auction row lock.
func (s *Service) complete(ctx context.Context, auction *domain.Auction, top *domain.Bid, endTime *time.Time) (CloseOutcome, error) {
	if top == nil {
		ok, err := s.auctionRepo.Complete(ctx, auction.ID, nil, decimal.NullDecimal{}, endTime)
		if err != nil {
			return "", err
		}
		if !ok {
			return CloseOutcomeAlreadyClosed, nil
		}
		return CloseOutcomeNoWinner, nil
	}

	winnerID := top.BidderID
	ok, err := s.auctionRepo.Complete(ctx, auction.ID, &winnerID, decimal.NewNullDecimal(top.Amount), endTime)
	if err != nil {
		return "", err
	}
	if !ok {
		return CloseOutcomeAlreadyClosed, nil
	}

	msg := fmt.Sprintf("Congratulations! You won '%s' for RM%s. Please complete your payment.", auction.Title, money.Format(top.Amount))
	if err := s.notificationRepo.Create(ctx, winnerID, domain.NotificationWon, msg); err != nil {
		return "", err
	}
	return CloseOutcomeWithWinner, nil
}

// ExpiredAuctions lists active auctions whose end time has passed.
func (s *Service) ExpiredAuctions(ctx context.Context, limit int) ([]int, error) {
	return s.auctionRepo.FindExpired(ctx, s.now(), limit)
}

// CloseExpired closes up to limit overdue auctions, each in its own
// transaction. A failing auction does not stop the rest.
func (s *Service) CloseExpired(ctx context.Context, limit int) (int, error) {
	ids, err := s.ExpiredAuctions(ctx, limit)
	if err != nil {
		return 0, err
	}

	var (
		closed int
		errs   []error
	)
	for _, id := range ids {
		outcome, err := s.CloseAuction(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("auction %d: %w", id, err))
			continue
		}
		if outcome.Closed() {
			closed++
		}
	}
	return closed, errors.Join(errs...)
}

// NotifyEndingSoon reminds every bidder of auctions ending within window.
// Each auction is reminded about at most once.
func (s *Service) NotifyEndingSoon(ctx context.Context, window time.Duration, limit int) (int, error) {
	now := s.now()
	ids, err := s.auctionRepo.FindEndingSoon(ctx, now, now.Add(window), limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, id := range ids {
		err := s.txManager.Begin(ctx, func(ctx context.Context) error {
			flagged, err := s.auctionRepo.MarkEndingNotified(ctx, id)
			if err != nil || !flagged {
				return err
			}
			auction, err := s.auctionRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if auction == nil {
				return domain.ErrAuctionNotFound
			}
			bidders, err := s.bidRepo.BidderIDs(ctx, id)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("'%s' ends at %s. The current bid is RM%s.", auction.Title, auction.EndTime.Format(time.RFC1123), money.Format(auction.Price()))
			for _, bidderID := range bidders {
				if err := s.notificationRepo.Create(ctx, bidderID, domain.NotificationAuctionEnding, msg); err != nil {
					return err
				}
				sent++
			}
			return nil
		})
		if err != nil {
			zap.L().Error("failed to send ending reminders", zap.Int("auction_id", id), zap.Error(err))
			return sent, err
		}
	}
	return sent, nil
}

func (s *Service) GetBids(ctx context.Context, auctionID int) ([]domain.Bid, error) {
	bids, err := s.bidRepo.ListByAuction(ctx, auctionID)
	if err != nil {
		zap.L().Error("failed to get bids", zap.Int("auction_id", auctionID), zap.Error(err))
		return nil, err
	}
	return bids, nil
}

func (s *Service) GetUserBids(ctx context.Context, userID int) ([]domain.Bid, error) {
	bids, err := s.bidRepo.ListByBidder(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get user bids", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	return bids, nil
}

type AuditReport struct {
	AuctionID  int
	CurrentBid decimal.NullDecimal
	HighestBid decimal.NullDecimal
	Consistent bool
}

// Audit compares the cached current bid with the highest bid on record.
func (s *Service) Audit(ctx context.Context, auctionID int) (*AuditReport, error) {
	auction, err := s.auctionRepo.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if auction == nil {
		return nil, domain.ErrAuctionNotFound
	}
	top, err := s.bidRepo.Highest(ctx, auctionID)
	if err != nil {
		return nil, err
	}

	report := &AuditReport{AuctionID: auctionID, CurrentBid: auction.CurrentBid}
	if top != nil {
		report.HighestBid = decimal.NewNullDecimal(top.Amount)
	}
	switch {
	case !report.CurrentBid.Valid && !report.HighestBid.Valid:
		report.Consistent = true
	case report.CurrentBid.Valid && report.HighestBid.Valid:
		report.Consistent = report.CurrentBid.Decimal.Equal(report.HighestBid.Decimal)
	}
	if !report.Consistent {
		zap.L().Error("current bid differs from bid log",
			zap.Int("auction_id", auctionID),
			zap.String("current_bid", money.FormatNull(report.CurrentBid)),
			zap.String("highest_bid", money.FormatNull(report.HighestBid)))
	}
	return report, nil
}
