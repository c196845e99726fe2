package bidrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Create(ctx context.Context, bid *domain.Bid) (*domain.Bid, error) {
	query := `
		INSERT INTO bids (auction_id, bidder_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, bid.AuctionID, bid.BidderID, bid.Amount.StringFixed(2)).Scan(&bid.ID, &bid.CreatedAt)
	if err != nil {
		zap.L().Error("can't save bid", zap.Int("auction_id", bid.AuctionID), zap.Error(err))
		return nil, err
	}
	return bid, nil
}

// Highest returns the top bid of an auction, or nil when there is none.
// Ties cannot happen: amounts are unique per auction.
func (r *Repository) Highest(ctx context.Context, auctionID int) (*domain.Bid, error) {
	query := `
		SELECT b.id, b.auction_id, b.bidder_id, u.username, b.amount::text, b.created_at
		FROM bids b
		JOIN users u ON u.id = b.bidder_id
		WHERE b.auction_id = $1
		ORDER BY b.amount DESC
		LIMIT 1
	`
	var (
		bid    domain.Bid
		amount string
	)
	err := r.db.QueryRow(ctx, query, auctionID).Scan(&bid.ID, &bid.AuctionID, &bid.BidderID, &bid.BidderName, &amount, &bid.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get highest bid", zap.Int("auction_id", auctionID), zap.Error(err))
		return nil, err
	}
	if bid.Amount, err = pg.Decimal(amount); err != nil {
		return nil, err
	}
	return &bid, nil
}

func (r *Repository) ListByAuction(ctx context.Context, auctionID int) ([]domain.Bid, error) {
	query := `
		SELECT b.id, b.auction_id, b.bidder_id, u.username, b.amount::text, b.created_at, a.title, a.status
		FROM bids b
		JOIN users u ON u.id = b.bidder_id
		JOIN auctions a ON a.id = b.auction_id
		WHERE b.auction_id = $1
		ORDER BY b.amount DESC
	`
	return r.list(ctx, query, auctionID)
}

func (r *Repository) ListByBidder(ctx context.Context, bidderID int) ([]domain.Bid, error) {
	query := `
		SELECT b.id, b.auction_id, b.bidder_id, u.username, b.amount::text, b.created_at, a.title, a.status
		FROM bids b
		JOIN users u ON u.id = b.bidder_id
		JOIN auctions a ON a.id = b.auction_id
		WHERE b.bidder_id = $1
		ORDER BY b.created_at DESC
	`
	return r.list(ctx, query, bidderID)
}

func (r *Repository) list(ctx context.Context, query string, arg int) ([]domain.Bid, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		zap.L().Error("can't query bids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var (
			bid            domain.Bid
			amount, status string
		)
		if err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.BidderID, &bid.BidderName, &amount, &bid.CreatedAt, &bid.AuctionTitle, &status); err != nil {
			zap.L().Error("can't scan bid row", zap.Error(err))
			return nil, err
		}
		if bid.Amount, err = pg.Decimal(amount); err != nil {
			return nil, err
		}
		bid.AuctionStatus = domain.AuctionStatus(status)
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// BidderIDs lists every distinct user that bid on the auction.
func (r *Repository) BidderIDs(ctx context.Context, auctionID int) ([]int, error) {
	query := `
		SELECT DISTINCT bidder_id
		FROM bids
		WHERE auction_id = $1
		ORDER BY bidder_id
	`
	rows, err := r.db.Query(ctx, query, auctionID)
	if err != nil {
		zap.L().Error("can't query bidders", zap.Int("auction_id", auctionID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
