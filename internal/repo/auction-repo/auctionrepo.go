package auctionrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const selectAuction = `
	SELECT a.id, a.seller_id, u.username, a.category_id, COALESCE(c.name, ''),
	       a.title, a.description, a.image_path,
	       a.starting_bid::text, a.current_bid::text, a.end_time, a.status,
	       a.winner_id, a.sold_price::text, a.payment_status, a.ending_notified,
	       (SELECT COUNT(*) FROM bids b WHERE b.auction_id = a.id), a.created_at
	FROM auctions a
	JOIN users u ON u.id = a.seller_id
	LEFT JOIN categories c ON c.id = a.category_id
`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanAuction(row pgx.Row) (*domain.Auction, error) {
	var (
		a                                 domain.Auction
		categoryID, winnerID              pgtype.Int4
		startingBid, status, paymentState string
		currentBid, soldPrice             pgtype.Text
	)
	err := row.Scan(
		&a.ID, &a.SellerID, &a.SellerName, &categoryID, &a.CategoryName,
		&a.Title, &a.Description, &a.ImagePath,
		&startingBid, &currentBid, &a.EndTime, &status,
		&winnerID, &soldPrice, &paymentState, &a.EndingNotified,
		&a.BidCount, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.StartingBid, err = pg.Decimal(startingBid); err != nil {
		return nil, err
	}
	if a.CurrentBid, err = pg.NullDecimal(currentBid); err != nil {
		return nil, err
	}
	if a.SoldPrice, err = pg.NullDecimal(soldPrice); err != nil {
		return nil, err
	}
	a.CategoryID = pg.NullInt(categoryID)
	a.WinnerID = pg.NullInt(winnerID)
	a.Status = domain.AuctionStatus(status)
	a.PaymentStatus = domain.PaymentStatus(paymentState)
	return &a, nil
}

func (r *Repository) queryAuctions(ctx context.Context, query string, args ...any) ([]domain.Auction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't query auctions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var auctions []domain.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			zap.L().Error("can't scan auction row", zap.Error(err))
			return nil, err
		}
		auctions = append(auctions, *a)
	}
	return auctions, rows.Err()
}

func (r *Repository) getOne(ctx context.Context, query string, id int) (*domain.Auction, error) {
	a, err := scanAuction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't get auction", zap.Int("auction_id", id), zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*domain.Auction, error) {
	return r.getOne(ctx, selectAuction+` WHERE a.id = $1`, id)
}

// GetForUpdate re-reads the auction and locks its row until the surrounding
// transaction ends. Must be called inside TXManager.Begin.
func (r *Repository) GetForUpdate(ctx context.Context, id int) (*domain.Auction, error) {
	return r.getOne(ctx, selectAuction+` WHERE a.id = $1 FOR UPDATE OF a`, id)
}

func (r *Repository) Create(ctx context.Context, a *domain.Auction) (*domain.Auction, error) {
	query := `
		INSERT INTO auctions (seller_id, category_id, title, description, image_path, starting_bid, end_time, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		a.SellerID, a.CategoryID, a.Title, a.Description, a.ImagePath,
		a.StartingBid.StringFixed(2), a.EndTime, string(a.Status), string(a.PaymentStatus),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		zap.L().Error("can't save auction", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (r *Repository) Update(ctx context.Context, a *domain.Auction) error {
	query := `
		UPDATE auctions
		SET title = $1, description = $2, category_id = $3, end_time = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, a.Title, a.Description, a.CategoryID, a.EndTime, a.ID)
	if err != nil {
		zap.L().Error("failed to update auction", zap.Int("auction_id", a.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) SetCurrentBid(ctx context.Context, id int, amount decimal.Decimal) error {
	query := `
		UPDATE auctions
		SET current_bid = $1
		WHERE id = $2 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, amount.StringFixed(2), id)
	if err != nil {
		zap.L().Error("failed to set current bid", zap.Int("auction_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("set current bid on auction %d: %w", id, domain.ErrAuctionClosed)
	}
	return nil
}

// Complete moves an active auction to completed. winner and sold price are
// written in the same statement as the status; a nil endTime keeps the
// scheduled end. Reports false when the auction was no longer active.
func (r *Repository) Complete(ctx context.Context, id int, winnerID *int, soldPrice decimal.NullDecimal, endTime *time.Time) (bool, error) {
	query := `
		UPDATE auctions
		SET status = 'completed', winner_id = $1, sold_price = $2, end_time = COALESCE($3, end_time)
		WHERE id = $4 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, winnerID, pg.NullNumeric(soldPrice), endTime, id)
	if err != nil {
		zap.L().Error("failed to complete auction", zap.Int("auction_id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) Cancel(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE auctions
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("failed to cancel auction", zap.Int("auction_id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) MarkPaid(ctx context.Context, id int) error {
	query := `
		UPDATE auctions
		SET payment_status = 'paid'
		WHERE id = $1 AND status = 'completed' AND payment_status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("failed to mark auction paid", zap.Int("auction_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("auction %d is not awaiting payment", id)
	}
	return nil
}

// MarkEndingNotified flags an active auction so the ending reminder is sent
// at most once. Reports false when someone else already flagged it.
func (r *Repository) MarkEndingNotified(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE auctions
		SET ending_notified = TRUE
		WHERE id = $1 AND status = 'active' AND NOT ending_notified
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("failed to flag ending auction", zap.Int("auction_id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ListActive(ctx context.Context, f domain.AuctionFilter) ([]domain.Auction, error) {
	var (
		conds = []string{"a.status = 'active'", "a.end_time > NOW()"}
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.CategoryID != nil {
		conds = append(conds, "a.category_id = "+arg(*f.CategoryID))
	}
	if f.MinPrice.Valid {
		conds = append(conds, "COALESCE(a.current_bid, a.starting_bid) >= "+arg(f.MinPrice.Decimal.StringFixed(2)))
	}
	if f.MaxPrice.Valid {
		conds = append(conds, "COALESCE(a.current_bid, a.starting_bid) <= "+arg(f.MaxPrice.Decimal.StringFixed(2)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, "(a.title ILIKE "+p+" OR a.description ILIKE "+p+")")
	}
	query := selectAuction + " WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY a.end_time ASC LIMIT " + arg(f.Limit) + " OFFSET " + arg(f.Offset)

	return r.queryAuctions(ctx, query, args...)
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID int) ([]domain.Auction, error) {
	return r.queryAuctions(ctx, selectAuction+` WHERE a.seller_id = $1 ORDER BY a.created_at DESC`, sellerID)
}

func (r *Repository) ListWon(ctx context.Context, winnerID int) ([]domain.Auction, error) {
	return r.queryAuctions(ctx, selectAuction+` WHERE a.winner_id = $1 AND a.status = 'completed' ORDER BY a.end_time DESC`, winnerID)
}

func (r *Repository) ListPendingPayments(ctx context.Context, winnerID int) ([]domain.Auction, error) {
	return r.queryAuctions(ctx, selectAuction+` WHERE a.winner_id = $1 AND a.status = 'completed' AND a.payment_status = 'pending' ORDER BY a.end_time DESC`, winnerID)
}

func (r *Repository) queryIDs(ctx context.Context, query string, args ...any) ([]int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't query auction ids", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan auction id", zap.Error(err))
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindExpired returns active auctions whose end time has passed, oldest first.
func (r *Repository) FindExpired(ctx context.Context, now time.Time, limit int) ([]int, error) {
	query := `
		SELECT id
		FROM auctions
		WHERE status = 'active' AND end_time <= $1
		ORDER BY end_time ASC
		LIMIT $2
	`
	return r.queryIDs(ctx, query, now, limit)
}

// FindEndingSoon returns active auctions ending in (now, until] that have
// not been reminded about yet.
func (r *Repository) FindEndingSoon(ctx context.Context, now, until time.Time, limit int) ([]int, error) {
	query := `
		SELECT id
		FROM auctions
		WHERE status = 'active' AND NOT ending_notified AND end_time > $1 AND end_time <= $2
		ORDER BY end_time ASC
		LIMIT $3
	`
	return r.queryIDs(ctx, query, now, until, limit)
}
