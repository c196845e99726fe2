package walletrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

// GetBalance returns the cached wallet balance, or nil for an unknown user.
func (r *Repository) GetBalance(ctx context.Context, userID int) (*decimal.Decimal, error) {
	query := `
		SELECT wallet_balance::text
		FROM users
		WHERE id = $1
	`
	var balance string
	if err := r.db.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get wallet balance", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	d, err := pg.Decimal(balance)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// LockBalances locks the given users' rows in ascending id order and returns
// their balances. Unknown ids are absent from the result.
func (r *Repository) LockBalances(ctx context.Context, userIDs ...int) (map[int]decimal.Decimal, error) {
	query := `
		SELECT id, wallet_balance::text
		FROM users
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`
	rows, err := r.db.Query(ctx, query, userIDs)
	if err != nil {
		zap.L().Error("failed to lock wallets", zap.Ints("user_ids", userIDs), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	balances := make(map[int]decimal.Decimal, len(userIDs))
	for rows.Next() {
		var (
			id      int
			balance string
		)
		if err := rows.Scan(&id, &balance); err != nil {
			zap.L().Error("failed to scan wallet", zap.Error(err))
			return nil, err
		}
		d, err := pg.Decimal(balance)
		if err != nil {
			return nil, err
		}
		balances[id] = d
	}
	return balances, rows.Err()
}

// Apply moves the user's balance by entry.Amount and appends the matching
// ledger row in one transaction. BalanceAfter, ID and CreatedAt are filled in.
func (r *Repository) Apply(ctx context.Context, entry *domain.WalletTransaction) (*domain.WalletTransaction, error) {
	updateBalance := `
		UPDATE users
		SET wallet_balance = wallet_balance + $1
		WHERE id = $2
		RETURNING wallet_balance::text
	`
	insertEntry := `
		INSERT INTO wallet_transactions (user_id, type, amount, balance_after, auction_id, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var after string
		if err := r.db.QueryRow(ctx, updateBalance, entry.Amount.StringFixed(2), entry.UserID).Scan(&after); err != nil {
			zap.L().Error("failed to update wallet balance", zap.Int("user_id", entry.UserID), zap.Error(err))
			return err
		}
		balanceAfter, err := pg.Decimal(after)
		if err != nil {
			return err
		}
		entry.BalanceAfter = balanceAfter

		err = r.db.QueryRow(ctx, insertEntry,
			entry.UserID, string(entry.Type), entry.Amount.StringFixed(2), entry.BalanceAfter.StringFixed(2),
			entry.AuctionID, entry.Description,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			zap.L().Error("failed to append wallet transaction", zap.Int("user_id", entry.UserID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID, limit int) ([]domain.WalletTransaction, error) {
	query := `
		SELECT id, user_id, type, amount::text, balance_after::text, auction_id, description, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		zap.L().Error("failed to list wallet transactions", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var (
			tx                 domain.WalletTransaction
			typ, amount, after string
			auctionID          pgtype.Int4
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &amount, &after, &auctionID, &tx.Description, &tx.CreatedAt); err != nil {
			zap.L().Error("failed to scan wallet transaction", zap.Error(err))
			return nil, err
		}
		if tx.Amount, err = pg.Decimal(amount); err != nil {
			return nil, err
		}
		if tx.BalanceAfter, err = pg.Decimal(after); err != nil {
			return nil, err
		}
		tx.Type = domain.TransactionType(typ)
		tx.AuctionID = pg.NullInt(auctionID)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// Sum adds up every signed ledger amount of the user.
func (r *Repository) Sum(ctx context.Context, userID int) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM wallet_transactions
		WHERE user_id = $1
	`
	return r.sum(ctx, query, userID)
}

func (r *Repository) SumByType(ctx context.Context, userID int, typ domain.TransactionType) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)::text
		FROM wallet_transactions
		WHERE user_id = $1 AND type = $2
	`
	return r.sum(ctx, query, userID, string(typ))
}

func (r *Repository) sum(ctx context.Context, query string, args ...any) (decimal.Decimal, error) {
	var total string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		zap.L().Error("failed to sum wallet transactions", zap.Error(err))
		return decimal.Zero, err
	}
	return pg.Decimal(total)
}
