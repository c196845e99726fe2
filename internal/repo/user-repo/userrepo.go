package userrepo

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

// FindByLogin looks a user up by username or email.
func (repo *Repository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, wallet_balance::text, created_at
		FROM users
		WHERE username = $1 OR email = $1
	`
	return repo.findOne(ctx, query, login)
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	query := `
		SELECT id, username, email, password_hash, wallet_balance::text, created_at
		FROM users
		WHERE id = $1
	`
	return repo.findOne(ctx, query, id)
}

func (repo *Repository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	var balance string
	err := repo.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &balance, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	if user.WalletBalance, err = pg.Decimal(balance); err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	return user, nil
}
