package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_FindByLogin(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()
	query := regexp.QuoteMeta(`SELECT id, username, email, password_hash, wallet_balance::text, created_at FROM users WHERE username = $1 OR email = $1`)

	tests := []struct {
		name      string
		login     string
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name:  "User found by email",
			login: "alice@example.com",
			mockSetup: func() {
				mock.ExpectQuery(query).
					WithArgs("alice@example.com").
					WillReturnRows(pgxmock.NewRows([]string{"id", "username", "email", "password_hash", "wallet_balance", "created_at"}).
						AddRow(1, "alice", "alice@example.com", "hash", "1000.00", created))
			},
			result: &domain.User{
				ID:            1,
				Username:      "alice",
				Email:         "alice@example.com",
				PasswordHash:  "hash",
				WalletBalance: decimal.RequireFromString("1000.00"),
				CreatedAt:     created,
			},
		},
		{
			name:  "User not found",
			login: "nobody",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("nobody").WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name:  "Database error",
			login: "alice",
			mockSetup: func() {
				mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByLogin(context.Background(), tt.login)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			if tt.result == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.result.ID, result.ID)
			assert.Equal(t, tt.result.Username, result.Username)
			assert.True(t, tt.result.WalletBalance.Equal(result.WalletBalance))
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()
	query := regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`)

	t.Run("Successfully creates user", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("bob", "bob@example.com", "hash").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(2, created))

		user, err := repo.Create(context.Background(), &domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "hash"})
		require.NoError(t, err)
		assert.Equal(t, 2, user.ID)
		assert.Equal(t, created, user.CreatedAt)
	})

	t.Run("Unique violation", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs("bob", "bob@example.com", "hash").
			WillReturnError(errors.New("duplicate key value violates unique constraint"))

		user, err := repo.Create(context.Background(), &domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "hash"})
		assert.Error(t, err)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
