package pg

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTXManager_BeginJoinsOuterTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), txKey{}, tx)
	m := &txManager{}

	tests := []struct {
		name    string
		fnErr   error
		wantErr bool
	}{
		{name: "fn succeeds", fnErr: nil, wantErr: false},
		{name: "fn error is returned as is", fnErr: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			err := m.Begin(ctx, func(inner context.Context) error {
				called = true
				got, ok := txFromContext(inner)
				assert.True(t, ok)
				assert.Equal(t, tx, got)
				return tt.fnErr
			})
			assert.True(t, called)
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.fnErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_ConnPrefersTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	db := &DB{}
	ctx := context.WithValue(context.Background(), txKey{}, tx)
	assert.Equal(t, tx, db.conn(ctx))

	_, ok := txFromContext(context.Background())
	assert.False(t, ok)
}
