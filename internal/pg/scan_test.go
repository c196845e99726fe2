package pg

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullDecimal(t *testing.T) {
	d, err := NullDecimal(pgtype.Text{})
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = NullDecimal(pgtype.Text{String: "250.00", Valid: true})
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.True(t, d.Decimal.Equal(decimal.NewFromInt(250)))

	_, err = NullDecimal(pgtype.Text{String: "x", Valid: true})
	assert.Error(t, err)
}

func TestNullInt(t *testing.T) {
	assert.Nil(t, NullInt(pgtype.Int4{}))
	got := NullInt(pgtype.Int4{Int32: 7, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)
}

func TestNullNumeric(t *testing.T) {
	assert.Nil(t, NullNumeric(decimal.NullDecimal{}))
	got := NullNumeric(decimal.NewNullDecimal(decimal.RequireFromString("3.5")))
	require.NotNil(t, got)
	assert.Equal(t, "3.50", *got)
}
