package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAuction_MinimumBid(t *testing.T) {
	increment := decimal.RequireFromString("1.00")

	tests := []struct {
		name       string
		auction    Auction
		wantString string
	}{
		{
			name:       "no bids yet, starting bid is acceptable",
			auction:    Auction{StartingBid: decimal.RequireFromString("100.00")},
			wantString: "100.00",
		},
		{
			name: "current bid plus increment",
			auction: Auction{
				StartingBid: decimal.RequireFromString("100.00"),
				CurrentBid:  decimal.NewNullDecimal(decimal.RequireFromString("150.00")),
			},
			wantString: "151.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantString, tt.auction.MinimumBid(increment).StringFixed(2))
		})
	}
}

func TestAuction_State(t *testing.T) {
	now := time.Now()
	open := Auction{Status: AuctionActive, EndTime: now.Add(time.Hour)}
	overdue := Auction{Status: AuctionActive, EndTime: now.Add(-time.Minute)}
	done := Auction{Status: AuctionCompleted, EndTime: now.Add(-time.Minute)}

	assert.True(t, open.AcceptsBids(now))
	assert.False(t, open.Overdue(now))
	assert.False(t, overdue.AcceptsBids(now))
	assert.True(t, overdue.Overdue(now))
	assert.False(t, done.AcceptsBids(now))
	assert.False(t, done.Overdue(now))
}

func TestAuction_Price(t *testing.T) {
	a := Auction{StartingBid: decimal.RequireFromString("10.00")}
	assert.Equal(t, "10.00", a.Price().StringFixed(2))

	a.CurrentBid = decimal.NewNullDecimal(decimal.RequireFromString("12.50"))
	assert.Equal(t, "12.50", a.Price().StringFixed(2))
}
