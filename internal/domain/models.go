package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "active"
	AuctionCompleted AuctionStatus = "completed"
	AuctionCancelled AuctionStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type TransactionType string

const (
	TxTopUp           TransactionType = "top_up"
	TxPaymentMade     TransactionType = "payment_made"
	TxPaymentReceived TransactionType = "payment_received"
	TxCashOut         TransactionType = "cash_out"
)

type NotificationType string

const (
	NotificationOutbid          NotificationType = "outbid"
	NotificationWon             NotificationType = "won"
	NotificationNewAuction      NotificationType = "new_auction"
	NotificationAuctionEnding   NotificationType = "auction_ending"
	NotificationPaymentReceived NotificationType = "payment_received"
)

type User struct {
	ID            int             `db:"id"`
	Username      string          `db:"username"`
	Email         string          `db:"email"`
	PasswordHash  string          `db:"password_hash"`
	WalletBalance decimal.Decimal `db:"wallet_balance"`
	CreatedAt     time.Time       `db:"created_at"`
}

type Category struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type Auction struct {
	ID             int                 `db:"id"`
	SellerID       int                 `db:"seller_id"`
	SellerName     string              `db:"seller_name"`
	CategoryID     *int                `db:"category_id"`
	CategoryName   string              `db:"category_name"`
	Title          string              `db:"title"`
	Description    string              `db:"description"`
	ImagePath      string              `db:"image_path"`
	StartingBid    decimal.Decimal     `db:"starting_bid"`
	CurrentBid     decimal.NullDecimal `db:"current_bid"`
	EndTime        time.Time           `db:"end_time"`
	Status         AuctionStatus       `db:"status"`
	WinnerID       *int                `db:"winner_id"`
	SoldPrice      decimal.NullDecimal `db:"sold_price"`
	PaymentStatus  PaymentStatus       `db:"payment_status"`
	EndingNotified bool                `db:"ending_notified"`
	BidCount       int                 `db:"bid_count"`
	CreatedAt      time.Time           `db:"created_at"`
}

// MinimumBid is the lowest amount the next bid may have: the starting bid
// itself while nobody has bid, otherwise the current bid plus increment.
func (a *Auction) MinimumBid(increment decimal.Decimal) decimal.Decimal {
	if !a.CurrentBid.Valid {
		return a.StartingBid
	}
	next := a.CurrentBid.Decimal.Add(increment)
	if next.LessThan(a.StartingBid) {
		return a.StartingBid
	}
	return next
}

// Price is the amount shown to buyers.
func (a *Auction) Price() decimal.Decimal {
	if a.CurrentBid.Valid {
		return a.CurrentBid.Decimal
	}
	return a.StartingBid
}

func (a *Auction) AcceptsBids(now time.Time) bool {
	return a.Status == AuctionActive && a.EndTime.After(now)
}

func (a *Auction) Overdue(now time.Time) bool {
	return a.Status == AuctionActive && !a.EndTime.After(now)
}

type Bid struct {
	ID            int             `db:"id"`
	AuctionID     int             `db:"auction_id"`
	BidderID      int             `db:"bidder_id"`
	BidderName    string          `db:"bidder_name"`
	Amount        decimal.Decimal `db:"amount"`
	CreatedAt     time.Time       `db:"created_at"`
	AuctionTitle  string          `db:"auction_title"`
	AuctionStatus AuctionStatus   `db:"auction_status"`
}

// WalletTransaction is one ledger row. Amount is signed: credits are
// positive, debits negative, so a user's balance is the sum of Amount.
type WalletTransaction struct {
	ID           int             `db:"id"`
	UserID       int             `db:"user_id"`
	Type         TransactionType `db:"type"`
	Amount       decimal.Decimal `db:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	AuctionID    *int            `db:"auction_id"`
	Description  string          `db:"description"`
	CreatedAt    time.Time       `db:"created_at"`
}

type Notification struct {
	ID        int              `db:"id"`
	UserID    int              `db:"user_id"`
	Message   string           `db:"message"`
	Type      NotificationType `db:"type"`
	IsRead    bool             `db:"is_read"`
	CreatedAt time.Time        `db:"created_at"`
}

type AuctionFilter struct {
	CategoryID *int
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	Search     string
	Limit      int
	Offset     int
}
