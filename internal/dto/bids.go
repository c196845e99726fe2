package dto

import (
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/shopspring/decimal"
)

type PlaceBidRequestDTO struct {
	Amount string `json:"amount" validate:"required,amount"`
}

type BidResponseDTO struct {
	ID            int       `json:"id"`
	AuctionID     int       `json:"auction_id"`
	BidderID      int       `json:"bidder_id"`
	BidderName    string    `json:"bidder_name,omitempty"`
	Amount        string    `json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
	AuctionTitle  string    `json:"auction_title,omitempty"`
	AuctionStatus string    `json:"auction_status,omitempty"`
}

type PlaceBidResponseDTO struct {
	Message     string          `json:"message"`
	Bid         BidResponseDTO  `json:"bid"`
	PreviousBid *BidResponseDTO `json:"previous_bid"`
	CurrentBid  string          `json:"current_bid"`
}

type CloseResponseDTO struct {
	Message string `json:"message"`
	Outcome string `json:"outcome"`
}

type AuditResponseDTO struct {
	AuctionID  int    `json:"auction_id"`
	CurrentBid string `json:"current_bid,omitempty"`
	HighestBid string `json:"highest_bid,omitempty"`
	Consistent bool   `json:"consistent"`
}

func NewBidResponse(b *domain.Bid) BidResponseDTO {
	return BidResponseDTO{
		ID:            b.ID,
		AuctionID:     b.AuctionID,
		BidderID:      b.BidderID,
		BidderName:    b.BidderName,
		Amount:        money.Format(b.Amount),
		CreatedAt:     b.CreatedAt,
		AuctionTitle:  b.AuctionTitle,
		AuctionStatus: string(b.AuctionStatus),
	}
}

// NewPlaceBidResponse leaves previous_bid null for the first bid.
func NewPlaceBidResponse(bid, previous *domain.Bid, current decimal.Decimal) PlaceBidResponseDTO {
	resp := PlaceBidResponseDTO{
		Message:    "Bid placed",
		Bid:        NewBidResponse(bid),
		CurrentBid: money.Format(current),
	}
	if previous != nil {
		prev := NewBidResponse(previous)
		resp.PreviousBid = &prev
	}
	return resp
}

func NewBidsResponse(bids []domain.Bid) []BidResponseDTO {
	response := make([]BidResponseDTO, len(bids))
	for i := range bids {
		response[i] = NewBidResponse(&bids[i])
	}
	return response
}
