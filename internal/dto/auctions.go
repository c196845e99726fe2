package dto

import (
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/pkg/money"
)

type CreateAuctionRequestDTO struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=5000"`
	ImagePath    string `json:"image_path" validate:"max=255"`
	CategoryID   *int   `json:"category_id" validate:"omitempty,gte=1"`
	StartingBid  string `json:"starting_bid" validate:"required,amount"`
	DurationDays int    `json:"duration_days" validate:"omitempty,gte=1,lte=30"`
}

type UpdateAuctionRequestDTO struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"required,max=5000"`
	CategoryID   *int   `json:"category_id" validate:"omitempty,gte=1"`
	DurationDays int    `json:"duration_days" validate:"omitempty,gte=1,lte=30"`
}

type AuctionResponseDTO struct {
	ID            int       `json:"id"`
	SellerID      int       `json:"seller_id"`
	SellerName    string    `json:"seller_name"`
	CategoryID    *int      `json:"category_id,omitempty"`
	CategoryName  string    `json:"category_name,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImagePath     string    `json:"image_path,omitempty"`
	StartingBid   string    `json:"starting_bid"`
	CurrentBid    string    `json:"current_bid,omitempty"`
	Price         string    `json:"price"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	WinnerID      *int      `json:"winner_id,omitempty"`
	SoldPrice     string    `json:"sold_price,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	BidCount      int       `json:"bid_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type AuctionDetailsResponseDTO struct {
	Auction    AuctionResponseDTO `json:"auction"`
	MinimumBid string             `json:"minimum_bid"`
	Bids       []BidResponseDTO   `json:"bids"`
}

type CategoryResponseDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CloseExpiredResponseDTO struct {
	Closed   int `json:"closed"`
	Reminded int `json:"reminded"`
}

func NewAuctionResponse(a *domain.Auction) AuctionResponseDTO {
	return AuctionResponseDTO{
		ID:            a.ID,
		SellerID:      a.SellerID,
		SellerName:    a.SellerName,
		CategoryID:    a.CategoryID,
		CategoryName:  a.CategoryName,
		Title:         a.Title,
		Description:   a.Description,
		ImagePath:     a.ImagePath,
		StartingBid:   money.Format(a.StartingBid),
		CurrentBid:    money.FormatNull(a.CurrentBid),
		Price:         money.Format(a.Price()),
		EndTime:       a.EndTime,
		Status:        string(a.Status),
		WinnerID:      a.WinnerID,
		SoldPrice:     money.FormatNull(a.SoldPrice),
		PaymentStatus: string(a.PaymentStatus),
		BidCount:      a.BidCount,
		CreatedAt:     a.CreatedAt,
	}
}

func NewAuctionsResponse(auctions []domain.Auction) []AuctionResponseDTO {
	response := make([]AuctionResponseDTO, len(auctions))
	for i := range auctions {
		response[i] = NewAuctionResponse(&auctions[i])
	}
	return response
}
