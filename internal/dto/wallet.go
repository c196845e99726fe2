package dto

import (
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/pkg/money"
)

type TopUpRequestDTO struct {
	Amount string `json:"amount" validate:"required,amount"`
}

type CashOutRequestDTO struct {
	Amount string `json:"amount" validate:"required,amount"`
	Card   string `json:"card" validate:"required,card"`
}

type BalanceResponseDTO struct {
	Balance     string `json:"balance"`
	TotalEarned string `json:"total_earned"`
}

type TransactionResponseDTO struct {
	ID           int       `json:"id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	BalanceAfter string    `json:"balance_after"`
	AuctionID    *int      `json:"auction_id,omitempty"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type PaymentResponseDTO struct {
	Message string                 `json:"message"`
	Payment TransactionResponseDTO `json:"payment"`
}

type ReconcileResponseDTO struct {
	Balance    string `json:"balance"`
	LedgerSum  string `json:"ledger_sum"`
	Consistent bool   `json:"consistent"`
}

func NewTransactionResponse(t *domain.WalletTransaction) TransactionResponseDTO {
	return TransactionResponseDTO{
		ID:           t.ID,
		Type:         string(t.Type),
		Amount:       money.Format(t.Amount),
		BalanceAfter: money.Format(t.BalanceAfter),
		AuctionID:    t.AuctionID,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

type WalletOperationResponseDTO struct {
	Message string `json:"message"`
	Balance string `json:"balance"`
}
