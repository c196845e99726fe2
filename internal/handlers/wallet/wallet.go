package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/service/walletservice"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/GlebRadaev/artauction/pkg/utils"
	"github.com/GlebRadaev/artauction/pkg/validate"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=wallet.go -destination=wallet_mock.go -package=wallet

type Service interface {
	GetBalance(ctx context.Context, userID int) (decimal.Decimal, error)
	TotalEarned(ctx context.Context, userID int) (decimal.Decimal, error)
	TopUp(ctx context.Context, userID int, amount string) (decimal.Decimal, error)
	CashOut(ctx context.Context, userID int, amount, cardNumber string) (decimal.Decimal, error)
	GetTransactions(ctx context.Context, userID int) ([]domain.WalletTransaction, error)
	Reconcile(ctx context.Context, userID int) (*walletservice.Reconciliation, error)
	PayAuction(ctx context.Context, auctionID, buyerID int) (*walletservice.TransferResult, error)
}

type WalletHandler struct {
	walletService Service
}

func New(walletService Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, walletservice.ErrInsufficientFunds):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, walletservice.ErrInvalidCard),
		errors.Is(err, walletservice.ErrSelfTransfer):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAuctionNotFound), errors.Is(err, domain.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, walletservice.ErrNotWinner):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, walletservice.ErrAlreadyPaid), errors.Is(err, walletservice.ErrAuctionNotCompleted):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetBalance godoc
//
//	@Summary		Get wallet balance
//	@Description	Current wallet balance and the total received from sold auctions.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallet [get]
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	balance, err := h.walletService.GetBalance(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	earned, err := h.walletService.TotalEarned(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{
		Balance:     money.Format(balance),
		TotalEarned: money.Format(earned),
	})
}

// TopUp godoc
//
//	@Summary		Top up the wallet
//	@Description	Adds between RM10.00 and RM1,000,000.00 to the wallet.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.TopUpRequestDTO	true	"Amount"
//	@Success		200		{object}	dto.WalletOperationResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		422		{object}	utils.Response	"Amount out of range"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallet/topup [post]
func (h *WalletHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	var req dto.TopUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := h.walletService.TopUp(r.Context(), userID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WalletOperationResponseDTO{
		Message: "Wallet topped up",
		Balance: money.Format(balance),
	})
}

// CashOut godoc
//
//	@Summary		Cash out to a card
//	@Description	Moves money from the wallet to a payout card.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CashOutRequestDTO	true	"Amount and card"
//	@Success		200		{object}	dto.WalletOperationResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		402		{object}	utils.Response	"Insufficient funds"
//	@Failure		422		{object}	utils.Response	"Invalid amount or card"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallet/cashout [post]
func (h *WalletHandler) CashOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	var req dto.CashOutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	balance, err := h.walletService.CashOut(r.Context(), userID, req.Amount, req.Card)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.WalletOperationResponseDTO{
		Message: "Cash out requested",
		Balance: money.Format(balance),
	})
}

// GetTransactions godoc
//
//	@Summary		Wallet history
//	@Description	The 50 most recent ledger entries, newest first. Debits are negative.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		dto.TransactionResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/user/wallet/transactions [get]
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	transactions, err := h.walletService.GetTransactions(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	response := make([]dto.TransactionResponseDTO, len(transactions))
	for i := range transactions {
		response[i] = dto.NewTransactionResponse(&transactions[i])
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Reconcile godoc
//
//	@Summary	Compare the wallet balance with the ledger
//	@Tags		Wallet
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	dto.ReconcileResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/wallet/reconcile [get]
func (h *WalletHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	report, err := h.walletService.Reconcile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ReconcileResponseDTO{
		Balance:    money.Format(report.Balance),
		LedgerSum:  money.Format(report.LedgerSum),
		Consistent: report.Consistent,
	})
}

// Pay godoc
//
//	@Summary		Pay for a won auction
//	@Description	Transfers the sold price from the winner's wallet to the seller's wallet.
//	@Tags			Wallet
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Auction id"
//	@Success		200	{object}	dto.PaymentResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		402	{object}	utils.Response	"Insufficient funds"
//	@Failure		403	{object}	utils.Response	"Not the winner"
//	@Failure		404	{object}	utils.Response	"Auction not found"
//	@Failure		409	{object}	utils.Response	"Already paid or not completed"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id}/pay [post]
func (h *WalletHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	auctionID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || auctionID < 1 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid auction id")
		return
	}

	result, err := h.walletService.PayAuction(r.Context(), auctionID, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.PaymentResponseDTO{
		Message: "Payment successful",
		Payment: dto.NewTransactionResponse(result.Debit),
	})
}
