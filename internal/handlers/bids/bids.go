package bids

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/service/biddingservice"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/GlebRadaev/artauction/pkg/utils"
	"github.com/GlebRadaev/artauction/pkg/validate"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:generate mockgen -source=bids.go -destination=bids_mock.go -package=bids

type Service interface {
	PlaceBid(ctx context.Context, auctionID, bidderID int, amount string) (*biddingservice.PlaceBidResult, error)
	GetBids(ctx context.Context, auctionID int) ([]domain.Bid, error)
	GetUserBids(ctx context.Context, userID int) ([]domain.Bid, error)
	AcceptBid(ctx context.Context, auctionID, sellerID int) (biddingservice.CloseOutcome, error)
	CloseExpired(ctx context.Context, limit int) (int, error)
	NotifyEndingSoon(ctx context.Context, window time.Duration, limit int) (int, error)
	Audit(ctx context.Context, auctionID int) (*biddingservice.AuditReport, error)
}

const (
	CloserTokenHeader = "X-Closer-Token"
	closeBatch        = 100
)

type BidHandler struct {
	bidService  Service
	closerToken string
	endingSoon  time.Duration
}

func New(bidService Service, closerToken string, endingSoon time.Duration) *BidHandler {
	return &BidHandler{
		bidService:  bidService,
		closerToken: closerToken,
		endingSoon:  endingSoon,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, money.ErrInvalidAmount), errors.Is(err, biddingservice.ErrBidTooLow):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAuctionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, biddingservice.ErrSelfBidding):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAuctionClosed), errors.Is(err, biddingservice.ErrNoBidsYet):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func auctionID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// PlaceBid godoc
//
//	@Summary		Place a bid
//	@Description	The first bid may equal the starting bid; every later bid must beat the current bid by at least the minimum increment.
//	@Tags			Bids
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Auction id"
//	@Param			request	body		dto.PlaceBidRequestDTO	true	"Bid"
//	@Success		201		{object}	dto.PlaceBidResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		403		{object}	utils.Response	"Bidding on own auction"
//	@Failure		404		{object}	utils.Response	"Auction not found"
//	@Failure		409		{object}	utils.Response	"Auction closed"
//	@Failure		422		{object}	utils.Response	"Bid too low"
//	@Failure		429		{object}	utils.Response	"Too many requests"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id}/bids [post]
func (h *BidHandler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	id, ok := auctionID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid auction id")
		return
	}

	var req dto.PlaceBidRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.bidService.PlaceBid(r.Context(), id, userID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewPlaceBidResponse(result.Bid, result.PreviousBid, result.CurrentBid))
}

// History godoc
//
//	@Summary	Bid history of an auction
//	@Tags		Bids
//	@Produce	json
//	@Param		id	path		int	true	"Auction id"
//	@Success	200	{array}		dto.BidResponseDTO
//	@Failure	400	{object}	utils.Response	"Invalid auction id"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/auctions/{id}/bids [get]
func (h *BidHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid auction id")
		return
	}
	bids, err := h.bidService.GetBids(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBidsResponse(bids))
}

// UserBids godoc
//
//	@Summary	Bids placed by the current user
//	@Tags		Bids
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.BidResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/bids [get]
func (h *BidHandler) UserBids(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	bids, err := h.bidService.GetUserBids(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBidsResponse(bids))
}

// Accept godoc
//
//	@Summary		Accept the highest bid now
//	@Description	Seller-only early acceptance. Ends the auction and sells to the highest bidder.
//	@Tags			Bids
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Auction id"
//	@Success		200	{object}	dto.CloseResponseDTO
//	@Failure		403	{object}	utils.Response	"Not the seller"
//	@Failure		404	{object}	utils.Response	"Auction not found"
//	@Failure		409	{object}	utils.Response	"Auction closed or has no bids"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id}/accept [post]
func (h *BidHandler) Accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	id, ok := auctionID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid auction id")
		return
	}
	outcome, err := h.bidService.AcceptBid(r.Context(), id, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CloseResponseDTO{
		Message: "Auction closed",
		Outcome: string(outcome),
	})
}

// Audit godoc
//
//	@Summary		Check the current bid against the bid log
//	@Description	Re-derives the highest bid from stored bids and compares it with the auction's current bid.
//	@Tags			Bids
//	@Produce		json
//	@Param			id	path		int	true	"Auction id"
//	@Success		200	{object}	dto.AuditResponseDTO
//	@Failure		404	{object}	utils.Response	"Auction not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id}/audit [get]
func (h *BidHandler) Audit(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid auction id")
		return
	}
	report, err := h.bidService.Audit(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.AuditResponseDTO{
		AuctionID:  report.AuctionID,
		CurrentBid: money.FormatNull(report.CurrentBid),
		HighestBid: money.FormatNull(report.HighestBid),
		Consistent: report.Consistent,
	})
}

// CloseExpired godoc
//
//	@Summary		Close overdue auctions
//	@Description	Called by the closer. Closes a batch of overdue auctions and sends ending reminders. Safe to repeat.
//	@Tags			Bids
//	@Produce		json
//	@Param			X-Closer-Token	header		string	true	"Closer token"
//	@Success		200				{object}	dto.CloseExpiredResponseDTO
//	@Failure		403				{object}	utils.Response	"Invalid closer token"
//	@Failure		500				{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/close-expired [post]
func (h *BidHandler) CloseExpired(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(CloserTokenHeader)
	if h.closerToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.closerToken)) != 1 {
		utils.RespondWithError(w, http.StatusForbidden, "Invalid closer token")
		return
	}

	closed, err := h.bidService.CloseExpired(r.Context(), closeBatch)
	if err != nil {
		zap.L().Error("close expired run finished with errors", zap.Int("closed", closed), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	reminded, err := h.bidService.NotifyEndingSoon(r.Context(), h.endingSoon, closeBatch)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.CloseExpiredResponseDTO{
		Closed:   closed,
		Reminded: reminded,
	})
}
