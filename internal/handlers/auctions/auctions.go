package auctions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/service/auctionservice"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/GlebRadaev/artauction/pkg/utils"
	"github.com/GlebRadaev/artauction/pkg/validate"
	"github.com/go-chi/chi/v5"
)

//go:generate mockgen -source=auctions.go -destination=auctions_mock.go -package=auctions

type Service interface {
	Create(ctx context.Context, sellerID int, in auctionservice.CreateAuctionInput) (*domain.Auction, error)
	Get(ctx context.Context, id int) (*auctionservice.AuctionDetails, error)
	ListActive(ctx context.Context, filter auctionservice.ListFilter) ([]domain.Auction, error)
	Update(ctx context.Context, sellerID, id int, in auctionservice.UpdateAuctionInput) (*domain.Auction, error)
	Cancel(ctx context.Context, sellerID, id int) error
	ListBySeller(ctx context.Context, sellerID int) ([]domain.Auction, error)
	ListWon(ctx context.Context, userID int) ([]domain.Auction, error)
	ListPendingPayments(ctx context.Context, userID int) ([]domain.Auction, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type AuctionHandler struct {
	auctionService Service
}

func New(auctionService Service) *AuctionHandler {
	return &AuctionHandler{
		auctionService: auctionService,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, auctionservice.ErrInvalidAuction),
		errors.Is(err, auctionservice.ErrCategoryNotFound):
		utils.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAuctionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrAuctionClosed), errors.Is(err, auctionservice.ErrHasBids):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func auctionID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// List godoc
//
//	@Summary		List active auctions
//	@Description	Active auctions ending soonest first, 12 per page. Price filters apply to the current price.
//	@Tags			Auctions
//	@Produce		json
//	@Param			category	query		int		false	"Category id"
//	@Param			min_price	query		string	false	"Minimum price"
//	@Param			max_price	query		string	false	"Maximum price"
//	@Param			q			query		string	false	"Search in title and description"
//	@Param			page		query		int		false	"Page number, starting at 1"
//	@Success		200			{array}		dto.AuctionResponseDTO
//	@Failure		400			{object}	utils.Response	"Invalid filter"
//	@Failure		500			{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions [get]
func (h *AuctionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := auctionservice.ListFilter{
		MinPrice: query.Get("min_price"),
		MaxPrice: query.Get("max_price"),
		Search:   query.Get("q"),
	}
	if v := query.Get("category"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		filter.CategoryID = &id
	}
	if v := query.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid page")
			return
		}
		filter.Page = page
	}

	auctions, err := h.auctionService.ListActive(r.Context(), filter)
	if err != nil {
		if errors.Is(err, money.ErrInvalidAmount) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAuctionsResponse(auctions))
}

// Get godoc
//
//	@Summary		Get auction details
//	@Description	Auction with its bid history, highest bid first, and the minimum next bid.
//	@Tags			Auctions
//	@Produce		json
//	@Param			id	path		int	true	"Auction id"
//	@Success		200	{object}	dto.AuctionDetailsResponseDTO
//	@Failure		400	{object}	utils.Response	"Invalid auction id"
//	@Failure		404	{object}	utils.Response	"Auction not found"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id} [get]
func (h *AuctionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := auctionID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid auction id")
		return
	}
	details, err := h.auctionService.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.AuctionDetailsResponseDTO{
		Auction:    dto.NewAuctionResponse(details.Auction),
		MinimumBid: money.Format(details.MinimumBid),
		Bids:       dto.NewBidsResponse(details.Bids),
	})
}

// Create godoc
//
//	@Summary		Create an auction
//	@Description	List an artwork. Every other user is notified about the new auction.
//	@Tags			Auctions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateAuctionRequestDTO	true	"Auction"
//	@Success		201		{object}	dto.AuctionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"User not authorized"
//	@Failure		422		{object}	utils.Response	"Invalid auction"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions [post]
func (h *AuctionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}

	var req dto.CreateAuctionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	auction, err := h.auctionService.Create(r.Context(), userID, auctionservice.CreateAuctionInput{
		Title:        req.Title,
		Description:  req.Description,
		ImagePath:    req.ImagePath,
		CategoryID:   req.CategoryID,
		StartingBid:  req.StartingBid,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewAuctionResponse(auction))
}

// Update godoc
//
//	@Summary		Edit an auction
//	@Description	Only the seller may edit, and only while the auction is active and has no bids. The end time restarts.
//	@Tags			Auctions
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Auction id"
//	@Param			request	body		dto.UpdateAuctionRequestDTO	true	"Auction"
//	@Success		200		{object}	dto.AuctionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Not the seller"
//	@Failure		404		{object}	utils.Response	"Auction not found"
//	@Failure		409		{object}	utils.Response	"Auction closed or already has bids"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id} [put]
func (h *AuctionHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req dto.UpdateAuctionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	auction, err := h.auctionService.Update(r.Context(), userID, id, auctionservice.UpdateAuctionInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAuctionResponse(auction))
}

// Cancel godoc
//
//	@Summary		Cancel an auction
//	@Description	Withdraw an active auction that has no bids.
//	@Tags			Auctions
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Auction id"
//	@Success		200	{object}	utils.Response	"Auction cancelled"
//	@Failure		403	{object}	utils.Response	"Not the seller"
//	@Failure		404	{object}	utils.Response	"Auction not found"
//	@Failure		409	{object}	utils.Response	"Auction closed or already has bids"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/auctions/{id} [delete]
func (h *AuctionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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
	if err := h.auctionService.Cancel(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Message: "Auction cancelled"})
}

// Categories godoc
//
//	@Summary	List categories
//	@Tags		Auctions
//	@Produce	json
//	@Success	200	{array}		dto.CategoryResponseDTO
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/categories [get]
func (h *AuctionHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.auctionService.Categories(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	response := make([]dto.CategoryResponseDTO, len(categories))
	for i, c := range categories {
		response[i] = dto.CategoryResponseDTO{ID: c.ID, Name: c.Name}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// MyAuctions godoc
//
//	@Summary	Auctions created by the current user
//	@Tags		Auctions
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.AuctionResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/auctions [get]
func (h *AuctionHandler) MyAuctions(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, h.auctionService.ListBySeller)
}

// Won godoc
//
//	@Summary	Auctions won by the current user
//	@Tags		Auctions
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.AuctionResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/won [get]
func (h *AuctionHandler) Won(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, h.auctionService.ListWon)
}

// PendingPayments godoc
//
//	@Summary	Won auctions waiting for payment
//	@Tags		Auctions
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.AuctionResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/user/payments/pending [get]
func (h *AuctionHandler) PendingPayments(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, h.auctionService.ListPendingPayments)
}

func (h *AuctionHandler) listForUser(w http.ResponseWriter, r *http.Request, list func(context.Context, int) ([]domain.Auction, error)) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not authorized")
		return
	}
	auctions, err := list(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewAuctionsResponse(auctions))
}
