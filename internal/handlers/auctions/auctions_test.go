package auctions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/service/auctionservice"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/GlebRadaev/artauction/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*AuctionHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func newRequest(method, target, body string, userID int, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := req.Context()
	if userID > 0 {
		ctx = auth.WithUserID(ctx, userID)
	}
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func sampleAuction() *domain.Auction {
	return &domain.Auction{
		ID:            3,
		SellerID:      10,
		SellerName:    "painter",
		Title:         "Harbour at dusk",
		Description:   "Oil on canvas",
		StartingBid:   decimal.RequireFromString("100"),
		CurrentBid:    decimal.NewNullDecimal(decimal.RequireFromString("150.5")),
		EndTime:       time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC),
		Status:        domain.AuctionActive,
		PaymentStatus: domain.PaymentPending,
		BidCount:      2,
	}
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	var resp utils.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp.Message
}

func TestList(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		prepareMock  func(s *MockService)
		expectedCode int
	}{
		{
			name:   "Filters are passed to the service",
			target: "/api/auctions?category=2&min_price=10&max_price=500.50&q=harbour&page=2",
			prepareMock: func(s *MockService) {
				categoryID := 2
				s.EXPECT().ListActive(gomock.Any(), auctionservice.ListFilter{
					CategoryID: &categoryID,
					MinPrice:   "10",
					MaxPrice:   "500.50",
					Search:     "harbour",
					Page:       2,
				}).Return([]domain.Auction{*sampleAuction()}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Invalid category",
			target:       "/api/auctions?category=abc",
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Invalid page",
			target:       "/api/auctions?page=0",
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "Invalid price",
			target: "/api/auctions?min_price=abc",
			prepareMock: func(s *MockService) {
				s.EXPECT().ListActive(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: \"abc\" is not a number", money.ErrInvalidAmount))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "Service error",
			target: "/api/auctions",
			prepareMock: func(s *MockService) {
				s.EXPECT().ListActive(gomock.Any(), auctionservice.ListFilter{}).Return(nil, errors.New("db down"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.List(rr, newRequest("GET", tt.target, "", 0, ""))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}

	t.Run("Amounts are rendered with two decimals", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().ListActive(gomock.Any(), gomock.Any()).Return([]domain.Auction{*sampleAuction()}, nil)

		rr := httptest.NewRecorder()
		handler.List(rr, newRequest("GET", "/api/auctions", "", 0, ""))

		var resp []dto.AuctionResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "100.00", resp[0].StartingBid)
		assert.Equal(t, "150.50", resp[0].CurrentBid)
		assert.Equal(t, "150.50", resp[0].Price)
	})
}

func TestGet(t *testing.T) {
	tests := []struct {
		name          string
		id            string
		prepareMock   func(s *MockService)
		expectedCode  int
		expectedError string
	}{
		{
			name: "Existing auction",
			id:   "3",
			prepareMock: func(s *MockService) {
				s.EXPECT().Get(gomock.Any(), 3).Return(&auctionservice.AuctionDetails{
					Auction:    sampleAuction(),
					Bids:       []domain.Bid{{ID: 1, AuctionID: 3, BidderID: 20, Amount: decimal.RequireFromString("150.5")}},
					MinimumBid: decimal.RequireFromString("151.5"),
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:          "Invalid id",
			id:            "abc",
			prepareMock:   func(s *MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid auction id",
		},
		{
			name: "Not found",
			id:   "99",
			prepareMock: func(s *MockService) {
				s.EXPECT().Get(gomock.Any(), 99).Return(nil, domain.ErrAuctionNotFound)
			},
			expectedCode:  http.StatusNotFound,
			expectedError: "auction not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.Get(rr, newRequest("GET", "/api/auctions/"+tt.id, "", 0, tt.id))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeMessage(t, rr))
				return
			}
			var resp dto.AuctionDetailsResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "151.50", resp.MinimumBid)
			assert.Len(t, resp.Bids, 1)
		})
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		userID       int
		prepareMock  func(s *MockService)
		expectedCode int
	}{
		{
			name:   "Successful creation",
			body:   `{"title":"Harbour at dusk","description":"Oil on canvas","starting_bid":"100.00","duration_days":5}`,
			userID: 10,
			prepareMock: func(s *MockService) {
				s.EXPECT().Create(gomock.Any(), 10, auctionservice.CreateAuctionInput{
					Title:        "Harbour at dusk",
					Description:  "Oil on canvas",
					StartingBid:  "100.00",
					DurationDays: 5,
				}).Return(sampleAuction(), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:         "Unauthenticated",
			body:         `{}`,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Missing title",
			body:         `{"description":"Oil on canvas","starting_bid":"100.00"}`,
			userID:       10,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Starting bid with three decimals",
			body:         `{"title":"t","description":"d","starting_bid":"1.005"}`,
			userID:       10,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Duration out of range",
			body:         `{"title":"t","description":"d","starting_bid":"10","duration_days":45}`,
			userID:       10,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Image path longer than the column",
			body:         `{"title":"t","description":"d","starting_bid":"10","image_path":"` + strings.Repeat("a", 256) + `"}`,
			userID:       10,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:   "Image path at the column limit",
			body:   `{"title":"t","description":"d","starting_bid":"10","image_path":"` + strings.Repeat("a", 255) + `"}`,
			userID: 10,
			prepareMock: func(s *MockService) {
				s.EXPECT().Create(gomock.Any(), 10, gomock.Any()).Return(sampleAuction(), nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:   "Non-positive starting bid",
			body:   `{"title":"t","description":"d","starting_bid":"0"}`,
			userID: 10,
			prepareMock: func(s *MockService) {
				s.EXPECT().Create(gomock.Any(), 10, gomock.Any()).
					Return(nil, fmt.Errorf("%w: amount must be greater than zero", money.ErrInvalidAmount))
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.Create(rr, newRequest("POST", "/api/auctions", tt.body, tt.userID, ""))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestUpdateAndCancel(t *testing.T) {
	tests := []struct {
		name         string
		call         func(h *AuctionHandler, rr *httptest.ResponseRecorder)
		prepareMock  func(s *MockService)
		expectedCode int
	}{
		{
			name: "Update by seller",
			call: func(h *AuctionHandler, rr *httptest.ResponseRecorder) {
				h.Update(rr, newRequest("PUT", "/api/auctions/3", `{"title":"New","description":"d"}`, 10, "3"))
			},
			prepareMock: func(s *MockService) {
				s.EXPECT().Update(gomock.Any(), 10, 3, auctionservice.UpdateAuctionInput{Title: "New", Description: "d"}).
					Return(sampleAuction(), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Update by someone else",
			call: func(h *AuctionHandler, rr *httptest.ResponseRecorder) {
				h.Update(rr, newRequest("PUT", "/api/auctions/3", `{"title":"New","description":"d"}`, 11, "3"))
			},
			prepareMock: func(s *MockService) {
				s.EXPECT().Update(gomock.Any(), 11, 3, gomock.Any()).Return(nil, domain.ErrUnauthorized)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Update after bids",
			call: func(h *AuctionHandler, rr *httptest.ResponseRecorder) {
				h.Update(rr, newRequest("PUT", "/api/auctions/3", `{"title":"New","description":"d"}`, 10, "3"))
			},
			prepareMock: func(s *MockService) {
				s.EXPECT().Update(gomock.Any(), 10, 3, gomock.Any()).Return(nil, auctionservice.ErrHasBids)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Cancel",
			call: func(h *AuctionHandler, rr *httptest.ResponseRecorder) {
				h.Cancel(rr, newRequest("DELETE", "/api/auctions/3", "", 10, "3"))
			},
			prepareMock: func(s *MockService) {
				s.EXPECT().Cancel(gomock.Any(), 10, 3).Return(nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Cancel closed auction",
			call: func(h *AuctionHandler, rr *httptest.ResponseRecorder) {
				h.Cancel(rr, newRequest("DELETE", "/api/auctions/3", "", 10, "3"))
			},
			prepareMock: func(s *MockService) {
				s.EXPECT().Cancel(gomock.Any(), 10, 3).Return(domain.ErrAuctionClosed)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Cancel with bad id",
			call: func(h *AuctionHandler, rr *httptest.ResponseRecorder) {
				h.Cancel(rr, newRequest("DELETE", "/api/auctions/x", "", 10, "x"))
			},
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			tt.call(handler, rr)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestUserLists(t *testing.T) {
	handler, service := NewMock(t)
	list := []domain.Auction{*sampleAuction()}

	service.EXPECT().ListBySeller(gomock.Any(), 10).Return(list, nil)
	service.EXPECT().ListWon(gomock.Any(), 10).Return(list, nil)
	service.EXPECT().ListPendingPayments(gomock.Any(), 10).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	handler.MyAuctions(rr, newRequest("GET", "/api/user/auctions", "", 10, ""))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.Won(rr, newRequest("GET", "/api/user/won", "", 10, ""))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.PendingPayments(rr, newRequest("GET", "/api/user/payments/pending", "", 10, ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal server error", decodeMessage(t, rr))
}

func TestCategories(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().Categories(gomock.Any()).Return([]domain.Category{{ID: 1, Name: "Painting"}}, nil)

	rr := httptest.NewRecorder()
	handler.Categories(rr, newRequest("GET", "/api/categories", "", 0, ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Painting"}]`, rr.Body.String())
}
