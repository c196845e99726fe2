package bids

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/service/biddingservice"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*BidHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service, "secret", time.Hour), service
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

func TestPlaceBid(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		userID        int
		prepareMock   func(s *MockService)
		expectedCode  int
		expectedError string
	}{
		{
			name:   "Accepted bid",
			body:   `{"amount":"150"}`,
			userID: 20,
			prepareMock: func(s *MockService) {
				s.EXPECT().PlaceBid(gomock.Any(), 1, 20, "150").Return(&biddingservice.PlaceBidResult{
					Bid:        &domain.Bid{ID: 7, AuctionID: 1, BidderID: 20, Amount: decimal.RequireFromString("150")},
					CurrentBid: decimal.RequireFromString("150"),
				}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name:   "Bid too low reports the minimum",
			body:   `{"amount":"100.50"}`,
			userID: 20,
			prepareMock: func(s *MockService) {
				s.EXPECT().PlaceBid(gomock.Any(), 1, 20, "100.50").
					Return(nil, &biddingservice.BidTooLowError{Minimum: decimal.RequireFromString("101")})
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "bid is too low: minimum bid is RM101.00",
		},
		{
			name:   "Own auction",
			body:   `{"amount":"150"}`,
			userID: 10,
			prepareMock: func(s *MockService) {
				s.EXPECT().PlaceBid(gomock.Any(), 1, 10, "150").Return(nil, biddingservice.ErrSelfBidding)
			},
			expectedCode:  http.StatusForbidden,
			expectedError: "you cannot bid on your own auction",
		},
		{
			name:   "Closed auction",
			body:   `{"amount":"150"}`,
			userID: 20,
			prepareMock: func(s *MockService) {
				s.EXPECT().PlaceBid(gomock.Any(), 1, 20, "150").Return(nil, domain.ErrAuctionClosed)
			},
			expectedCode:  http.StatusConflict,
			expectedError: "auction is not active or has ended",
		},
		{
			name:   "Missing auction",
			body:   `{"amount":"150"}`,
			userID: 20,
			prepareMock: func(s *MockService) {
				s.EXPECT().PlaceBid(gomock.Any(), 1, 20, "150").Return(nil, domain.ErrAuctionNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:          "Three decimal places",
			body:          `{"amount":"150.001"}`,
			userID:        20,
			prepareMock:   func(s *MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "amount must be a number with at most two decimal places",
		},
		{
			name:         "Invalid body",
			body:         `amount=150`,
			userID:       20,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Unauthenticated",
			body:         `{"amount":"150"}`,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.PlaceBid(rr, newRequest("POST", "/api/auctions/1/bids", tt.body, tt.userID, "1"))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
			}
		})
	}

	t.Run("Response carries the new current bid", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().PlaceBid(gomock.Any(), 1, 20, "150").Return(&biddingservice.PlaceBidResult{
			Bid:        &domain.Bid{ID: 7, AuctionID: 1, BidderID: 20, Amount: decimal.RequireFromString("150")},
			CurrentBid: decimal.RequireFromString("150"),
		}, nil)

		rr := httptest.NewRecorder()
		handler.PlaceBid(rr, newRequest("POST", "/api/auctions/1/bids", `{"amount":"150"}`, 20, "1"))

		var resp dto.PlaceBidResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "150.00", resp.CurrentBid)
		assert.Equal(t, "150.00", resp.Bid.Amount)
		assert.Equal(t, 7, resp.Bid.ID)
		assert.Nil(t, resp.PreviousBid)
	})

	t.Run("Response carries the outbid previous bid", func(t *testing.T) {
		handler, service := NewMock(t)
		service.EXPECT().PlaceBid(gomock.Any(), 1, 20, "150").Return(&biddingservice.PlaceBidResult{
			Bid:         &domain.Bid{ID: 8, AuctionID: 1, BidderID: 20, Amount: decimal.RequireFromString("150")},
			PreviousBid: &domain.Bid{ID: 6, AuctionID: 1, BidderID: 30, Amount: decimal.RequireFromString("120")},
			CurrentBid:  decimal.RequireFromString("150"),
		}, nil)

		rr := httptest.NewRecorder()
		handler.PlaceBid(rr, newRequest("POST", "/api/auctions/1/bids", `{"amount":"150"}`, 20, "1"))

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp dto.PlaceBidResponseDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.NotNil(t, resp.PreviousBid)
		assert.Equal(t, 6, resp.PreviousBid.ID)
		assert.Equal(t, 30, resp.PreviousBid.BidderID)
		assert.Equal(t, "120.00", resp.PreviousBid.Amount)
	})
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name         string
		userID       int
		prepareMock  func(s *MockService)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "Seller accepts",
			userID: 10,
			prepareMock: func(s *MockService) {
				s.EXPECT().AcceptBid(gomock.Any(), 1, 10).Return(biddingservice.CloseOutcomeWithWinner, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"message":"Auction closed","outcome":"completed_with_winner"}`,
		},
		{
			name:   "Not the seller",
			userID: 11,
			prepareMock: func(s *MockService) {
				s.EXPECT().AcceptBid(gomock.Any(), 1, 11).Return(biddingservice.CloseOutcome(""), domain.ErrUnauthorized)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name:   "No bids yet",
			userID: 10,
			prepareMock: func(s *MockService) {
				s.EXPECT().AcceptBid(gomock.Any(), 1, 10).Return(biddingservice.CloseOutcome(""), biddingservice.ErrNoBidsYet)
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.Accept(rr, newRequest("POST", "/api/auctions/1/accept", "", tt.userID, "1"))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestHistoryAndUserBids(t *testing.T) {
	handler, service := NewMock(t)
	bids := []domain.Bid{
		{ID: 2, AuctionID: 1, BidderID: 21, BidderName: "bob", Amount: decimal.RequireFromString("150")},
		{ID: 1, AuctionID: 1, BidderID: 20, BidderName: "alice", Amount: decimal.RequireFromString("100")},
	}
	service.EXPECT().GetBids(gomock.Any(), 1).Return(bids, nil)
	service.EXPECT().GetUserBids(gomock.Any(), 20).Return(nil, errors.New("db down"))

	rr := httptest.NewRecorder()
	handler.History(rr, newRequest("GET", "/api/auctions/1/bids", "", 0, "1"))
	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.BidResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "150.00", resp[0].Amount)
	assert.Equal(t, "bob", resp[0].BidderName)

	rr = httptest.NewRecorder()
	handler.UserBids(rr, newRequest("GET", "/api/user/bids", "", 20, ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAudit(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().Audit(gomock.Any(), 1).Return(&biddingservice.AuditReport{
		AuctionID:  1,
		CurrentBid: decimal.NewNullDecimal(decimal.RequireFromString("150")),
		HighestBid: decimal.NewNullDecimal(decimal.RequireFromString("150")),
		Consistent: true,
	}, nil)

	rr := httptest.NewRecorder()
	handler.Audit(rr, newRequest("GET", "/api/auctions/1/audit", "", 0, "1"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"auction_id":1,"current_bid":"150.00","highest_bid":"150.00","consistent":true}`, rr.Body.String())
}

func TestCloseExpired(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		prepareMock  func(s *MockService)
		expectedCode int
		expectedBody string
	}{
		{
			name:  "Valid token",
			token: "secret",
			prepareMock: func(s *MockService) {
				s.EXPECT().CloseExpired(gomock.Any(), closeBatch).Return(3, nil)
				s.EXPECT().NotifyEndingSoon(gomock.Any(), time.Hour, closeBatch).Return(5, nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"closed":3,"reminded":5}`,
		},
		{
			name:         "Wrong token",
			token:        "guess",
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Missing token",
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusForbidden,
		},
		{
			name:  "Close failure",
			token: "secret",
			prepareMock: func(s *MockService) {
				s.EXPECT().CloseExpired(gomock.Any(), closeBatch).Return(1, errors.New("auction 4: lock timeout"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			req := newRequest("POST", "/api/auctions/close-expired", "", 0, "")
			if tt.token != "" {
				req.Header.Set(CloserTokenHeader, tt.token)
			}
			rr := httptest.NewRecorder()
			handler.CloseExpired(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}

	t.Run("Disabled when no token is configured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := New(NewMockService(ctrl), "", time.Hour)

		req := newRequest("POST", "/api/auctions/close-expired", "", 0, "")
		req.Header.Set(CloserTokenHeader, "")
		rr := httptest.NewRecorder()
		handler.CloseExpired(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
