package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/dto"
	"github.com/GlebRadaev/artauction/internal/service/walletservice"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/GlebRadaev/artauction/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*WalletHandler, *MockService) {
	ctrl := gomock.NewController(t)
	service := NewMockService(ctrl)
	return New(service), service
}

func newRequest(method, target, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID > 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	return req
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestGetBalance(t *testing.T) {
	tests := []struct {
		name         string
		userID       int
		prepareMock  func(s *MockService)
		expectedCode int
		expectedBody string
	}{
		{
			name:   "Balance and earnings",
			userID: 1,
			prepareMock: func(s *MockService) {
				s.EXPECT().GetBalance(gomock.Any(), 1).Return(dec("700"), nil)
				s.EXPECT().TotalEarned(gomock.Any(), 1).Return(dec("500"), nil)
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"balance":"700.00","total_earned":"500.00"}`,
		},
		{
			name:   "Unknown user",
			userID: 1,
			prepareMock: func(s *MockService) {
				s.EXPECT().GetBalance(gomock.Any(), 1).Return(decimal.Zero, domain.ErrUserNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Unauthenticated",
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.GetBalance(rr, newRequest("GET", "/api/user/wallet", "", tt.userID))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, rr.Body.String())
			}
		})
	}
}

func TestTopUp(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		prepareMock   func(s *MockService)
		expectedCode  int
		expectedError string
	}{
		{
			name: "Successful top up",
			body: `{"amount":"250.00"}`,
			prepareMock: func(s *MockService) {
				s.EXPECT().TopUp(gomock.Any(), 1, "250.00").Return(dec("1250"), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Below minimum",
			body: `{"amount":"5"}`,
			prepareMock: func(s *MockService) {
				s.EXPECT().TopUp(gomock.Any(), 1, "5").
					Return(decimal.Zero, fmt.Errorf("%w: minimum amount is RM10.00", money.ErrInvalidAmount))
			},
			expectedCode:  http.StatusUnprocessableEntity,
			expectedError: "invalid amount: minimum amount is RM10.00",
		},
		{
			name:          "Missing amount",
			body:          `{}`,
			prepareMock:   func(s *MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "amount is required",
		},
		{
			name:          "Invalid body",
			body:          `{`,
			prepareMock:   func(s *MockService) {},
			expectedCode:  http.StatusBadRequest,
			expectedError: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.TopUp(rr, newRequest("POST", "/api/user/wallet/topup", tt.body, 1))

			assert.Equal(t, tt.expectedCode, rr.Code)
			if tt.expectedError != "" {
				var resp utils.Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, tt.expectedError, resp.Message)
				return
			}
			var resp dto.WalletOperationResponseDTO
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, "1250.00", resp.Balance)
		})
	}
}

func TestCashOut(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		prepareMock  func(s *MockService)
		expectedCode int
	}{
		{
			name: "Successful cash out",
			body: `{"amount":"100","card":"4111 1111 1111 1111"}`,
			prepareMock: func(s *MockService) {
				s.EXPECT().CashOut(gomock.Any(), 1, "100", "4111 1111 1111 1111").Return(dec("400"), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "Card fails checksum",
			body:         `{"amount":"100","card":"4111111111111112"}`,
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name: "Insufficient funds",
			body: `{"amount":"100","card":"4111111111111111"}`,
			prepareMock: func(s *MockService) {
				s.EXPECT().CashOut(gomock.Any(), 1, "100", "4111111111111111").
					Return(decimal.Zero, fmt.Errorf("%w: balance is RM40.00, RM60.00 more is needed", walletservice.ErrInsufficientFunds))
			},
			expectedCode: http.StatusPaymentRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			rr := httptest.NewRecorder()
			handler.CashOut(rr, newRequest("POST", "/api/user/wallet/cashout", tt.body, 1))

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestGetTransactions(t *testing.T) {
	handler, service := NewMock(t)
	auctionID := 3
	service.EXPECT().GetTransactions(gomock.Any(), 1).Return([]domain.WalletTransaction{
		{ID: 2, UserID: 1, Type: domain.TxPaymentMade, Amount: dec("-500"), BalanceAfter: dec("500"), AuctionID: &auctionID, Description: "Payment for 'Harbour'"},
		{ID: 1, UserID: 1, Type: domain.TxTopUp, Amount: dec("1000"), BalanceAfter: dec("1000"), Description: "Wallet top up"},
	}, nil)

	rr := httptest.NewRecorder()
	handler.GetTransactions(rr, newRequest("GET", "/api/user/wallet/transactions", "", 1))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp []dto.TransactionResponseDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "-500.00", resp[0].Amount)
	assert.Equal(t, "payment_made", resp[0].Type)
	assert.Equal(t, &auctionID, resp[0].AuctionID)
	assert.Nil(t, resp[1].AuctionID)
}

func TestReconcile(t *testing.T) {
	handler, service := NewMock(t)
	service.EXPECT().Reconcile(gomock.Any(), 1).Return(&walletservice.Reconciliation{
		UserID:     1,
		Balance:    dec("500"),
		LedgerSum:  dec("500"),
		Consistent: true,
	}, nil)

	rr := httptest.NewRecorder()
	handler.Reconcile(rr, newRequest("GET", "/api/user/wallet/reconcile", "", 1))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"balance":"500.00","ledger_sum":"500.00","consistent":true}`, rr.Body.String())
}

func TestPay(t *testing.T) {
	tests := []struct {
		name         string
		id           string
		prepareMock  func(s *MockService)
		expectedCode int
	}{
		{
			name: "Winner pays",
			id:   "3",
			prepareMock: func(s *MockService) {
				s.EXPECT().PayAuction(gomock.Any(), 3, 1).Return(&walletservice.TransferResult{
					Debit:  &domain.WalletTransaction{ID: 5, UserID: 1, Type: domain.TxPaymentMade, Amount: dec("-500"), BalanceAfter: dec("500")},
					Credit: &domain.WalletTransaction{ID: 6, UserID: 2, Type: domain.TxPaymentReceived, Amount: dec("500"), BalanceAfter: dec("700")},
				}, nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name: "Not the winner",
			id:   "3",
			prepareMock: func(s *MockService) {
				s.EXPECT().PayAuction(gomock.Any(), 3, 1).Return(nil, walletservice.ErrNotWinner)
			},
			expectedCode: http.StatusForbidden,
		},
		{
			name: "Already paid",
			id:   "3",
			prepareMock: func(s *MockService) {
				s.EXPECT().PayAuction(gomock.Any(), 3, 1).Return(nil, walletservice.ErrAlreadyPaid)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name: "Insufficient funds",
			id:   "3",
			prepareMock: func(s *MockService) {
				s.EXPECT().PayAuction(gomock.Any(), 3, 1).Return(nil, walletservice.ErrInsufficientFunds)
			},
			expectedCode: http.StatusPaymentRequired,
		},
		{
			name: "Storage failure",
			id:   "3",
			prepareMock: func(s *MockService) {
				s.EXPECT().PayAuction(gomock.Any(), 3, 1).Return(nil, errors.New("connection reset"))
			},
			expectedCode: http.StatusInternalServerError,
		},
		{
			name:         "Bad id",
			id:           "zero",
			prepareMock:  func(s *MockService) {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, service := NewMock(t)
			tt.prepareMock(service)

			req := newRequest("POST", "/api/auctions/"+tt.id+"/pay", "", 1)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rr := httptest.NewRecorder()
			handler.Pay(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}
