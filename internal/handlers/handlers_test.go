package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GlebRadaev/artauction/internal/config"
	"github.com/GlebRadaev/artauction/internal/service"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	services := &service.Services{
		JWTService: auth.NewMockJWTServiceInterface(ctrl),
	}
	cfg := &config.Config{BidRateLimit: 5, BidRateBurst: 10}

	h := New(services, cfg)
	assert.NotNil(t, h, "Handlers should not be nil")
	assert.NotNil(t, h.BidHandler)
	assert.NotNil(t, h.bidLimiter)
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuthHandler := NewMockAuthHandler(ctrl)
	mockAuctionHandler := NewMockAuctionHandler(ctrl)
	mockBidHandler := NewMockBidHandler(ctrl)
	mockWalletHandler := NewMockWalletHandler(ctrl)
	mockNotificationHandler := NewMockNotificationHandler(ctrl)
	jwtService := auth.NewMockJWTServiceInterface(ctrl)

	mockAuthHandler.EXPECT().Register(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuthHandler.EXPECT().Login(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuctionHandler.EXPECT().List(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuctionHandler.EXPECT().Get(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuctionHandler.EXPECT().Categories(gomock.Any(), gomock.Any()).AnyTimes()
	mockAuctionHandler.EXPECT().Create(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockBidHandler.EXPECT().History(gomock.Any(), gomock.Any()).AnyTimes()
	mockBidHandler.EXPECT().Audit(gomock.Any(), gomock.Any()).AnyTimes()
	mockBidHandler.EXPECT().CloseExpired(gomock.Any(), gomock.Any()).AnyTimes()
	mockBidHandler.EXPECT().PlaceBid(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockWalletHandler.EXPECT().GetBalance(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	mockNotificationHandler.EXPECT().List(gomock.Any(), gomock.Any()).Do(ok).AnyTimes()
	jwtService.EXPECT().ValidateToken("valid-token").Return(&auth.Claims{UserID: 1}, nil).AnyTimes()

	h := &Handlers{
		AuthHandler:         mockAuthHandler,
		AuctionHandler:      mockAuctionHandler,
		BidHandler:          mockBidHandler,
		WalletHandler:       mockWalletHandler,
		NotificationHandler: mockNotificationHandler,
		jwtService:          jwtService,
		bidLimiter:          ratelimit.New(100, 100),
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	tests := []struct {
		method string
		url    string
		token  string
		status int
	}{
		{"POST", "/api/user/register", "", http.StatusOK},
		{"POST", "/api/user/login", "", http.StatusOK},
		{"GET", "/api/categories", "", http.StatusOK},
		{"GET", "/api/auctions", "", http.StatusOK},
		{"GET", "/api/auctions/1", "", http.StatusOK},
		{"GET", "/api/auctions/1/bids", "", http.StatusOK},
		{"GET", "/api/auctions/1/audit", "", http.StatusOK},
		{"POST", "/api/auctions/close-expired", "", http.StatusOK},
		{"GET", "/metrics", "", http.StatusOK},
		{"POST", "/api/auctions", "", http.StatusUnauthorized},
		{"PUT", "/api/auctions/1", "", http.StatusUnauthorized},
		{"DELETE", "/api/auctions/1", "", http.StatusUnauthorized},
		{"POST", "/api/auctions/1/bids", "", http.StatusUnauthorized},
		{"POST", "/api/auctions/1/accept", "", http.StatusUnauthorized},
		{"POST", "/api/auctions/1/pay", "", http.StatusUnauthorized},
		{"GET", "/api/user/auctions", "", http.StatusUnauthorized},
		{"GET", "/api/user/bids", "", http.StatusUnauthorized},
		{"GET", "/api/user/won", "", http.StatusUnauthorized},
		{"GET", "/api/user/payments/pending", "", http.StatusUnauthorized},
		{"GET", "/api/user/wallet", "", http.StatusUnauthorized},
		{"POST", "/api/user/wallet/topup", "", http.StatusUnauthorized},
		{"POST", "/api/user/wallet/cashout", "", http.StatusUnauthorized},
		{"GET", "/api/user/wallet/transactions", "", http.StatusUnauthorized},
		{"GET", "/api/user/wallet/reconcile", "", http.StatusUnauthorized},
		{"GET", "/api/user/notifications", "", http.StatusUnauthorized},
		{"POST", "/api/user/notifications/read", "", http.StatusUnauthorized},
		{"POST", "/api/auctions", "valid-token", http.StatusOK},
		{"POST", "/api/auctions/1/bids", "valid-token", http.StatusOK},
		{"GET", "/api/user/wallet", "valid-token", http.StatusOK},
		{"GET", "/api/user/notifications", "valid-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
