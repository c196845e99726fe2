package handlers

import (
	"net/http"

	_ "github.com/GlebRadaev/artauction/docs"
	"github.com/GlebRadaev/artauction/internal/config"
	auctionhandlers "github.com/GlebRadaev/artauction/internal/handlers/auctions"
	authhandlers "github.com/GlebRadaev/artauction/internal/handlers/auth"
	bidhandlers "github.com/GlebRadaev/artauction/internal/handlers/bids"
	notificationhandlers "github.com/GlebRadaev/artauction/internal/handlers/notifications"
	wallethandlers "github.com/GlebRadaev/artauction/internal/handlers/wallet"
	"github.com/GlebRadaev/artauction/internal/metrics"
	"github.com/GlebRadaev/artauction/internal/service"
	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:generate mockgen -source=handlers.go -destination=handlers_mock.go -package=handlers

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
}

type AuctionHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Categories(w http.ResponseWriter, r *http.Request)
	MyAuctions(w http.ResponseWriter, r *http.Request)
	Won(w http.ResponseWriter, r *http.Request)
	PendingPayments(w http.ResponseWriter, r *http.Request)
}

type BidHandler interface {
	PlaceBid(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	UserBids(w http.ResponseWriter, r *http.Request)
	Accept(w http.ResponseWriter, r *http.Request)
	Audit(w http.ResponseWriter, r *http.Request)
	CloseExpired(w http.ResponseWriter, r *http.Request)
}

type WalletHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	TopUp(w http.ResponseWriter, r *http.Request)
	CashOut(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	Pay(w http.ResponseWriter, r *http.Request)
}

type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	MarkRead(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler         AuthHandler
	AuctionHandler      AuctionHandler
	BidHandler          BidHandler
	WalletHandler       WalletHandler
	NotificationHandler NotificationHandler

	jwtService auth.JWTServiceInterface
	bidLimiter *ratelimit.Limiter
}

func New(s *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		AuthHandler:         authhandlers.New(s.AuthService),
		AuctionHandler:      auctionhandlers.New(s.AuctionService),
		BidHandler:          bidhandlers.New(s.BiddingService, cfg.CloserToken, cfg.EndingSoonWindow),
		WalletHandler:       wallethandlers.New(s.WalletService),
		NotificationHandler: notificationhandlers.New(s.NotificationService),
		jwtService:          s.JWTService,
		bidLimiter:          ratelimit.New(cfg.BidRateLimit, cfg.BidRateBurst),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		metrics.Instrument,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", metrics.Handler())

	r.Get("/api/categories", h.AuctionHandler.Categories)

	r.Route("/api/auctions", func(r chi.Router) {
		r.Get("/", h.AuctionHandler.List)
		r.Post("/close-expired", h.BidHandler.CloseExpired)
		r.Get("/{id}", h.AuctionHandler.Get)
		r.Get("/{id}/bids", h.BidHandler.History)
		r.Get("/{id}/audit", h.BidHandler.Audit)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.jwtService))
			r.Post("/", h.AuctionHandler.Create)
			r.Put("/{id}", h.AuctionHandler.Update)
			r.Delete("/{id}", h.AuctionHandler.Cancel)
			r.With(h.bidLimiter.Handler).Post("/{id}/bids", h.BidHandler.PlaceBid)
			r.Post("/{id}/accept", h.BidHandler.Accept)
			r.Post("/{id}/pay", h.WalletHandler.Pay)
		})
	})

	r.Route("/api/user", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(h.jwtService))
			r.Get("/auctions", h.AuctionHandler.MyAuctions)
			r.Get("/bids", h.BidHandler.UserBids)
			r.Get("/won", h.AuctionHandler.Won)
			r.Get("/payments/pending", h.AuctionHandler.PendingPayments)
			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.WalletHandler.GetBalance)
				r.Post("/topup", h.WalletHandler.TopUp)
				r.Post("/cashout", h.WalletHandler.CashOut)
				r.Get("/transactions", h.WalletHandler.GetTransactions)
				r.Get("/reconcile", h.WalletHandler.Reconcile)
			})
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.NotificationHandler.List)
				r.Post("/read", h.NotificationHandler.MarkRead)
			})
		})
	})

	return r
}
