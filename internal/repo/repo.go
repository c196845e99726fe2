package repo

import (
	"github.com/GlebRadaev/artauction/internal/pg"
	auctionrepo "github.com/GlebRadaev/artauction/internal/repo/auction-repo"
	bidrepo "github.com/GlebRadaev/artauction/internal/repo/bid-repo"
	categoryrepo "github.com/GlebRadaev/artauction/internal/repo/category-repo"
	notificationrepo "github.com/GlebRadaev/artauction/internal/repo/notification-repo"
	userrepo "github.com/GlebRadaev/artauction/internal/repo/user-repo"
	walletrepo "github.com/GlebRadaev/artauction/internal/repo/wallet-repo"
)

type Repositories struct {
	UserRepo         *userrepo.Repository
	AuctionRepo      *auctionrepo.Repository
	BidRepo          *bidrepo.Repository
	WalletRepo       *walletrepo.Repository
	NotificationRepo *notificationrepo.Repository
	CategoryRepo     *categoryrepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:         userrepo.New(conn),
		AuctionRepo:      auctionrepo.New(conn),
		BidRepo:          bidrepo.New(conn),
		WalletRepo:       walletrepo.New(conn, txManager),
		NotificationRepo: notificationrepo.New(conn),
		CategoryRepo:     categoryrepo.New(conn),
	}
}
