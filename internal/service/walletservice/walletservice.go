package walletservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/GlebRadaev/artauction/internal/domain"
	"github.com/GlebRadaev/artauction/internal/metrics"
	"github.com/GlebRadaev/artauction/internal/pg"
	"github.com/GlebRadaev/artauction/pkg/money"
	"github.com/GlebRadaev/artauction/pkg/validate"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=walletservice.go -destination=walletservice_mock.go -package=walletservice

type WalletRepo interface {
	GetBalance(ctx context.Context, userID int) (*decimal.Decimal, error)
	LockBalances(ctx context.Context, userIDs ...int) (map[int]decimal.Decimal, error)
	Apply(ctx context.Context, entry *domain.WalletTransaction) (*domain.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID, limit int) ([]domain.WalletTransaction, error)
	Sum(ctx context.Context, userID int) (decimal.Decimal, error)
	SumByType(ctx context.Context, userID int, typ domain.TransactionType) (decimal.Decimal, error)
}

type AuctionRepo interface {
	GetForUpdate(ctx context.Context, id int) (*domain.Auction, error)
	MarkPaid(ctx context.Context, id int) error
}

type NotificationRepo interface {
	Create(ctx context.Context, userID int, typ domain.NotificationType, message string) error
}

const transactionsLimit = 50

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrNotWinner           = errors.New("only the winning bidder can pay for this auction")
	ErrAlreadyPaid         = errors.New("auction is already paid")
	ErrAuctionNotCompleted = errors.New("auction has not been completed")
	ErrInvalidCard         = errors.New("invalid card number")
	ErrSelfTransfer        = errors.New("payer and payee must differ")
)

type TransferResult struct {
	Debit  *domain.WalletTransaction
	Credit *domain.WalletTransaction
}

type Reconciliation struct {
	UserID     int
	Balance    decimal.Decimal
	LedgerSum  decimal.Decimal
	Consistent bool
}

type Service struct {
	walletRepo       WalletRepo
	auctionRepo      AuctionRepo
	notificationRepo NotificationRepo
	txManager        pg.TXManager
}

func New(walletRepo WalletRepo, auctionRepo AuctionRepo, notificationRepo NotificationRepo, txManager pg.TXManager) *Service {
	return &Service{
		walletRepo:       walletRepo,
		auctionRepo:      auctionRepo,
		notificationRepo: notificationRepo,
		txManager:        txManager,
	}
}

func insufficient(balance, amount decimal.Decimal) error {
	return fmt.Errorf("%w: balance is RM%s, RM%s more is needed",
		ErrInsufficientFunds, money.Format(balance), money.Format(amount.Sub(balance)))
}

func (s *Service) TopUp(ctx context.Context, userID int, amount string) (decimal.Decimal, error) {
	value, err := money.ParseWithin(amount, money.WalletBounds)
	if err != nil {
		metrics.RecordWalletOperation(string(domain.TxTopUp), err)
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		balances, err := s.walletRepo.LockBalances(ctx, userID)
		if err != nil {
			return err
		}
		if _, ok := balances[userID]; !ok {
			return domain.ErrUserNotFound
		}
		entry, err := s.walletRepo.Apply(ctx, &domain.WalletTransaction{
			UserID:      userID,
			Type:        domain.TxTopUp,
			Amount:      value,
			Description: "Wallet top-up",
		})
		if err != nil {
			return err
		}
		balance = entry.BalanceAfter
		return nil
	})
	metrics.RecordWalletOperation(string(domain.TxTopUp), err)
	if err != nil {
		zap.L().Error("failed to top up wallet", zap.Int("user_id", userID), zap.Error(err))
		return decimal.Zero, err
	}

	zap.L().Info("wallet topped up", zap.Int("user_id", userID), zap.String("amount", money.Format(value)))
	return balance, nil
}

// Transfer moves amount from payer to payee. Both rows are locked before the
// balance check and both legs are written in the same transaction, which
// joins the caller's transaction when there is one.
func (s *Service) Transfer(ctx context.Context, payerID, payeeID int, amount decimal.Decimal, auctionID *int) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be greater than zero", money.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Truncate(money.Scale)) {
		return nil, fmt.Errorf("%w: at most %d decimal places are allowed", money.ErrInvalidAmount, money.Scale)
	}
	if payerID == payeeID {
		return nil, ErrSelfTransfer
	}

	debitNote, creditNote := "Transfer", "Transfer"
	if auctionID != nil {
		debitNote = fmt.Sprintf("Payment for auction #%d", *auctionID)
		creditNote = fmt.Sprintf("Sale of auction #%d", *auctionID)
	}

	var result *TransferResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		balances, err := s.walletRepo.LockBalances(ctx, payerID, payeeID)
		if err != nil {
			return err
		}
		payerBalance, ok := balances[payerID]
		if !ok {
			return fmt.Errorf("payer %d: %w", payerID, domain.ErrUserNotFound)
		}
		if _, ok := balances[payeeID]; !ok {
			return fmt.Errorf("payee %d: %w", payeeID, domain.ErrUserNotFound)
		}
		if payerBalance.LessThan(amount) {
			return insufficient(payerBalance, amount)
		}

		debit, err := s.walletRepo.Apply(ctx, &domain.WalletTransaction{
			UserID:      payerID,
			Type:        domain.TxPaymentMade,
			Amount:      amount.Neg(),
			AuctionID:   auctionID,
			Description: debitNote,
		})
		if err != nil {
			return err
		}
		credit, err := s.walletRepo.Apply(ctx, &domain.WalletTransaction{
			UserID:      payeeID,
			Type:        domain.TxPaymentReceived,
			Amount:      amount,
			AuctionID:   auctionID,
			Description: creditNote,
		})
		if err != nil {
			return err
		}
		result = &TransferResult{Debit: debit, Credit: credit}
		return nil
	})
	metrics.RecordWalletOperation("transfer", err)
	if err != nil {
		if errors.Is(err, ErrInsufficientFunds) {
			zap.L().Info("transfer rejected", zap.Int("payer_id", payerID), zap.Error(err))
		} else {
			zap.L().Error("transfer failed", zap.Int("payer_id", payerID), zap.Int("payee_id", payeeID), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}

// PayAuction settles a completed auction: the winner pays the sold price to
// the seller and the auction is marked paid, all or nothing.
func (s *Service) PayAuction(ctx context.Context, auctionID, buyerID int) (*TransferResult, error) {
	var result *TransferResult
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		auction, err := s.auctionRepo.GetForUpdate(ctx, auctionID)
		if err != nil {
			return err
		}
		if auction == nil {
			return domain.ErrAuctionNotFound
		}
		if auction.Status != domain.AuctionCompleted {
			return ErrAuctionNotCompleted
		}
		if auction.WinnerID == nil || *auction.WinnerID != buyerID {
			return ErrNotWinner
		}
		if auction.PaymentStatus == domain.PaymentPaid {
			return ErrAlreadyPaid
		}
		if !auction.SoldPrice.Valid {
			return fmt.Errorf("auction %d has a winner but no sold price", auctionID)
		}

		result, err = s.Transfer(ctx, buyerID, auction.SellerID, auction.SoldPrice.Decimal, &auction.ID)
		if err != nil {
			return err
		}
		if err := s.auctionRepo.MarkPaid(ctx, auction.ID); err != nil {
			return err
		}
		msg := fmt.Sprintf("Payment of RM%s received for '%s'.", money.Format(auction.SoldPrice.Decimal), auction.Title)
		return s.notificationRepo.Create(ctx, auction.SellerID, domain.NotificationPaymentReceived, msg)
	})
	if err != nil {
		zap.L().Info("auction payment failed", zap.Int("auction_id", auctionID), zap.Int("buyer_id", buyerID), zap.Error(err))
		return nil, err
	}

	zap.L().Info("auction paid", zap.Int("auction_id", auctionID), zap.Int("buyer_id", buyerID))
	return result, nil
}

func (s *Service) CashOut(ctx context.Context, userID int, amount, cardNumber string) (decimal.Decimal, error) {
	if !validate.IsCardNumber(cardNumber) {
		metrics.RecordWalletOperation(string(domain.TxCashOut), ErrInvalidCard)
		return decimal.Zero, ErrInvalidCard
	}
	value, err := money.ParseWithin(amount, money.WalletBounds)
	if err != nil {
		metrics.RecordWalletOperation(string(domain.TxCashOut), err)
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = s.txManager.Begin(ctx, func(ctx context.Context) error {
		balances, err := s.walletRepo.LockBalances(ctx, userID)
		if err != nil {
			return err
		}
		current, ok := balances[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		if current.LessThan(value) {
			return insufficient(current, value)
		}
		entry, err := s.walletRepo.Apply(ctx, &domain.WalletTransaction{
			UserID:      userID,
			Type:        domain.TxCashOut,
			Amount:      value.Neg(),
			Description: "Cash out to card " + validate.MaskCard(cardNumber),
		})
		if err != nil {
			return err
		}
		balance = entry.BalanceAfter
		return nil
	})
	metrics.RecordWalletOperation(string(domain.TxCashOut), err)
	if err != nil {
		zap.L().Info("cash out failed", zap.Int("user_id", userID), zap.Error(err))
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *Service) GetBalance(ctx context.Context, userID int) (decimal.Decimal, error) {
	balance, err := s.walletRepo.GetBalance(ctx, userID)
	if err != nil {
		zap.L().Error("failed to get balance", zap.Error(err))
		return decimal.Zero, err
	}
	if balance == nil {
		return decimal.Zero, domain.ErrUserNotFound
	}
	return *balance, nil
}

func (s *Service) GetTransactions(ctx context.Context, userID int) ([]domain.WalletTransaction, error) {
	txs, err := s.walletRepo.ListTransactions(ctx, userID, transactionsLimit)
	if err != nil {
		zap.L().Error("failed to get wallet transactions", zap.Error(err))
		return nil, err
	}
	return txs, nil
}

// TotalEarned sums what the user received from auction sales.
func (s *Service) TotalEarned(ctx context.Context, userID int) (decimal.Decimal, error) {
	return s.walletRepo.SumByType(ctx, userID, domain.TxPaymentReceived)
}

// Reconcile compares the cached balance with the ledger sum.
func (s *Service) Reconcile(ctx context.Context, userID int) (*Reconciliation, error) {
	var report *Reconciliation
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		balances, err := s.walletRepo.LockBalances(ctx, userID)
		if err != nil {
			return err
		}
		balance, ok := balances[userID]
		if !ok {
			return domain.ErrUserNotFound
		}
		sum, err := s.walletRepo.Sum(ctx, userID)
		if err != nil {
			return err
		}
		report = &Reconciliation{
			UserID:     userID,
			Balance:    balance,
			LedgerSum:  sum,
			Consistent: balance.Equal(sum),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		zap.L().Error("wallet balance differs from ledger",
			zap.Int("user_id", userID),
			zap.String("balance", money.Format(report.Balance)),
			zap.String("ledger_sum", money.Format(report.LedgerSum)))
	}
	return report, nil
}
