// Package ledger keeps wallets and their transactions consistent: every
// transaction write is paired with an adjustment of the wallet balance so
// that a wallet's amount equals the sum of its transactions' signed amounts.
package ledger

import (
	"context"
	"time"

	"expense_tracker/internal/assets"
	"expense_tracker/internal/domain"
	"expense_tracker/internal/watch"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Collection names used for change topics.
const (
	CollectionWallets      = "wallets"
	CollectionTransactions = "transactions"
)

// Store is the document store contract the ledger relies on.
type Store interface {
	GetWallet(ctx context.Context, id string) (domain.Wallet, error)
	UpsertWallet(ctx context.Context, wallet domain.Wallet) (domain.Wallet, error)
	DeleteWallet(ctx context.Context, id string) error
	AdjustWallet(ctx context.Context, id string, delta domain.WalletDelta) error
	ListWallets(ctx context.Context, query domain.WalletQuery) ([]domain.Wallet, error)

	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	UpsertTransaction(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, query domain.TransactionQuery) ([]domain.Transaction, error)
}

// Option configures a Service.
type Option func(*Service)

// WithBroker sets the broker change events are published on.
func WithBroker(broker watch.Broker) Option {
	return func(s *Service) { s.broker = broker }
}

// WithLogger replaces the logrus standard logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces uuid.NewString for new documents.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service is the Ledger component.
type Service struct {
	store  Store
	assets assets.Host
	broker watch.Broker
	logger logrus.FieldLogger
	now    func() time.Time
	newID  func() string
}

// NewService builds a ledger over store, uploading images to host.
func NewService(store Store, host assets.Host, opts ...Option) *Service {
	s := &Service{
		store:  store,
		assets: host,
		broker: watch.NewMemoryBroker(),
		logger: logrus.StandardLogger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetWallet loads one wallet.
func (s *Service) GetWallet(ctx context.Context, id string) (domain.Wallet, error) {
	return s.store.GetWallet(ctx, id)
}

// GetTransaction loads one transaction.
func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ListWallets returns the owner's wallets, newest first.
func (s *Service) ListWallets(ctx context.Context, query domain.WalletQuery) ([]domain.Wallet, error) {
	if query.UID == "" {
		return nil, domain.Validation("ledger.list_wallets", "User id is required")
	}
	return s.store.ListWallets(ctx, query)
}

// ListTransactions returns the owner's transactions, newest first.
func (s *Service) ListTransactions(ctx context.Context, query domain.TransactionQuery) ([]domain.Transaction, error) {
	if query.UID == "" {
		return nil, domain.Validation("ledger.list_transactions", "User id is required")
	}
	return s.store.ListTransactions(ctx, query)
}

// SubscribeWallets opens a live query on the owner's wallets.
func (s *Service) SubscribeWallets(ctx context.Context, query domain.WalletQuery) (*watch.Subscription[domain.Wallet], error) {
	if query.UID == "" {
		return nil, domain.Validation("ledger.subscribe_wallets", "User id is required")
	}
	return watch.Subscribe(ctx, s.broker, watch.Topic(CollectionWallets, query.UID), func(ctx context.Context) ([]domain.Wallet, error) {
		return s.store.ListWallets(ctx, query)
	}, s.logger)
}

// SubscribeTransactions opens a live query on the owner's transactions.
func (s *Service) SubscribeTransactions(ctx context.Context, query domain.TransactionQuery) (*watch.Subscription[domain.Transaction], error) {
	if query.UID == "" {
		return nil, domain.Validation("ledger.subscribe_transactions", "User id is required")
	}
	return watch.Subscribe(ctx, s.broker, watch.Topic(CollectionTransactions, query.UID), func(ctx context.Context) ([]domain.Transaction, error) {
		return s.store.ListTransactions(ctx, query)
	}, s.logger)
}

func (s *Service) publish(ctx context.Context, collection string, uid string, id string, kind watch.Kind) {
	if uid == "" {
		return
	}
	event := watch.Event{Collection: collection, UID: uid, ID: id, Kind: kind}
	if err := s.broker.Publish(ctx, watch.Topic(collection, uid), event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		}).Warn("Publishing change event failed")
	}
}
