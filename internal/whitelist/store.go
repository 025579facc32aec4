package whitelist

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"trace_validation_gateway/internal/repository"
	"trace_validation_gateway/internal/validation"

	"go.uber.org/zap"
)

// Snapshot is an immutable view of the lists a form is validated against.
type Snapshot struct {
	Tokens    []validation.TokenDescriptor
	Fiat      []string
	Reviewers []validation.Reviewer
	LoadedAt  time.Time
}

// Store holds the current snapshot. Readers never see a partially replaced snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.Swap(initial)
	return s
}

func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

func (s *Store) Swap(next Snapshot) {
	s.current.Store(&next)
}

// Refresher reloads the store from the whitelist repository.
type Refresher struct {
	repo   repository.WhitelistRepository
	store  *Store
	logger *zap.Logger
	now    func() time.Time
}

func NewRefresher(repo repository.WhitelistRepository, store *Store, logger *zap.Logger) *Refresher {
	return &Refresher{
		repo:   repo,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Refresh loads all lists and swaps them in together. On failure the previous snapshot
// stays in place.
func (r *Refresher) Refresh(ctx context.Context) error {
	tokens, err := r.repo.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh whitelist: %w", err)
	}
	currencies, err := r.repo.FiatCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh whitelist: %w", err)
	}
	reviewers, err := r.repo.Reviewers(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh whitelist: %w", err)
	}

	next := Snapshot{
		Tokens:    make([]validation.TokenDescriptor, 0, len(tokens)),
		Fiat:      make([]string, 0, len(currencies)),
		Reviewers: make([]validation.Reviewer, 0, len(reviewers)),
		LoadedAt:  r.now().UTC(),
	}
	for _, t := range tokens {
		next.Tokens = append(next.Tokens, validation.TokenDescriptor{
			Symbol:   t.Symbol,
			Name:     t.Name,
			Address:  t.Address,
			Decimals: t.Decimals,
		})
	}
	for _, c := range currencies {
		next.Fiat = append(next.Fiat, c.Code)
	}
	for _, rv := range reviewers {
		next.Reviewers = append(next.Reviewers, validation.Reviewer{Name: rv.Name, Address: rv.Address})
	}

	r.store.Swap(next)
	r.logger.Info("whitelist refreshed",
		zap.Int("tokens", len(next.Tokens)),
		zap.Int("currencies", len(next.Fiat)),
		zap.Int("reviewers", len(next.Reviewers)))
	return nil
}

// Run refreshes on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("whitelist refresher stopped")
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				r.logger.Error("failed to refresh whitelist", zap.Error(err))
			}
		}
	}
}
