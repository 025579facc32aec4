package whitelist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"trace_validation_gateway/internal/validation"
	"trace_validation_gateway/types"

	"go.uber.org/zap/zaptest"
)

type mockWhitelistRepository struct {
	tokensFunc         func(ctx context.Context) ([]types.TokenRecord, error)
	fiatCurrenciesFunc func(ctx context.Context) ([]types.FiatCurrencyRecord, error)
	reviewersFunc      func(ctx context.Context) ([]types.ReviewerRecord, error)
}

func (m *mockWhitelistRepository) Tokens(ctx context.Context) ([]types.TokenRecord, error) {
	if m.tokensFunc != nil {
		return m.tokensFunc(ctx)
	}
	return nil, nil
}

func (m *mockWhitelistRepository) FiatCurrencies(ctx context.Context) ([]types.FiatCurrencyRecord, error) {
	if m.fiatCurrenciesFunc != nil {
		return m.fiatCurrenciesFunc(ctx)
	}
	return nil, nil
}

func (m *mockWhitelistRepository) Reviewers(ctx context.Context) ([]types.ReviewerRecord, error) {
	if m.reviewersFunc != nil {
		return m.reviewersFunc(ctx)
	}
	return nil, nil
}

func TestStoreSwap(t *testing.T) {
	store := NewStore(Snapshot{Fiat: []string{"USD"}})
	first := store.Snapshot()

	store.Swap(Snapshot{Fiat: []string{"EUR", "GBP"}})

	if len(first.Fiat) != 1 || first.Fiat[0] != "USD" {
		t.Errorf("expected earlier snapshot to stay unchanged, got %+v", first.Fiat)
	}
	if got := store.Snapshot().Fiat; len(got) != 2 || got[0] != "EUR" {
		t.Errorf("expected swapped snapshot, got %+v", got)
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	store := NewStore(Snapshot{Fiat: []string{"USD"}})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := store.Snapshot()
				if len(s.Fiat) != 1 && len(s.Fiat) != 2 {
					t.Errorf("observed torn snapshot: %+v", s.Fiat)
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		if j%2 == 0 {
			store.Swap(Snapshot{Fiat: []string{"EUR", "GBP"}})
		} else {
			store.Swap(Snapshot{Fiat: []string{"USD"}})
		}
	}
	wg.Wait()
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name          string
		repo          *mockWhitelistRepository
		expectedError bool
		expectedFiat  []string
	}{
		{
			name: "successful_refresh",
			repo: &mockWhitelistRepository{
				tokensFunc: func(ctx context.Context) ([]types.TokenRecord, error) {
					return []types.TokenRecord{{Symbol: "DAI", Name: "DAI Stablecoin", Decimals: 18}}, nil
				},
				fiatCurrenciesFunc: func(ctx context.Context) ([]types.FiatCurrencyRecord, error) {
					return []types.FiatCurrencyRecord{{Code: "EUR"}, {Code: "USD"}}, nil
				},
				reviewersFunc: func(ctx context.Context) ([]types.ReviewerRecord, error) {
					return []types.ReviewerRecord{{Name: "Alice", Address: "0xAAA1"}}, nil
				},
			},
			expectedFiat: []string{"EUR", "USD"},
		},
		{
			name: "tokens_error_keeps_previous",
			repo: &mockWhitelistRepository{
				tokensFunc: func(ctx context.Context) ([]types.TokenRecord, error) {
					return nil, errors.New("database connection failed")
				},
			},
			expectedError: true,
			expectedFiat:  []string{"GBP"},
		},
		{
			name: "reviewers_error_keeps_previous",
			repo: &mockWhitelistRepository{
				fiatCurrenciesFunc: func(ctx context.Context) ([]types.FiatCurrencyRecord, error) {
					return []types.FiatCurrencyRecord{{Code: "EUR"}}, nil
				},
				reviewersFunc: func(ctx context.Context) ([]types.ReviewerRecord, error) {
					return nil, errors.New("database connection failed")
				},
			},
			expectedError: true,
			expectedFiat:  []string{"GBP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(Snapshot{Fiat: []string{"GBP"}})
			refresher := NewRefresher(tt.repo, store, zaptest.NewLogger(t))
			loadedAt := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
			refresher.now = func() time.Time { return loadedAt }

			err := refresher.Refresh(context.Background())

			if tt.expectedError && err == nil {
				t.Error("expected error, but got nil")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			snapshot := store.Snapshot()
			if len(snapshot.Fiat) != len(tt.expectedFiat) {
				t.Fatalf("expected fiat %v, but got %v", tt.expectedFiat, snapshot.Fiat)
			}
			for i, code := range tt.expectedFiat {
				if snapshot.Fiat[i] != code {
					t.Errorf("expected fiat %v, but got %v", tt.expectedFiat, snapshot.Fiat)
				}
			}

			if tt.expectedError {
				return
			}
			if len(snapshot.Tokens) != 1 || snapshot.Tokens[0] != (validation.TokenDescriptor{Symbol: "DAI", Name: "DAI Stablecoin", Decimals: 18}) {
				t.Errorf("unexpected tokens: %+v", snapshot.Tokens)
			}
			if len(snapshot.Reviewers) != 1 || snapshot.Reviewers[0].Name != "Alice" {
				t.Errorf("unexpected reviewers: %+v", snapshot.Reviewers)
			}
			if !snapshot.LoadedAt.Equal(loadedAt) {
				t.Errorf("expected loaded at %s, but got %s", loadedAt, snapshot.LoadedAt)
			}
		})
	}
}

func TestRunStopsWithContext(t *testing.T) {
	var refreshes atomic.Int32
	repo := &mockWhitelistRepository{
		tokensFunc: func(ctx context.Context) ([]types.TokenRecord, error) {
			refreshes.Add(1)
			return nil, nil
		},
	}
	refresher := NewRefresher(repo, NewStore(Snapshot{}), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		refresher.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for refreshes.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("refresher did not tick")
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresher did not stop")
	}
}
