package repository

import (
	"context"
	"fmt"

	"trace_validation_gateway/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// WhitelistRepository reads the externally curated token, currency and reviewer lists.
type WhitelistRepository interface {
	Tokens(ctx context.Context) ([]types.TokenRecord, error)
	FiatCurrencies(ctx context.Context) ([]types.FiatCurrencyRecord, error)
	Reviewers(ctx context.Context) ([]types.ReviewerRecord, error)
}

// querier is satisfied by *pgxpool.Pool.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type whitelistRepository struct {
	db     querier
	logger *zap.Logger
}

func NewWhitelistRepository(db *pgxpool.Pool, logger *zap.Logger) WhitelistRepository {
	return newWhitelistRepository(db, logger)
}

func newWhitelistRepository(db querier, logger *zap.Logger) *whitelistRepository {
	return &whitelistRepository{
		db:     db,
		logger: logger,
	}
}

func (r *whitelistRepository) Tokens(ctx context.Context) ([]types.TokenRecord, error) {
	query := `
		SELECT symbol, name, address, decimals, position
		FROM token_whitelist
		ORDER BY position, symbol
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to get token whitelist", zap.Error(err))
		return nil, fmt.Errorf("failed to get token whitelist: %w", err)
	}
	defer rows.Close()

	var tokens []types.TokenRecord
	for rows.Next() {
		var t types.TokenRecord
		if err := rows.Scan(&t.Symbol, &t.Name, &t.Address, &t.Decimals, &t.Position); err != nil {
			r.logger.Error("failed to scan token", zap.Error(err))
			continue
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to read token whitelist", zap.Error(err))
		return nil, fmt.Errorf("failed to read token whitelist: %w", err)
	}

	r.logger.Debug("token whitelist loaded", zap.Int("count", len(tokens)))
	return tokens, nil
}

func (r *whitelistRepository) FiatCurrencies(ctx context.Context) ([]types.FiatCurrencyRecord, error) {
	query := `
		SELECT code, position
		FROM fiat_whitelist
		ORDER BY position, code
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to get fiat whitelist", zap.Error(err))
		return nil, fmt.Errorf("failed to get fiat whitelist: %w", err)
	}
	defer rows.Close()

	var currencies []types.FiatCurrencyRecord
	for rows.Next() {
		var c types.FiatCurrencyRecord
		if err := rows.Scan(&c.Code, &c.Position); err != nil {
			r.logger.Error("failed to scan fiat currency", zap.Error(err))
			continue
		}
		currencies = append(currencies, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to read fiat whitelist", zap.Error(err))
		return nil, fmt.Errorf("failed to read fiat whitelist: %w", err)
	}

	r.logger.Debug("fiat whitelist loaded", zap.Int("count", len(currencies)))
	return currencies, nil
}

func (r *whitelistRepository) Reviewers(ctx context.Context) ([]types.ReviewerRecord, error) {
	query := `
		SELECT name, address, position
		FROM reviewers
		ORDER BY position, name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to get reviewers", zap.Error(err))
		return nil, fmt.Errorf("failed to get reviewers: %w", err)
	}
	defer rows.Close()

	var reviewers []types.ReviewerRecord
	for rows.Next() {
		var rv types.ReviewerRecord
		if err := rows.Scan(&rv.Name, &rv.Address, &rv.Position); err != nil {
			r.logger.Error("failed to scan reviewer", zap.Error(err))
			continue
		}
		reviewers = append(reviewers, rv)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("failed to read reviewers", zap.Error(err))
		return nil, fmt.Errorf("failed to read reviewers: %w", err)
	}

	r.logger.Debug("reviewers loaded", zap.Int("count", len(reviewers)))
	return reviewers, nil
}
