package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CodeCacheRepository remembers addresses already known to hold contract code.
type CodeCacheRepository interface {
	GetCode(ctx context.Context, address string) ([]byte, bool, error)
	PutCode(ctx context.Context, address string, code []byte) error
}

// rowExecer is satisfied by *pgxpool.Pool.
type rowExecer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type codeCacheRepository struct {
	db     rowExecer
	logger *zap.Logger
}

func NewCodeCacheRepository(db *pgxpool.Pool, logger *zap.Logger) CodeCacheRepository {
	return newCodeCacheRepository(db, logger)
}

func newCodeCacheRepository(db rowExecer, logger *zap.Logger) *codeCacheRepository {
	return &codeCacheRepository{
		db:     db,
		logger: logger,
	}
}

// GetCode reports whether address is cached. A miss is not an error.
func (r *codeCacheRepository) GetCode(ctx context.Context, address string) ([]byte, bool, error) {
	query := `SELECT code FROM contract_code_cache WHERE address = $1`

	var code []byte
	err := r.db.QueryRow(ctx, query, strings.ToLower(address)).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("failed to get cached code", zap.String("address", address), zap.Error(err))
		return nil, false, fmt.Errorf("failed to get cached code for %s: %w", address, err)
	}

	r.logger.Debug("code retrieved from cache", zap.String("address", address))
	return code, true, nil
}

func (r *codeCacheRepository) PutCode(ctx context.Context, address string, code []byte) error {
	query := `
		INSERT INTO contract_code_cache (address, code, checked_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (address) DO UPDATE SET code = EXCLUDED.code, checked_at = EXCLUDED.checked_at
	`

	if _, err := r.db.Exec(ctx, query, strings.ToLower(address), code); err != nil {
		r.logger.Error("failed to cache code", zap.String("address", address), zap.Error(err))
		return fmt.Errorf("failed to cache code for %s: %w", address, err)
	}
	return nil
}
