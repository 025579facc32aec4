package chain

import (
	"context"

	"go.uber.org/zap"
)

type codeSource interface {
	Code(ctx context.Context, address string) ([]byte, error)
}

// codeCache is implemented by repository.CodeCacheRepository.
type codeCache interface {
	GetCode(ctx context.Context, address string) ([]byte, bool, error)
	PutCode(ctx context.Context, address string, code []byte) error
}

// CachedCodeLookup answers from the cache for addresses already known to be contracts.
// Addresses without code are always asked again, since code can be deployed to them later.
type CachedCodeLookup struct {
	next   codeSource
	cache  codeCache
	logger *zap.Logger
}

func NewCachedCodeLookup(next codeSource, cache codeCache, logger *zap.Logger) *CachedCodeLookup {
	return &CachedCodeLookup{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

// Code never fails because of the cache; cache errors are logged and the node is asked.
func (c *CachedCodeLookup) Code(ctx context.Context, address string) ([]byte, error) {
	code, found, err := c.cache.GetCode(ctx, address)
	if err != nil {
		c.logger.Warn("code cache unavailable", zap.Error(err), zap.String("address", address))
	} else if found {
		return code, nil
	}

	code, err = c.next.Code(ctx, address)
	if err != nil {
		return nil, err
	}

	if len(code) > 0 {
		if err := c.cache.PutCode(ctx, address, code); err != nil {
			c.logger.Warn("failed to cache contract code", zap.Error(err), zap.String("address", address))
		}
	}
	return code, nil
}
