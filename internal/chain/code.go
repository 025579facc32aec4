package chain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// DefaultLookupTimeout bounds a single eth_getCode round trip.
const DefaultLookupTimeout = 10 * time.Second

// codeReader is the part of *ethclient.Client the lookup uses.
type codeReader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
}

// CodeLookup reads deployed contract code through an Ethereum JSON-RPC node.
type CodeLookup struct {
	reader  codeReader
	closer  func()
	timeout time.Duration
	logger  *zap.Logger
}

func Dial(ctx context.Context, rpcURL string, timeout time.Duration, logger *zap.Logger) (*CodeLookup, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum node: %w", err)
	}

	logger.Info("connected to ethereum node", zap.String("url", rpcURL))
	lookup := NewCodeLookup(client, timeout, logger)
	lookup.closer = client.Close
	return lookup, nil
}

func NewCodeLookup(reader codeReader, timeout time.Duration, logger *zap.Logger) *CodeLookup {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &CodeLookup{
		reader:  reader,
		timeout: timeout,
		logger:  logger,
	}
}

// Code returns the code at address in the latest block. A lookup that outlives the
// timeout fails with context.DeadlineExceeded.
func (c *CodeLookup) Code(ctx context.Context, address string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	code, err := c.reader.CodeAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		c.logger.Error("failed to get code", zap.Error(err), zap.String("address", address))
		return nil, fmt.Errorf("failed to get code at %s: %w", address, err)
	}

	c.logger.Debug("code retrieved", zap.String("address", address), zap.Int("size", len(code)))
	return code, nil
}

func (c *CodeLookup) Close() {
	if c.closer != nil {
		c.closer()
		c.logger.Info("ethereum connection closed")
	}
}
