package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

type walletVerifier struct {
	logger *zap.Logger
}

// NewWalletVerifier checks wallet sessions. The lenient mode only needs the wallet to be
// present: an authenticated session, or a connected account equal to the user address.
// Strict mode needs a personal_sign signature over the session challenge that recovers
// to the user address.
func NewWalletVerifier(logger *zap.Logger) Verifier {
	return &walletVerifier{logger: logger}
}

func (v *walletVerifier) CheckAuthentication(ctx context.Context, user User, strict bool) (bool, error) {
	if !common.IsHexAddress(user.Address) {
		return false, nil
	}

	if !strict {
		if user.Authenticated {
			return true, nil
		}
		return strings.EqualFold(user.ConnectedAccount, user.Address), nil
	}

	if user.Challenge == "" || user.Signature == "" {
		v.logger.Debug("strict authentication without signature", zap.String("address", user.Address))
		return false, nil
	}

	signer, err := RecoverSigner(user.Challenge, user.Signature)
	if err != nil {
		return false, err
	}

	return signer == common.HexToAddress(user.Address), nil
}

// RecoverSigner returns the account that produced a personal_sign signature over message.
func RecoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(sig))
	}

	// Wallets report the recovery id as 27/28.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}

	return crypto.PubkeyToAddress(*pub), nil
}
