package auth

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap/zaptest"
)

const challenge = "Sign in to Giveth\nnonce: 42"

func signChallenge(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig)
}

func TestWalletVerifier(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	other, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	tests := []struct {
		name          string
		user          User
		strict        bool
		expected      bool
		expectedError bool
	}{
		{
			name:     "malformed_address",
			user:     User{Address: "not-an-address", Authenticated: true},
			expected: false,
		},
		{
			name:     "lenient_authenticated_session",
			user:     User{Address: address, Authenticated: true},
			expected: true,
		},
		{
			name:     "lenient_connected_account_matches",
			user:     User{Address: address, ConnectedAccount: strings.ToLower(address)},
			expected: true,
		},
		{
			name:     "lenient_other_account_connected",
			user:     User{Address: address, ConnectedAccount: crypto.PubkeyToAddress(other.PublicKey).Hex()},
			expected: false,
		},
		{
			name:     "strict_without_signature",
			user:     User{Address: address, Authenticated: true},
			strict:   true,
			expected: false,
		},
		{
			name:     "strict_valid_signature",
			user:     User{Address: address, Challenge: challenge, Signature: signChallenge(t, key, challenge)},
			strict:   true,
			expected: true,
		},
		{
			name:     "strict_signature_from_other_key",
			user:     User{Address: address, Challenge: challenge, Signature: signChallenge(t, other, challenge)},
			strict:   true,
			expected: false,
		},
		{
			name:     "strict_signature_over_other_message",
			user:     User{Address: address, Challenge: challenge, Signature: signChallenge(t, key, "something else")},
			strict:   true,
			expected: false,
		},
		{
			name:          "strict_malformed_signature",
			user:          User{Address: address, Challenge: challenge, Signature: "0xnothex"},
			strict:        true,
			expectedError: true,
		},
		{
			name:          "strict_short_signature",
			user:          User{Address: address, Challenge: challenge, Signature: "0x1234"},
			strict:        true,
			expectedError: true,
		},
	}

	verifier := NewWalletVerifier(zaptest.NewLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := verifier.CheckAuthentication(context.Background(), tt.user, tt.strict)

			if tt.expectedError {
				if err == nil {
					t.Error("expected error, but got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if got != tt.expected {
				t.Errorf("expected %t, but got %t", tt.expected, got)
			}
		})
	}
}

func TestRecoverSigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	signer, err := RecoverSigner(challenge, signChallenge(t, key, challenge))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signer != crypto.PubkeyToAddress(key.PublicKey) {
		t.Errorf("expected signer %s, but got %s", crypto.PubkeyToAddress(key.PublicKey).Hex(), signer.Hex())
	}
}
