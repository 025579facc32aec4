package validation

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	MsgRecipientRequired = "Recipient address is required"
	MsgRecipientInvalid  = "Please enter a valid Ethereum address"
	MsgRecipientZero     = "Cannot use zero address"
	MsgRecipientContract = "Cannot send to a contract address"
	MsgRecipientLookup   = "Error validating address"
)

// CodeLookup returns the code deployed at an account, empty when there is none.
type CodeLookup interface {
	Code(ctx context.Context, address string) ([]byte, error)
}

type CodeLookupFunc func(ctx context.Context, address string) ([]byte, error)

func (f CodeLookupFunc) Code(ctx context.Context, address string) ([]byte, error) {
	return f(ctx, address)
}

// IsAddress accepts 40 hex digits with an optional 0x prefix. Mixed-case input must carry
// a valid EIP-55 checksum.
func IsAddress(value string) bool {
	if !common.IsHexAddress(value) {
		return false
	}
	digits := value
	if len(digits) == 2*common.AddressLength+2 {
		digits = digits[2:]
	}
	if digits == strings.ToLower(digits) || digits == strings.ToUpper(digits) {
		return true
	}
	return digits == common.HexToAddress(value).Hex()[2:]
}

func IsZeroAddress(value string) bool {
	return common.HexToAddress(value) == (common.Address{})
}

// ValidateRecipientAddress rejects malformed, zero and contract addresses. Only a
// well-formed non-zero address reaches lookup; lookup failures become a rejection.
func ValidateRecipientAddress(ctx context.Context, value string, lookup CodeLookup) (verdict Verdict) {
	if value == "" {
		return Reject(MsgRecipientRequired)
	}
	if !IsAddress(value) {
		return Reject(MsgRecipientInvalid)
	}
	if IsZeroAddress(value) {
		return Reject(MsgRecipientZero)
	}
	if lookup == nil {
		return Reject(MsgRecipientLookup)
	}

	defer func() {
		if r := recover(); r != nil {
			verdict = Reject(MsgRecipientLookup)
		}
	}()

	code, err := lookup.Code(ctx, value)
	if err != nil {
		return Reject(MsgRecipientLookup)
	}
	if len(code) > 0 {
		return Reject(MsgRecipientContract)
	}
	return Accept()
}
