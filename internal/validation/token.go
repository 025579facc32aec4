package validation

import (
	"fmt"
	"strings"
)

const (
	MsgTokenRequired       = "Payment currency is required"
	MsgTokenNotWhitelisted = "Please select a whitelisted token"

	MsgReviewerRequired = "'Reviewer Address' is required"
)

type TokenDescriptor struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Decimals int    `json:"decimals,omitempty"`
}

// AnyToken lets a donor pay with whichever whitelisted token they hold.
var AnyToken = TokenDescriptor{
	Symbol:   "ANY_TOKEN",
	Name:     "Any Token",
	Address:  "0x0000000000000000000000000000000000000000",
	Decimals: 18,
}

type Reviewer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (r Reviewer) Label() string {
	return fmt.Sprintf("%s - %s", r.Name, r.Address)
}

func ValidateTokenSelection(symbol string, whitelist []TokenDescriptor, allowAnyToken bool) Verdict {
	if symbol == "" {
		return Reject(MsgTokenRequired)
	}
	if _, ok := ResolveToken(symbol, whitelist, allowAnyToken); !ok {
		return Reject(MsgTokenNotWhitelisted)
	}
	return Accept()
}

// ResolveToken maps a selected symbol back to its descriptor.
func ResolveToken(symbol string, whitelist []TokenDescriptor, allowAnyToken bool) (TokenDescriptor, bool) {
	if allowAnyToken && symbol == AnyToken.Symbol {
		return AnyToken, true
	}
	for _, token := range whitelist {
		if token.Symbol == symbol {
			return token, true
		}
	}
	return TokenDescriptor{}, false
}

func ValidateReviewerAddress(value string, required bool) Verdict {
	if required && value == "" {
		return Reject(MsgReviewerRequired)
	}
	return Accept()
}

// FilterTokens does a case-insensitive substring search over token names. The any-token
// option is listed first when included.
func FilterTokens(query string, whitelist []TokenDescriptor, includeAnyToken bool) []TokenDescriptor {
	options := make([]TokenDescriptor, 0, len(whitelist)+1)
	if includeAnyToken {
		options = append(options, AnyToken)
	}
	options = append(options, whitelist...)

	needle := strings.ToLower(query)
	matched := make([]TokenDescriptor, 0, len(options))
	for _, token := range options {
		if strings.Contains(strings.ToLower(token.Name), needle) {
			matched = append(matched, token)
		}
	}
	return matched
}

func FilterReviewers(query string, reviewers []Reviewer) []Reviewer {
	needle := strings.ToLower(query)
	matched := make([]Reviewer, 0, len(reviewers))
	for _, reviewer := range reviewers {
		if strings.Contains(strings.ToLower(reviewer.Label()), needle) {
			matched = append(matched, reviewer)
		}
	}
	return matched
}
