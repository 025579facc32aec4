package validation

import (
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

const (
	MsgAmountRequired  = "Amount is required"
	MsgAmountNotNumber = "Amount should contain just number"
	MsgAmountNotAbove  = "Amount should be greater than zero"

	MsgCurrencyRequired    = "Amount currency is required"
	MsgCurrencyUnsupported = "Please select a supported currency"
)

// The positive check runs before the digit pattern so that negative numbers report
// the "greater than zero" message.
var FiatAmountSpec = FieldSpec{
	Name:  "amount",
	Rules: "required," + positiveAmountTag + "," + fiatDigitsTag,
	Messages: map[string]string{
		"required":        MsgAmountRequired,
		positiveAmountTag: MsgAmountNotAbove,
		fiatDigitsTag:     MsgAmountNotNumber,
	},
}

func ValidateFiatAmount(value string) Verdict {
	return FiatAmountSpec.Check(value)
}

// ParseFiatAmount returns the decimal value of an amount that passes ValidateFiatAmount.
func ParseFiatAmount(value string) (decimal.Decimal, error) {
	if v := ValidateFiatAmount(value); !v.Accepted {
		return decimal.Zero, errors.New(v.Message)
	}
	return decimal.NewFromString(value)
}

func ValidateCurrency(value string, fiatWhitelist []string) Verdict {
	if value == "" {
		return Reject(MsgCurrencyRequired)
	}
	if !slices.Contains(fiatWhitelist, value) {
		return Reject(MsgCurrencyUnsupported)
	}
	return Accept()
}
