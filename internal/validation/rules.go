package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	titleCharsetTag   = "title_charset"
	fiatDigitsTag     = "fiat_digits"
	positiveAmountTag = "positive_amount"
	markupPairTag     = "markup_pair"
)

var (
	titleCharset = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.,!?()]+$`)
	fiatDigits   = regexp.MustCompile(`^\d*\.?\d*$`)
)

var rules = newRules()

func newRules() *validator.Validate {
	validate := validator.New()
	custom := map[string]validator.Func{
		titleCharsetTag:   titleCharsetValidator,
		fiatDigitsTag:     fiatDigitsValidator,
		positiveAmountTag: positiveAmountValidator,
		markupPairTag:     markupPairValidator,
	}
	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return validate
}

func titleCharsetValidator(fl validator.FieldLevel) bool {
	return titleCharset.MatchString(fl.Field().String())
}

func fiatDigitsValidator(fl validator.FieldLevel) bool {
	input := fl.Field().String()
	if !fiatDigits.MatchString(input) {
		return false
	}
	_, err := decimal.NewFromString(input)
	return err == nil
}

// positiveAmountValidator only judges values that parse as numbers; anything else is
// left to fiat_digits.
func positiveAmountValidator(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return true
	}
	return amount.IsPositive()
}

func markupPairValidator(fl validator.FieldLevel) bool {
	return HasMarkupPair(fl.Field().String())
}
