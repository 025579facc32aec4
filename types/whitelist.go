package types

// TokenRecord is a row of token_whitelist
type TokenRecord struct {
	Symbol   string `json:"symbol" db:"symbol"`
	Name     string `json:"name" db:"name"`
	Address  string `json:"address" db:"address"`
	Decimals int    `json:"decimals" db:"decimals"`
	Position int    `json:"position" db:"position"`
}

// FiatCurrencyRecord is a row of fiat_whitelist
type FiatCurrencyRecord struct {
	Code     string `json:"code" db:"code"`
	Position int    `json:"position" db:"position"`
}

// ReviewerRecord is a row of reviewers
type ReviewerRecord struct {
	Name     string `json:"name" db:"name"`
	Address  string `json:"address" db:"address"`
	Position int    `json:"position" db:"position"`
}
