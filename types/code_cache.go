package types

import "time"

// ContractCodeRecord is a row of contract_code_cache. Only addresses with deployed code
// are stored.
type ContractCodeRecord struct {
	Address   string    `json:"address" db:"address"`
	Code      []byte    `json:"code" db:"code"`
	CheckedAt time.Time `json:"checked_at" db:"checked_at"`
}
