package validation

import "strings"

const (
	MsgTitleTooShort     = "Please provide at least 3 characters"
	MsgTitleTooLong      = "Title cannot exceed 100 characters"
	MsgTitleInvalidChars = "Title contains invalid characters"
)

var TitleSpec = FieldSpec{
	Name:  "title",
	Rules: "required,min=3,max=100," + titleCharsetTag,
	Messages: map[string]string{
		"required":      MsgTitleTooShort,
		"min":           MsgTitleTooShort,
		"max":           MsgTitleTooLong,
		titleCharsetTag: MsgTitleInvalidChars,
	},
}

func ValidateTitle(value string) Verdict {
	return TitleSpec.Check(value)
}

// NormalizeTitle is applied when the title input loses focus.
func NormalizeTitle(value string) string {
	return strings.TrimSpace(value)
}
