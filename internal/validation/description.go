package validation

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	MsgDescriptionRequired  = "Description is required"
	MsgDescriptionTooShort  = "Description must be at least 10 characters"
	MsgDescriptionTooLong   = "Description cannot exceed 20,000 characters"
	MsgDescriptionMalformed = "Please provide properly formatted content"
)

var (
	descriptionSpec = FieldSpec{
		Name:     "description",
		Rules:    "required",
		Messages: map[string]string{"required": MsgDescriptionRequired},
	}
	descriptionTextSpec = FieldSpec{
		Name:  "description",
		Rules: "min=10,max=20000",
		Messages: map[string]string{
			"min": MsgDescriptionTooShort,
			"max": MsgDescriptionTooLong,
		},
	}
	descriptionMarkupSpec = FieldSpec{
		Name:     "description",
		Rules:    markupPairTag,
		Messages: map[string]string{markupPairTag: MsgDescriptionMalformed},
	}
)

var openTag = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9]*)\b[^>]*>`)

// ValidateDescription checks a rich-text description. Length limits apply to the visible
// text, not to the markup.
func ValidateDescription(value string) Verdict {
	if v := descriptionSpec.Check(value); !v.Accepted {
		return v
	}
	if v := descriptionTextSpec.Check(VisibleText(value)); !v.Accepted {
		return v
	}
	return descriptionMarkupSpec.Check(value)
}

// VisibleText returns the text content of an HTML fragment with entities decoded.
func VisibleText(markup string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// HasMarkupPair reports whether markup contains an opening tag whose matching closing
// tag follows it on the same line.
func HasMarkupPair(markup string) bool {
	for i := 0; i < len(markup); i++ {
		if markup[i] != '<' {
			continue
		}
		m := openTag.FindStringSubmatch(markup[i:])
		if m == nil {
			continue
		}
		rest := markup[i+len(m[0]):]
		if end := strings.IndexAny(rest, "\r\n\u2028\u2029"); end >= 0 {
			rest = rest[:end]
		}
		if strings.Contains(rest, "</"+m[1]+">") {
			return true
		}
	}
	return false
}
