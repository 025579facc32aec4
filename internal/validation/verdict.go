package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Verdict is the outcome of validating a single field value.
type Verdict struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message,omitempty"`
}

func Accept() Verdict {
	return Verdict{Accepted: true}
}

func Reject(message string) Verdict {
	return Verdict{Accepted: false, Message: message}
}

// FieldSpec binds a validator tag chain to the messages shown for each failing tag.
// Tags are evaluated in order, so the first failing tag decides the message.
type FieldSpec struct {
	Name     string
	Rules    string
	Messages map[string]string
}

// Check runs the rule chain against value.
func (s FieldSpec) Check(value any) Verdict {
	err := rules.Var(value, s.Rules)
	if err == nil {
		return Accept()
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if message, ok := s.Messages[fieldErrs[0].Tag()]; ok {
			return Reject(message)
		}
	}

	return Reject(fmt.Sprintf("%s is invalid", s.Name))
}
