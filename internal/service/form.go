package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trace_validation_gateway/internal/auth"
	"trace_validation_gateway/internal/messaging"
	"trace_validation_gateway/internal/notification"
	"trace_validation_gateway/internal/validation"
	"trace_validation_gateway/internal/whitelist"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	FieldTitle            = "title"
	FieldDescription      = "description"
	FieldRecipientAddress = "recipientAddress"
	FieldAmount           = "amount"
	FieldCurrency         = "currency"
	FieldDate             = "date"
	FieldToken            = "token"
	FieldReviewerAddress  = "reviewerAddress"

	EventChange = "change"
	EventBlur   = "blur"
)

var ErrUnknownField = errors.New("unknown field")

type FieldRequest struct {
	Field         string `json:"field"`
	Value         string `json:"value"`
	Event         string `json:"event,omitempty"`
	AllowAnyToken bool   `json:"allow_any_token,omitempty"`
	Required      bool   `json:"required,omitempty"`
}

// FieldResult carries the verdict together with the value it was computed for, which
// differs from the submitted value when the field was normalized.
type FieldResult struct {
	validation.Verdict
	Field string `json:"field"`
	Value string `json:"value"`
	Stale bool   `json:"stale,omitempty"`
}

type ExpenseItem struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type TraceForm struct {
	Title             string        `json:"title"`
	Description       string        `json:"description"`
	DonateToCommunity bool          `json:"donate_to_community"`
	HasReviewer       bool          `json:"has_reviewer"`
	ReviewerAddress   string        `json:"reviewer_address,omitempty"`
	Token             string        `json:"token"`
	AllowAnyToken     bool          `json:"allow_any_token,omitempty"`
	RecipientAddress  string        `json:"recipient_address"`
	Items             []ExpenseItem `json:"items,omitempty"`
}

type FormResult struct {
	Form     TraceForm                     `json:"form"`
	Verdicts map[string]validation.Verdict `json:"verdicts"`
	Accepted bool                          `json:"accepted"`
}

type SubmissionResult struct {
	Authorized   bool        `json:"authorized"`
	SubmissionID string      `json:"submission_id,omitempty"`
	Result       *FormResult `json:"result,omitempty"`
}

type FormService interface {
	ValidateField(ctx context.Context, session string, req FieldRequest) (*FieldResult, error)
	ValidateForm(ctx context.Context, form TraceForm) *FormResult
	Submit(ctx context.Context, user *auth.User, strict bool, form TraceForm) (*SubmissionResult, error)
}

type formService struct {
	store    *whitelist.Store
	lookup   validation.CodeLookup
	gate     auth.Gate
	nats     messaging.NATSClient
	notifier notification.Notifier
	tracker  *validation.Tracker
	logger   *zap.Logger
	now      func() time.Time
}

func NewFormService(store *whitelist.Store, lookup validation.CodeLookup, gate auth.Gate, nats messaging.NATSClient, notifier notification.Notifier, logger *zap.Logger) FormService {
	return &formService{
		store:    store,
		lookup:   lookup,
		gate:     gate,
		nats:     nats,
		notifier: notifier,
		tracker:  validation.NewTracker(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *formService) ValidateField(ctx context.Context, session string, req FieldRequest) (*FieldResult, error) {
	result := &FieldResult{Field: req.Field, Value: req.Value}
	snapshot := s.store.Snapshot()

	switch req.Field {
	case FieldTitle:
		if req.Event == EventBlur {
			result.Value = validation.NormalizeTitle(req.Value)
		}
		result.Verdict = validation.ValidateTitle(result.Value)
	case FieldDescription:
		result.Verdict = validation.ValidateDescription(req.Value)
	case FieldRecipientAddress:
		result.Verdict, result.Stale = s.validateRecipient(ctx, session, req.Value)
	case FieldAmount:
		result.Verdict = validation.ValidateFiatAmount(req.Value)
	case FieldCurrency:
		result.Verdict = validation.ValidateCurrency(req.Value, snapshot.Fiat)
	case FieldDate:
		result.Verdict = validation.ValidateDateString(req.Value, s.now())
	case FieldToken:
		result.Verdict = validation.ValidateTokenSelection(req.Value, snapshot.Tokens, req.AllowAnyToken)
	case FieldReviewerAddress:
		result.Verdict = validation.ValidateReviewerAddress(req.Value, req.Required)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, req.Field)
	}

	if result.Stale {
		s.logger.Debug("discarding stale verdict", zap.String("session", session), zap.String("field", req.Field))
	}
	return result, nil
}

// validateRecipient runs the contract lookup through the tracker so that a slow lookup
// for an older keystroke cannot overwrite the verdict for the newer one.
func (s *formService) validateRecipient(ctx context.Context, session, value string) (validation.Verdict, bool) {
	if session == "" {
		return validation.ValidateRecipientAddress(ctx, value, s.lookup), false
	}

	verdict, current := s.tracker.Run(ctx, session+"/"+FieldRecipientAddress, func(ctx context.Context) validation.Verdict {
		return validation.ValidateRecipientAddress(ctx, value, s.lookup)
	})
	return verdict, !current
}

func (s *formService) ValidateForm(ctx context.Context, form TraceForm) *FormResult {
	form.Title = validation.NormalizeTitle(form.Title)
	snapshot := s.store.Snapshot()
	today := s.now()

	verdicts := map[string]validation.Verdict{
		FieldTitle:            validation.ValidateTitle(form.Title),
		FieldDescription:      validation.ValidateDescription(form.Description),
		FieldToken:            validation.ValidateTokenSelection(form.Token, snapshot.Tokens, form.AllowAnyToken),
		FieldRecipientAddress: validation.ValidateRecipientAddress(ctx, form.RecipientAddress, s.lookup),
		FieldReviewerAddress:  validation.ValidateReviewerAddress(form.ReviewerAddress, form.HasReviewer),
	}
	for i, item := range form.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		verdicts[prefix+FieldDate] = validation.ValidateDateString(item.Date, today)
		verdicts[prefix+FieldAmount] = validation.ValidateFiatAmount(item.Amount)
		verdicts[prefix+FieldCurrency] = validation.ValidateCurrency(item.Currency, snapshot.Fiat)
	}

	accepted := true
	for _, v := range verdicts {
		if !v.Accepted {
			accepted = false
			break
		}
	}

	return &FormResult{
		Form:     form,
		Verdicts: verdicts,
		Accepted: accepted,
	}
}

func (s *formService) Submit(ctx context.Context, user *auth.User, strict bool, form TraceForm) (*SubmissionResult, error) {
	if !s.gate.Authenticate(ctx, user, strict) {
		return &SubmissionResult{Authorized: false}, nil
	}

	if form.RecipientAddress == "" {
		form.RecipientAddress = user.Address
	}

	result := s.ValidateForm(ctx, form)
	if !result.Accepted {
		s.logger.Info("trace submission rejected", zap.String("address", user.Address))
		return &SubmissionResult{Authorized: true, Result: result}, nil
	}

	submissionID := uuid.New().String()
	msg := messaging.TraceSubmittedMessage{
		SubmissionID:      submissionID,
		UserAddress:       user.Address,
		Title:             result.Form.Title,
		Description:       result.Form.Description,
		RecipientAddress:  result.Form.RecipientAddress,
		TokenSymbol:       result.Form.Token,
		DonateToCommunity: result.Form.DonateToCommunity,
	}
	if result.Form.HasReviewer {
		msg.ReviewerAddress = result.Form.ReviewerAddress
	}
	for _, item := range result.Form.Items {
		amount, err := validation.ParseFiatAmount(item.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", item.Amount, err)
		}
		msg.Items = append(msg.Items, messaging.ExpenseItemMessage{
			Date:     item.Date,
			Amount:   amount.String(),
			Currency: item.Currency,
		})
	}

	if err := s.nats.PublishTraceSubmitted(ctx, msg); err != nil {
		s.logger.Error("failed to publish trace submission", zap.Error(err), zap.String("submission_id", submissionID))
		return nil, fmt.Errorf("failed to publish trace submission: %w", err)
	}

	s.notifier.Notify(ctx, notification.New(notification.KindInfo, "Trace Submitted", "Your trace was submitted for review"))
	s.logger.Info("trace submitted", zap.String("submission_id", submissionID), zap.String("address", user.Address))
	return &SubmissionResult{Authorized: true, SubmissionID: submissionID, Result: result}, nil
}
