package auth

import (
	"context"
	"fmt"

	"trace_validation_gateway/internal/notification"

	"go.uber.org/zap"
)

const (
	TitleAuthRequired = "Authentication Required"
	TitleAuthFailed   = "Authentication Failed"
	TitleAuthError    = "Authentication Error"

	DescAuthRequired = "Please sign in to continue"
	DescAuthFailed   = "Please verify your wallet connection and try again"
	DescAuthError    = "An error occurred during authentication. Please try again."
)

// User is the wallet session as seen by the gate. Only Address is required to reach the
// verifier; the remaining fields are read by the verifier.
type User struct {
	Address          string `json:"address"`
	ConnectedAccount string `json:"connected_account,omitempty"`
	Authenticated    bool   `json:"authenticated,omitempty"`
	Challenge        string `json:"challenge,omitempty"`
	Signature        string `json:"signature,omitempty"`
}

// Verifier performs the actual wallet or session check.
type Verifier interface {
	CheckAuthentication(ctx context.Context, user User, strict bool) (bool, error)
}

// Gate decides whether an action may proceed for a user. Failures are reported through
// the notifier and never returned to the caller.
type Gate interface {
	Authenticate(ctx context.Context, user *User, strict bool) bool
}

type gate struct {
	verifier Verifier
	notifier notification.Notifier
	logger   *zap.Logger
}

func NewGate(verifier Verifier, notifier notification.Notifier, logger *zap.Logger) Gate {
	return &gate{
		verifier: verifier,
		notifier: notifier,
		logger:   logger,
	}
}

func (g *gate) Authenticate(ctx context.Context, user *User, strict bool) bool {
	if user == nil || user.Address == "" {
		g.notifier.Notify(ctx, notification.New(notification.KindError, TitleAuthRequired, DescAuthRequired))
		return false
	}

	ok, err := g.check(ctx, *user, strict)
	if err != nil {
		g.logger.Error("authentication error", zap.Error(err), zap.String("address", user.Address), zap.Bool("strict", strict))
		g.notifier.Notify(ctx, notification.New(notification.KindError, TitleAuthError, DescAuthError))
		return false
	}

	if !ok {
		g.logger.Info("authentication rejected", zap.String("address", user.Address), zap.Bool("strict", strict))
		g.notifier.Notify(ctx, notification.New(notification.KindWarning, TitleAuthFailed, DescAuthFailed))
		return false
	}

	return true
}

func (g *gate) check(ctx context.Context, user User, strict bool) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("verifier panicked: %v", r)
		}
	}()
	return g.verifier.CheckAuthentication(ctx, user, strict)
}
