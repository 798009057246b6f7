package campus

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccountVerificationMesage struct {
	Token      string `json:"token"`
	OnResponse func(a *AccountVerificationResponse)
}

func (e AccountVerificationMesage) Type() string { return "user.verify_email" }

type AccountVerificationResponse struct {
	Verified bool     `json:"verified"`
	Expired  bool     `json:"expired"`
	Found    bool     `json:"found"`
	Errors   []string `json:"errors"`
}

// AccountVerificationHandler confirms an email address from a verification
// token. The token carries the email_verification purpose, session tokens
// are rejected even when otherwise valid.
type AccountVerificationHandler struct {
	repo   RepositoryManager
	tokens TokenService
	sink   ActivitySink
}

func NewAccountVerificationHandler(repo RepositoryManager, tokens TokenService) *AccountVerificationHandler {
	return &AccountVerificationHandler{
		repo:   repo,
		tokens: tokens,
		sink:   noopActivitySink{},
	}
}

// WithActivitySink installs a sink that receives verification audit events.
func (h *AccountVerificationHandler) WithActivitySink(sink ActivitySink) *AccountVerificationHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *AccountVerificationHandler) Execute(ctx context.Context, event AccountVerificationMesage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during account verification")
	default:
		return h.execute(ctx, event)
	}
}

func (h *AccountVerificationHandler) execute(ctx context.Context, event AccountVerificationMesage) error {
	resp := &AccountVerificationResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.tokens.ValidatePurpose(event.Token, PurposeEmailVerification)
	if err != nil {
		if IsTokenExpiredError(err) {
			resp.Expired = true
			event.OnResponse(resp)
			return nil
		}
		return err
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ErrUnableToMapClaims
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.Users().VerifyEmailTx(ctx, tx, userID); err != nil {
			if goerrors.IsNotFound(err) {
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email as verified")
		}

		resp.Found = true
		resp.Verified = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to execute account verification")
	}

	if resp.Verified {
		_ = h.sink.Record(ctx, ActivityEvent{
			EventType:  ActivityEventEmailVerified,
			ActorID:    userID.String(),
			UserID:     userID.String(),
			OccurredAt: time.Now().UTC(),
		})
	}

	event.OnResponse(resp)

	return nil
}

func printEmailNotification(email, link string) {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf("link: %s\n", link)
}
