package campus

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	Token   string
	Success bool
}

// InitializePasswordResetHandler mints a reset token for a known email.
// Unknown emails report success without sending anything so the endpoint
// does not leak which addresses have accounts.
type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	tokens TokenService
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, tokens TokenService) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByIdentifier(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			resp.Success = true
			event.OnResponse(resp)
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if user.ResetedAt != nil {
		throttled, terr := IsWithinThresholdPeriod(*user.ResetedAt, PasswordResetThrottle)
		if terr == nil && throttled {
			h.logger.Info("password reset throttled", "user_id", user.ID.String())
			resp.Success = true
			event.OnResponse(resp)
			return nil
		}
	}

	token, err := h.tokens.GeneratePasswordReset(user.ID.String(), user.Email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mint password reset token")
	}

	go printEmailNotification(user.Email, "/password-reset/"+token)

	resp.Token = token
	resp.Success = true
	event.OnResponse(resp)

	return nil
}
