package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vmarchenko/contacts-api/internal/auth"
	"github.com/vmarchenko/contacts-api/internal/avatar"
	"github.com/vmarchenko/contacts-api/internal/domain"
	"github.com/vmarchenko/contacts-api/internal/email"
	"github.com/vmarchenko/contacts-api/internal/metrics"
	"github.com/vmarchenko/contacts-api/internal/repository"
)

type AuthUsecase struct {
	users          repository.UserRepository
	hasher         auth.PasswordHasher
	tokens         *auth.TokenCodec
	email          email.Sender
	avatars        avatar.Uploader
	logger         *slog.Logger
	verifyLinkBase string

	accessTTL      time.Duration
	refreshTTL     time.Duration
	emailVerifyTTL time.Duration
}

func NewAuthUsecase(
	users repository.UserRepository,
	hasher auth.PasswordHasher,
	tokens *auth.TokenCodec,
	emailSender email.Sender,
	avatars avatar.Uploader,
	logger *slog.Logger,
	verifyLinkBase string,
) *AuthUsecase {
	return &AuthUsecase{
		users:          users,
		hasher:         hasher,
		tokens:         tokens,
		email:          emailSender,
		avatars:        avatars,
		logger:         logger.With("component", "auth_usecase"),
		verifyLinkBase: verifyLinkBase,
		accessTTL:      auth.DefaultAccessTTL,
		refreshTTL:     auth.DefaultRefreshTTL,
		emailVerifyTTL: auth.DefaultEmailVerifyTTL,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Signup creates an unverified user and dispatches a verification email.
// The unique index on email is the source of truth for duplicates, so two
// concurrent signups with the same address cannot both succeed.
func (u *AuthUsecase) Signup(ctx context.Context, emailAddr, password string) (*domain.User, error) {
	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, emailAddr, hash)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.SignupsTotal.WithLabelValues("created").Inc()

	if err := u.dispatchVerification(ctx, user.Email); err != nil {
		// The user row is already committed; a missing email must not fail
		// the signup. Resend-verify covers recovery.
		u.logger.ErrorContext(ctx, "dispatch verification", "email", user.Email, "error", err)
	}
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. Unknown email
// and wrong password are indistinguishable to the caller. The stored
// refresh token is overwritten, invalidating any previous session.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, password string) (*TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !u.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := u.issuePair(user.Email)
	if err != nil {
		return nil, err
	}
	if err := u.users.UpdateRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return pair, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// stored token. Presenting a token that no longer matches the stored one
// is treated as reuse: the stored token is cleared, forcing re-login.
func (u *AuthUsecase) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	emailAddr, err := u.tokens.Decode(presented, auth.ScopeRefresh)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		if err := u.users.UpdateRefreshToken(ctx, user.ID, nil); err != nil {
			u.logger.ErrorContext(ctx, "clear refresh token", "error", err)
		}
		return nil, domain.ErrInvalidToken
	}

	pair, err := u.issuePair(user.Email)
	if err != nil {
		return nil, err
	}

	swapped, err := u.users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}
	if !swapped {
		// A concurrent refresh won the swap; this token is spent.
		return nil, domain.ErrInvalidToken
	}
	return pair, nil
}

// VerifyEmail marks the token's subject as verified. Safe to call twice
// with the same token: an already-verified user is a success no-op.
func (u *AuthUsecase) VerifyEmail(ctx context.Context, rawToken string) error {
	emailAddr, err := u.tokens.Decode(rawToken, auth.ScopeEmailVerify)
	if err != nil {
		return domain.ErrInvalidToken
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.IsVerified {
		return nil
	}
	if err := u.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// ResendVerification dispatches a fresh verification token. Returns
// ErrAlreadyVerified when there is nothing to verify.
func (u *AuthUsecase) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if user.IsVerified {
		return domain.ErrAlreadyVerified
	}

	if err := u.dispatchVerification(ctx, user.Email); err != nil {
		return fmt.Errorf("dispatch verification: %w", err)
	}
	return nil
}

// CurrentUser resolves the caller from an access token. All decode and
// lookup failures flatten to ErrInvalidToken (401); a valid token for an
// unverified user yields ErrEmailNotVerified (403) — the user proved who
// they are, but may not act yet. Verification status is re-read from the
// store on every call, not trusted from the token.
func (u *AuthUsecase) CurrentUser(ctx context.Context, rawToken string) (*domain.User, error) {
	emailAddr, err := u.tokens.Decode(rawToken, auth.ScopeAccess)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.IsVerified {
		return nil, domain.ErrEmailNotVerified
	}
	return user, nil
}

// UpdateAvatar uploads the image and persists its URL on the user record.
func (u *AuthUsecase) UpdateAvatar(ctx context.Context, user *domain.User, r io.Reader) (string, error) {
	url, err := u.avatars.Upload(ctx, r, user.ID)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	if err := u.users.UpdateAvatar(ctx, user.ID, url); err != nil {
		return "", fmt.Errorf("persist avatar: %w", err)
	}
	return url, nil
}

func (u *AuthUsecase) issuePair(subject string) (*TokenPair, error) {
	access, err := u.tokens.Issue(subject, auth.ScopeAccess, u.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := u.tokens.Issue(subject, auth.ScopeRefresh, u.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(auth.ScopeAccess)).Inc()
	metrics.TokensIssuedTotal.WithLabelValues(string(auth.ScopeRefresh)).Inc()
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// dispatchVerification mints an email-verify token and sends the link in
// the background. Send failures are logged, never surfaced to the request.
func (u *AuthUsecase) dispatchVerification(ctx context.Context, toEmail string) error {
	token, err := u.tokens.Issue(toEmail, auth.ScopeEmailVerify, u.emailVerifyTTL)
	if err != nil {
		return fmt.Errorf("issue email token: %w", err)
	}
	metrics.TokensIssuedTotal.WithLabelValues(string(auth.ScopeEmailVerify)).Inc()

	link := u.verifyLinkBase + "/auth/verify?token=" + token
	subject := "Confirm your email"
	body := fmt.Sprintf(
		`<p>Click the link below to confirm your email (expires in 24 hours):</p><p><a href="%s">%s</a></p>`,
		link, link,
	)

	sendCtx := context.WithoutCancel(ctx)
	go func() {
		if err := u.email.Send(sendCtx, toEmail, subject, body); err != nil {
			metrics.VerificationEmailsTotal.WithLabelValues("error").Inc()
			u.logger.ErrorContext(sendCtx, "send verification email", "email", toEmail, "error", err)
			return
		}
		metrics.VerificationEmailsTotal.WithLabelValues("ok").Inc()
	}()
	return nil
}
