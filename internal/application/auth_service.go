package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/interviewhub/interviewhub-api/internal/domain/entity"
	repo "github.com/interviewhub/interviewhub-api/internal/domain/repository"
	"github.com/interviewhub/interviewhub-api/internal/infrastructure/postgres"
	"github.com/interviewhub/interviewhub-api/pkg/helpers"
)

// AuthService orchestrates the account lifecycle: login, registration,
// email verification, password reset, session status, and self-deletion.
// Each method is a standalone transaction against the account store.
type AuthService struct {
	Repo     repo.AccountRepository
	Tokens   *helpers.TokenCodec
	Hasher   *helpers.PasswordHasher
	Notifier Notifier
	Search   *SearchService
	Logger   *logrus.Logger
}

func NewAuthService(r repo.AccountRepository, tokens *helpers.TokenCodec, hasher *helpers.PasswordHasher, notifier Notifier, search *SearchService, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:     r,
		Tokens:   tokens,
		Hasher:   hasher,
		Notifier: notifier,
		Search:   search,
		Logger:   logger,
	}
}

// Session is an issued session token with its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Login validates credentials and issues a session token carrying the
// account's stored role. Missing input, an unknown email, and a wrong
// password all collapse into ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.Account, Session, error) {
	if email == "" || password == "" {
		return nil, Session{}, ErrInvalidCredentials
	}
	a, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, fmt.Errorf("find account: %w", err)
	}
	ok, err := s.Hasher.Verify(password, a.PasswordHash)
	if err != nil {
		return nil, Session{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, Session{}, ErrInvalidCredentials
	}
	if !a.IsEmailVerified {
		return nil, Session{}, ErrEmailNotVerified
	}

	tok, exp, err := s.Tokens.Issue(helpers.TokenKindSession, a.ID, a.Email, a.IsAdmin)
	if err != nil {
		return nil, Session{}, fmt.Errorf("issue session token: %w", err)
	}
	return a, Session{Token: tok, ExpiresAt: exp}, nil
}

// RegisterInput is the validated profile for a new account.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Branch      string
	PassingYear string
	Designation string
	About       string
	GitHub      string
	Leetcode    string
	LinkedIn    string
}

// Register creates an unverified account and dispatches a verification link.
// A duplicate unverified registration is treated as abandonment: the stale
// record is deleted and registration restarts. Registration never logs the
// caller in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta MailMeta) (*entity.Account, error) {
	existing, err := s.Repo.FindByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, postgres.ErrNotFound) {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if existing != nil {
		if existing.IsEmailVerified {
			return nil, ErrEmailTaken
		}
		if err := s.Repo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("delete stale account: %w", err)
		}
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &entity.Account{
		Username:        in.Username,
		Email:           in.Email,
		PasswordHash:    hash,
		IsAdmin:         false,
		IsEmailVerified: false,
		Branch:          in.Branch,
		PassingYear:     in.PassingYear,
		Designation:     in.Designation,
		About:           in.About,
		GitHub:          in.GitHub,
		Leetcode:        in.Leetcode,
		LinkedIn:        in.LinkedIn,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	tok, _, err := s.Tokens.Issue(helpers.TokenKindVerifyEmail, a.ID, a.Email, a.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue verification token: %w", err)
	}
	if err := s.Notifier.SendVerificationMail(ctx, a.Email, tok, a.Username, meta); err != nil {
		return nil, fmt.Errorf("dispatch verification mail: %w", err)
	}

	s.Search.IndexAccount(ctx, a)
	return a, nil
}

// ForgotPassword issues a reset token and dispatches it. Dispatch failures
// are logged but not surfaced, so the caller cannot probe delivery.
func (s *AuthService) ForgotPassword(ctx context.Context, email string, meta MailMeta) error {
	a, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("find account: %w", err)
	}
	if !a.IsEmailVerified {
		return ErrEmailNotVerified
	}

	tok, _, err := s.Tokens.Issue(helpers.TokenKindResetPassword, a.ID, a.Email, a.IsAdmin)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.Notifier.SendPasswordResetMail(ctx, a.Email, tok, a.Username, meta); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", a.Email).Warn("password reset mail dispatch failed")
	}
	return nil
}

// ResetPassword consumes a reset token. The presented email must equal the
// email bound in the token, and the token must belong to the standard
// account class. The token itself is stateless and cannot be invalidated
// afterward.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, email, newPassword string) error {
	claims, err := s.Tokens.Verify(tokenStr)
	if err != nil {
		return ErrInvalidResetLink
	}
	if claims.IsAdmin || claims.Email != email {
		return ErrInvalidResetLink
	}
	if _, err := s.Repo.FindByEmail(ctx, claims.Email); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("find account: %w", err)
	}
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdatePassword(ctx, claims.Email, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token and flips the account's
// verified flag. Decode failures, a missing account, and a token of the
// wrong account class all map to ErrInvalidVerifyLink.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenStr string) error {
	claims, err := s.Tokens.Verify(tokenStr)
	if err != nil {
		return ErrInvalidVerifyLink
	}
	if claims.IsAdmin {
		return ErrInvalidVerifyLink
	}
	a, err := s.Repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrInvalidVerifyLink
		}
		return fmt.Errorf("find account: %w", err)
	}
	if err := s.Repo.MarkEmailVerified(ctx, claims.Email); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	a.IsEmailVerified = true
	s.Search.IndexAccount(ctx, a)
	return nil
}

// Status is the best-effort session snapshot for polling clients.
type Status struct {
	LoggedIn bool
	IsAdmin  bool
	Account  *entity.Account
}

// SessionStatus never treats an absent, invalid, or expired token as an
// error; those all yield a definite "not logged in". Only a store failure
// propagates, so the handler can answer with a distinguishable status.
func (s *AuthService) SessionStatus(ctx context.Context, tokenStr string) (Status, error) {
	if tokenStr == "" {
		return Status{}, nil
	}
	claims, err := s.Tokens.Verify(tokenStr)
	if err != nil {
		return Status{}, nil
	}
	a, err := s.Repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return Status{}, nil
		}
		return Status{}, fmt.Errorf("find account: %w", err)
	}
	return Status{LoggedIn: true, IsAdmin: a.IsAdmin, Account: a}, nil
}

// GetProfile returns the account for an authenticated subject id.
func (s *AuthService) GetProfile(ctx context.Context, id string) (*entity.Account, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

// DeleteAccount removes the account matching the authenticated subject id.
func (s *AuthService) DeleteAccount(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("delete account: %w", err)
	}
	s.Search.RemoveAccount(ctx, id)
	return nil
}
