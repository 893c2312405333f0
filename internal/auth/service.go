package auth

import (
	"context"
	"time"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/agrilink-hq/agrilink-client/internal/session"
	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/go-playground/validator/v10"
)

// Migrator replays guest state after a successful login. Satisfied by
// *guest.Migrator; an interface here keeps login testable without a
// real store.
type Migrator interface {
	Run(ctx context.Context) guest.Report
}

// LoginInput is the sign-in form payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the sign-up form payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=BUYER FARMER"`
}

// User is the account profile returned by the auth service.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// ServiceParams groups the auth service dependencies.
type ServiceParams struct {
	API      *rest.Client
	Sessions *session.Manager
	Migrator Migrator
	Log      *logger.Logger
}

// Service handles the authentication flows and owns the one post-login
// side effect: replaying guest cart and wishlist state into the account.
type Service struct {
	api      *rest.Client
	sessions *session.Manager
	migrator Migrator
	log      *logger.Logger
	validate *validator.Validate
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rest client is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	return &Service{
		api:      params.API,
		sessions: params.Sessions,
		migrator: params.Migrator,
		log:      params.Log,
		validate: validator.New(),
	}, nil
}

// Login authenticates, installs the session, then runs the guest
// migration exactly once. The migration report is returned alongside
// the session; a partial migration does not fail the login.
func (s *Service) Login(ctx context.Context, input LoginInput) (session.Session, guest.Report, error) {
	if err := s.validate.Struct(input); err != nil {
		return session.Session{}, guest.Report{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid credentials")
	}

	raw, err := s.api.Post(ctx, "auth/login", input)
	if err != nil {
		return session.Session{}, guest.Report{}, err
	}
	resp, err := envelope.DecodeData[loginResponse](raw)
	if err != nil {
		return session.Session{}, guest.Report{}, err
	}
	if resp.AccessToken == "" {
		return session.Session{}, guest.Report{}, pkgerrors.New(pkgerrors.CodeDecode, "login response has no access token")
	}

	current := session.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		Role:         resp.User.Role,
	}
	// A token without a readable expiry still logs in; the session just
	// never self-expires and the backend's 401 drives the refresh.
	if expiry, expErr := session.ExpiryFromToken(resp.AccessToken); expErr == nil {
		current.ExpiresAt = expiry
	} else if s.log != nil {
		s.log.Warn(s.log.WithUserID(ctx, resp.User.ID), "access token carries no readable expiry")
	}
	if err := s.sessions.Set(current); err != nil {
		return session.Session{}, guest.Report{}, err
	}

	var report guest.Report
	if s.migrator != nil {
		report = s.migrator.Run(ctx)
	}
	return current, report, nil
}

// Register creates an account. The caller logs in afterwards; guest
// state survives registration untouched.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if err := s.validate.Struct(input); err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid registration")
	}
	raw, err := s.api.Post(ctx, "auth/register", input)
	if err != nil {
		return User{}, err
	}
	return envelope.DecodeData[User](raw)
}

// Refresh swaps the refresh token for a new access token and updates
// the stored session in place.
func (s *Service) Refresh(ctx context.Context) error {
	current := s.sessions.Current()
	if current == nil || current.RefreshToken == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no refresh token available")
	}

	payload := map[string]string{"refreshToken": current.RefreshToken}
	raw, err := s.api.Post(ctx, "auth/refresh", payload)
	if err != nil {
		return err
	}
	resp, err := envelope.DecodeData[loginResponse](raw)
	if err != nil {
		return err
	}
	if resp.AccessToken == "" {
		return pkgerrors.New(pkgerrors.CodeDecode, "refresh response has no access token")
	}

	current.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		current.RefreshToken = resp.RefreshToken
	}
	current.ExpiresAt = time.Time{}
	if expiry, expErr := session.ExpiryFromToken(resp.AccessToken); expErr == nil {
		current.ExpiresAt = expiry
	}
	return s.sessions.Set(*current)
}

// Logout clears the local session. The server call is best effort; a
// dead backend must never trap the user in a logged-in client.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.api.Post(ctx, "auth/logout", nil); err != nil && s.log != nil {
		s.log.Warn(ctx, "server-side logout failed, clearing local session anyway")
	}
	return s.sessions.Clear()
}

// RequestPasswordReset asks the backend to mail a reset token.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid email")
	}
	_, err := s.api.Post(ctx, "auth/password-reset/request", map[string]string{"email": email})
	return err
}

// ConfirmPasswordReset completes a reset with the mailed token.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset token is required")
	}
	if err := s.validate.Var(newPassword, "required,min=8"); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid password")
	}
	payload := map[string]string{"token": token, "newPassword": newPassword}
	_, err := s.api.Post(ctx, "auth/password-reset/confirm", payload)
	return err
}
