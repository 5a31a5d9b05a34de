package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"eventdesk/internal/config"
	"eventdesk/internal/ids"
	"eventdesk/internal/models"
	"eventdesk/internal/repository"
	"eventdesk/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrProviderFailure    = errors.New("federated sign-in failed")
)

// UserStore is the slice of the user repository the auth flows need.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	UpsertFederated(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByDevice(ctx context.Context, userID string, deviceID string) error
}

// FederatedIdentity is what a provider token resolves to.
type FederatedIdentity struct {
	Subject string
	Email   string
}

// ProviderVerifier checks a federated provider's ID token.
type ProviderVerifier interface {
	Verify(ctx context.Context, idToken string) (FederatedIdentity, error)
}

// RoleAssigner decides the role stored for a new account. The default,
// ClientAssignedRole, trusts whatever the client asked for. That
// reproduces the original behavior and is a known authorization gap:
// swap this function for a server-trusted policy without touching any
// caller.
type RoleAssigner func(requested models.UserRole) models.UserRole

func ClientAssignedRole(requested models.UserRole) models.UserRole {
	if requested == models.UserRoleAdmin {
		return models.UserRoleAdmin
	}
	return models.UserRoleUser
}

type AuthService struct {
	users      UserStore
	sessions   SessionStore
	verifier   ProviderVerifier
	AssignRole RoleAssigner
	cfg        *config.AppConfig
	log        zerolog.Logger
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	verifier ProviderVerifier,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		verifier:   verifier,
		AssignRole: ClientAssignedRole,
		cfg:        cfg,
		log:        log,
	}
}

type DeviceInfo struct {
	DeviceID   string
	DeviceName string
	IPAddress  string
	UserAgent  string
}

type SignUpInput struct {
	Email    string
	Password string
	Role     models.UserRole
	Device   DeviceInfo
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
	DeviceID     string
}

// SignUp registers an email/password account and stores the requested
// role alongside it, then opens a session.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return AuthResult{}, fmt.Errorf("malformed email")
	}
	if len(input.Password) < 8 {
		return AuthResult{}, ErrWeakPassword
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         s.AssignRole(input.Role),
		Provider:     models.ProviderPassword,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	return s.openSession(ctx, user, input.Device)
}

type LoginInput struct {
	Email    string
	Password string
	Device   DeviceInfo
}

// Login authenticates against the stored credentials. The role comes
// from the user record written at signup; accounts predating the role
// column fall back to "user" via the column default.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if user.Role == "" {
		user.Role = models.UserRoleUser
	}

	return s.openSession(ctx, user, input.Device)
}

type FederatedLoginInput struct {
	IDToken string
	Role    models.UserRole
	Device  DeviceInfo
}

// LoginWithProvider resolves a federated ID token and upserts the user
// record, overwriting the stored role with the requested one the same
// way the signup flow does.
func (s *AuthService) LoginWithProvider(ctx context.Context, input FederatedLoginInput) (AuthResult, error) {
	identity, err := s.verifier.Verify(ctx, input.IDToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrProviderFailure, err)
	}

	email := strings.TrimSpace(strings.ToLower(identity.Email))
	if email == "" {
		return AuthResult{}, fmt.Errorf("%w: provider returned no email", ErrProviderFailure)
	}

	user, err := s.users.UpsertFederated(ctx, models.User{
		ID:       ids.New(),
		Email:    email,
		Role:     s.AssignRole(input.Role),
		Provider: models.ProviderGoogle,
	})
	if err != nil {
		return AuthResult{}, err
	}

	return s.openSession(ctx, user, input.Device)
}

func (s *AuthService) openSession(ctx context.Context, user models.User, device DeviceInfo) (AuthResult, error) {
	deviceID := device.DeviceID
	if deviceID == "" {
		deviceID = ids.New()
	}
	deviceName := device.DeviceName
	if deviceName == "" {
		deviceName = "Unknown Device"
	}

	refreshToken, refreshHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		DeviceID:         deviceID,
		DeviceName:       deviceName,
		RefreshTokenHash: refreshHash,
		IPAddress:        device.IPAddress,
		UserAgent:        device.UserAgent,
		ExpiresAt:        time.Now().Add(s.cfg.Security.JWTRefreshTTL),
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		deviceID,
		user.Email,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, err
	}

	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("enforce session limit failed")
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		DeviceID:     deviceID,
	}, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.Security.MaxSessions)
}

type RefreshInput struct {
	UserID       string
	RefreshToken string
	DeviceID     string
}

func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (AuthResult, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshHash := security.HashRefreshToken(input.RefreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, input.UserID, refreshHash)
	if err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	if session.DeviceID != input.DeviceID {
		return AuthResult{}, ErrInvalidCredentials
	}

	if session.ExpiresAt.Before(time.Now()) {
		_ = s.sessions.DeleteByID(ctx, session.ID)
		return AuthResult{}, ErrInvalidCredentials
	}

	refreshToken, newHash, err := security.GenerateRefreshToken(64)
	if err != nil {
		return AuthResult{}, err
	}

	session.RefreshTokenHash = newHash
	session.ExpiresAt = time.Now().Add(s.cfg.Security.JWTRefreshTTL)

	if err := s.sessions.Create(ctx, session); err != nil {
		return AuthResult{}, err
	}

	accessToken, err := security.GenerateAccessToken(
		s.cfg.Security.JWTAccessSecret,
		user.ID,
		session.ID,
		session.DeviceID,
		user.Email,
		string(user.Role),
		s.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		DeviceID:     session.DeviceID,
	}, nil
}

// Logout drops the device's session. Logging out twice is fine.
func (s *AuthService) Logout(ctx context.Context, userID string, deviceID string) error {
	return s.sessions.DeleteByDevice(ctx, userID, deviceID)
}
