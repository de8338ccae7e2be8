package auth

import (
	"context"
	"errors"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

var loginPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,64}$`)

// UserStore is the user persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	CreateFirstAdmin(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uint) (*entities.User, error)
	GetByLogin(ctx context.Context, login string) (*entities.User, error)
	LoginTaken(ctx context.Context, login string, excludeID uint) (bool, error)
	List(ctx context.Context, offset, limit int) ([]entities.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user *entities.User) error
	RecordFailedLogin(ctx context.Context, userID uint, count int, since time.Time, lockedUntil *time.Time) error
	RecordSuccessfulLogin(ctx context.Context, userID uint, at time.Time) error
	DeleteWithData(ctx context.Context, id uint) ([]string, error)
}

// Service handles authentication and user management.
type Service struct {
	users     UserStore
	tokens    *JWTManager
	config    config.Auth
	policy    LockoutPolicy
	addresses *addressThrottle
	validator *validation.Validator
	now       func() time.Time
}

// NewService creates a new authentication service.
func NewService(users UserStore, tokens *JWTManager, cfg config.Auth) *Service {
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = 12
	}
	policy := PolicyFromConfig(cfg)
	return &Service{
		users:     users,
		tokens:    tokens,
		config:    cfg,
		policy:    policy,
		addresses: newAddressThrottle(policy),
		validator: validation.New(),
		now:       time.Now,
	}
}

type RegisterInput struct {
	Login    string `json:"login" form:"login" validate:"required"`
	Name     string `json:"name" form:"name" validate:"max=255"`
	Password string `json:"password" form:"password" validate:"required"`
}

type CreateUserInput struct {
	Login    string `json:"login" validate:"required"`
	Name     string `json:"name" validate:"max=255"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Login    *string `json:"login,omitempty"`
	Name     *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

// Register creates a self-service account. The very first account becomes admin.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entities.User, error) {
	user, err := s.buildUser(ctx, in.Login, in.Name, in.Password, in)
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateFirstAdmin(ctx, user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}
	log.Printf("Registered user %s (role %s)", user.Login, user.Role)
	return user, nil
}

// CreateUser is the admin path for adding accounts.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*entities.User, error) {
	user, err := s.buildUser(ctx, in.Login, in.Name, in.Password, in)
	if err != nil {
		return nil, err
	}
	user.Role = entities.UserRoleMember
	if in.IsAdmin {
		user.Role = entities.UserRoleAdmin
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Internal("failed to create user", err)
	}
	return user, nil
}

func (s *Service) buildUser(ctx context.Context, login, name, password string, input any) (*entities.User, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	login = strings.TrimSpace(login)
	if err := checkLogin(login); err != nil {
		return nil, err
	}
	if err := s.ensureLoginFree(ctx, login, 0); err != nil {
		return nil, err
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = login
	}
	return &entities.User{Login: login, Name: strings.TrimSpace(name), PasswordHash: hash}, nil
}

// LoginAttempt is one set of credentials presented from ClientIP.
type LoginAttempt struct {
	Login    string
	Password string
	ClientIP string
}

// Authenticate validates credentials and returns the user.
//
// Failures against an existing account count towards that account's lockout.
// Failures for logins that match no account count towards the client
// address instead. Either lock yields a *LockoutError, including on the
// attempt that triggers it.
func (s *Service) Authenticate(ctx context.Context, attempt LoginAttempt) (*entities.User, error) {
	now := s.now()
	if until := s.addresses.lockedUntil(attempt.ClientIP, now); !until.IsZero() {
		return nil, &LockoutError{Scope: LockoutAddress, Until: until}
	}

	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(attempt.Login))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to find user", err)
		}
		if streak := s.addresses.fail(attempt.ClientIP, now); streak.lockedAt(now) {
			log.Printf("Throttling logins from %s until %s", attempt.ClientIP, streak.lockedUntil.Format(time.RFC3339))
			return nil, &LockoutError{Scope: LockoutAddress, Until: streak.lockedUntil}
		}
		return nil, apperr.Unauthorizedf("invalid login or password")
	}

	if user.IsLocked(now) {
		return nil, &LockoutError{Scope: LockoutAccount, Until: *user.LockedUntil}
	}

	if err := CheckPassword(attempt.Password, user.PasswordHash); err != nil {
		if streak := s.recordFailedLogin(ctx, user, now); streak.lockedAt(now) {
			return nil, &LockoutError{Scope: LockoutAccount, Until: streak.lockedUntil}
		}
		return nil, apperr.Unauthorizedf("invalid login or password")
	}

	if err := s.users.RecordSuccessfulLogin(ctx, user.ID, now.UTC()); err != nil {
		log.Printf("Failed to record login for user %d: %v", user.ID, err)
	}
	return user, nil
}

func (s *Service) recordFailedLogin(ctx context.Context, user *entities.User, now time.Time) failureStreak {
	streak := failureStreak{count: user.FailedLoginCount}
	if user.FailedLoginSince != nil {
		streak.since = *user.FailedLoginSince
	}
	streak = s.policy.fail(streak, now)

	var lockedUntil *time.Time
	if streak.lockedAt(now) {
		until := streak.lockedUntil.UTC()
		lockedUntil = &until
		log.Printf("Locking user %d until %s after %d failed logins", user.ID, until.Format(time.RFC3339), streak.count)
	}
	if err := s.users.RecordFailedLogin(ctx, user.ID, streak.count, streak.since.UTC(), lockedUntil); err != nil {
		log.Printf("Failed to record failed login for user %d: %v", user.ID, err)
	}
	return streak
}

// Token is what login and register hand back to clients.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (s *Service) IssueToken(user *entities.User) (*Token, error) {
	signed, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to sign token", err)
	}
	return &Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// UserFromToken validates a bearer token and loads its user. Tokens for
// deleted users are rejected.
func (s *Service) UserFromToken(ctx context.Context, token string) (*entities.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperr.Unauthorizedf("%v", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperr.Unauthorizedf("%v", err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorizedf("user no longer exists")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id uint) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %d not found", id)
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

// GetUserByLogin matches the login case-insensitively.
func (s *Service) GetUserByLogin(ctx context.Context, login string) (*entities.User, error) {
	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %q not found", login)
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, offset, limit int) ([]entities.User, error) {
	users, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uint, in UpdateUserInput) (*entities.User, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Login != nil {
		login := strings.TrimSpace(*in.Login)
		if err := checkLogin(login); err != nil {
			return nil, err
		}
		if err := s.ensureLoginFree(ctx, login, id); err != nil {
			return nil, err
		}
		user.Login = login
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.IsAdmin != nil {
		user.Role = entities.UserRoleMember
		if *in.IsAdmin {
			user.Role = entities.UserRoleAdmin
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperr.Internal("failed to update user", err)
	}
	return user, nil
}

// DeleteUser removes the account, its reading log and its reports.
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	files, err := s.users.DeleteWithData(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user %d not found", id)
		}
		return apperr.Internal("failed to delete user", err)
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove report file %s: %v", path, err)
		}
	}
	return nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, apperr.Internal("failed to count users", err)
	}
	return count > 0, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := HashPassword(password, s.config.BcryptCost)
	switch {
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		return "", apperr.Validationf("%v", err).WithField("password", err.Error())
	case err != nil:
		return "", apperr.Internal("failed to hash password", err)
	}
	return hash, nil
}

func (s *Service) ensureLoginFree(ctx context.Context, login string, excludeID uint) error {
	taken, err := s.users.LoginTaken(ctx, login, excludeID)
	if err != nil {
		return apperr.Internal("failed to check login", err)
	}
	if taken {
		return apperr.Conflictf("login %q is already registered", login).WithField("login", "already registered")
	}
	return nil
}

func checkLogin(login string) error {
	if !loginPattern.MatchString(login) {
		return apperr.Validationf("invalid login").
			WithField("login", "must be 3-64 characters: letters, digits, underscore, dot or hyphen")
	}
	return nil
}
