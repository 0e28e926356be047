package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/pkg/helpers"
)

var (
	// ErrInvalidCredentials is the single error for unknown email and wrong
	// password, so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")

	// ErrCodeIssue covers the unlikely case where every generated OTP
	// collided with a live one.
	ErrCodeIssue = errors.New("could not issue a verification code")
)

// AuthService handles registration, login and token issuance.
type AuthService struct {
	Users  repository.UserRepository
	JWT    *helpers.JWTManager
	Mailer OTPMailer
	Logger *logrus.Logger
}

func NewAuthService(users repository.UserRepository, jwt *helpers.JWTManager, m OTPMailer, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Mailer: m, Logger: logger}
}

// Register creates the account with a pending verification OTP and returns
// a bearer token. OTP delivery is best-effort here: a failed email never
// rolls back the committed registration, the user can resend from the UI.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*entity.User, string, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	var u *entity.User
	// A fresh code can collide with another user's live code on the unique
	// index; regenerate and retry.
	for attempt := 0; attempt < 3; attempt++ {
		code, expiresAt, err := newOTP()
		if err != nil {
			return nil, "", err
		}
		u = &entity.User{
			Email:                 email,
			Password:              hash,
			Name:                  name,
			Role:                  entity.RoleUser,
			VerificationToken:     &code,
			VerificationExpiresAt: &expiresAt,
		}
		err = s.Users.Create(ctx, u)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrConflict) {
			// Email uniqueness and code uniqueness share the error; a taken
			// email will keep conflicting, so look it up once.
			if _, lookErr := s.Users.GetByEmail(ctx, email); lookErr == nil {
				return nil, "", ErrEmailTaken
			}
			continue
		}
		return nil, "", err
	}
	if u.ID == "" {
		return nil, "", ErrCodeIssue
	}

	if err := s.Mailer.SendOTP(ctx, TemplateVerifyOTP, u.Email, u.Name, *u.VerificationToken); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Warn("verification email failed at registration")
	}

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login validates credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate resolves a bearer token to a live user row.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
