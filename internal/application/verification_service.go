package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/pkg/helpers"
)

const (
	otpExpiryMinutes = 15
	otpExpiry        = otpExpiryMinutes * time.Minute
)

var (
	// ErrCodeMalformed rejects input that is not six digits after trimming.
	ErrCodeMalformed = errors.New("please enter the 6-digit code from your email")
	// ErrCodeInvalid covers no match and consumed codes alike.
	ErrCodeInvalid = errors.New("invalid or expired code, request a new one if needed")
	// ErrCodeExpired is a textually correct code past its expiry.
	ErrCodeExpired = errors.New("this code has expired, please request a new one")
	// ErrDeliveryFailed surfaces enqueue failures on explicit requests.
	ErrDeliveryFailed = errors.New("failed to send email, try again later")
)

func newOTP() (string, time.Time, error) {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return "", time.Time{}, err
	}
	return code, time.Now().Add(otpExpiry), nil
}

// VerificationService runs the two OTP flows: email verification and
// password reset. Consuming a code is atomic in the store, so a code is
// accepted at most once.
type VerificationService struct {
	Users  repository.UserRepository
	Mailer OTPMailer
	Logger *logrus.Logger
}

func NewVerificationService(users repository.UserRepository, m OTPMailer, logger *logrus.Logger) *VerificationService {
	return &VerificationService{Users: users, Mailer: m, Logger: logger}
}

// VerifyEmail consumes a verification code and marks the account verified.
func (s *VerificationService) VerifyEmail(ctx context.Context, rawCode string) (*entity.User, error) {
	code := helpers.NormalizeOTPCode(rawCode)
	if code == "" {
		return nil, ErrCodeMalformed
	}

	u, err := s.Users.ConsumeVerificationOTP(ctx, code, time.Now())
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	// Distinguish a stale-but-matching code from garbage for the message
	// only; neither path mutates anything.
	if holder, lookErr := s.Users.GetByVerificationOTP(ctx, code); lookErr == nil {
		if holder.VerifiedAt != nil {
			return holder, nil
		}
		if holder.VerificationExpiresAt != nil && holder.VerificationExpiresAt.Before(time.Now()) {
			return nil, ErrCodeExpired
		}
	}
	return nil, ErrCodeInvalid
}

// ResendVerification issues a fresh code for an unverified account. Unlike
// registration, a delivery failure here is surfaced to the caller.
func (s *VerificationService) ResendVerification(ctx context.Context, userID string) (alreadyVerified bool, err error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return false, ErrUserNotFound
	}
	if u.VerifiedAt != nil {
		return true, nil
	}

	code, err := s.storeCode(ctx, u.ID, s.Users.SetVerificationOTP)
	if err != nil {
		return false, err
	}
	if err := s.Mailer.SendOTP(ctx, TemplateVerifyOTP, u.Email, u.Name, code); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("resend verification email failed")
		}
		return false, ErrDeliveryFailed
	}
	return false, nil
}

// ForgotPassword issues a reset code. The caller must answer identically
// whether or not the account exists; a nil error with nothing sent is the
// unknown-email case.
func (s *VerificationService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	code, err := s.storeCode(ctx, u.ID, s.Users.SetResetOTP)
	if err != nil {
		return err
	}
	if err := s.Mailer.SendOTP(ctx, TemplateResetOTP, u.Email, u.Name, code); err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("email", u.Email).Error("reset email failed")
		}
		return ErrDeliveryFailed
	}
	return nil
}

// ResetPassword consumes a reset code and swaps in the new password hash in
// the same statement.
func (s *VerificationService) ResetPassword(ctx context.Context, rawCode, newPassword string) (*entity.User, error) {
	code := helpers.NormalizeOTPCode(rawCode)
	if code == "" {
		return nil, ErrCodeMalformed
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	u, err := s.Users.ConsumeResetOTP(ctx, code, hash, time.Now())
	if err == nil {
		return u, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCodeInvalid
	}
	return nil, err
}

// storeCode persists a fresh OTP via set, regenerating on a unique-index
// collision with another user's live code.
func (s *VerificationService) storeCode(ctx context.Context, userID string, set func(context.Context, string, string, time.Time) error) (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		code, expiresAt, err := newOTP()
		if err != nil {
			return "", err
		}
		err = set(ctx, userID, code, expiresAt)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return "", err
		}
	}
	return "", repository.ErrConflict
}
