package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
)

// fakeUserRepo is an in-memory UserRepository with the same uniqueness rules
// as the Postgres schema: email, verification token and reset token.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User // by id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrConflict
		}
		if u.VerificationToken != nil && existing.VerificationToken != nil &&
			*existing.VerificationToken == *u.VerificationToken {
			return repository.ErrConflict
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.CreatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) SetVerificationOTP(_ context.Context, userID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id != userID && u.VerificationToken != nil && *u.VerificationToken == code {
			return repository.ErrConflict
		}
	}
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.VerificationToken = &code
	u.VerificationExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ConsumeVerificationOTP(_ context.Context, code string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.VerificationToken != nil && *u.VerificationToken == code {
			if u.VerificationExpiresAt == nil || !u.VerificationExpiresAt.After(now) {
				return nil, repository.ErrNotFound
			}
			verifiedAt := now
			u.VerifiedAt = &verifiedAt
			u.VerificationToken = nil
			u.VerificationExpiresAt = nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByVerificationOTP(_ context.Context, code string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.VerificationToken != nil && *u.VerificationToken == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SetResetOTP(_ context.Context, userID, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if id != userID && u.ResetToken != nil && *u.ResetToken == code {
			return repository.ErrConflict
		}
	}
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.ResetToken = &code
	u.ResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ConsumeResetOTP(_ context.Context, code, newPasswordHash string, now time.Time) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == code {
			if u.ResetExpiresAt == nil || !u.ResetExpiresAt.After(now) {
				return nil, repository.ErrNotFound
			}
			u.Password = newPasswordHash
			u.ResetToken = nil
			u.ResetExpiresAt = nil
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, userID, role string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) CountAll(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeMailer records sent codes instead of queueing them.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentOTP
	fail error
}

type sentOTP struct {
	Template string
	To       string
	Code     string
}

func (m *fakeMailer) SendOTP(_ context.Context, template, to, _, code string) error {
	if m.fail != nil {
		return m.fail
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentOTP{Template: template, To: to, Code: code})
	return nil
}

func (m *fakeMailer) last() (sentOTP, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentOTP{}, false
	}
	return m.sent[len(m.sent)-1], true
}

var _ OTPMailer = (*fakeMailer)(nil)
