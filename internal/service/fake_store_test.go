package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/voc-auth/internal/model"
)

// memoryUsers is a UserStore with the same uniqueness and conditional update guarantees as Postgres.
type memoryUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	// block makes every call wait for ctx to end.
	block bool
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[uuid.UUID]model.User)}
}

func (s *memoryUsers) wait(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *memoryUsers) findByEmail(email string) (model.User, bool) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *memoryUsers) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if err := s.wait(ctx); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.findByEmail(email); ok {
		return u, nil
	}
	return model.User{}, model.ErrNotFound
}

func (s *memoryUsers) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	if err := s.wait(ctx); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return model.User{}, model.ErrNotFound
}

func (s *memoryUsers) Create(ctx context.Context, user model.User) (model.User, error) {
	if err := s.wait(ctx); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findByEmail(user.Email); ok {
		return model.User{}, model.NewConflictError("email in use", nil)
	}
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = user
	return user, nil
}

func (s *memoryUsers) update(id uuid.UUID, fn func(u *model.User) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, nil
	}
	if err := fn(&u); err != nil {
		return false, err
	}
	s.users[id] = u
	return true, nil
}

func (s *memoryUsers) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	return s.update(id, func(u *model.User) error {
		u.PasswordHash = passwordHash
		return nil
	})
}

func (s *memoryUsers) UpdateCredentials(ctx context.Context, id uuid.UUID, name, email, passwordHash string) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	return s.update(id, func(u *model.User) error {
		if other, ok := s.findByEmail(email); ok && other.ID != id {
			return model.NewConflictError("email in use", nil)
		}
		u.Name, u.Email, u.PasswordHash = name, email, passwordHash
		return nil
	})
}

func (s *memoryUsers) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	return s.update(id, func(u *model.User) error {
		u.ResetTokenHash, u.ResetTokenExpiresAt = &tokenHash, &expiresAt
		return nil
	})
}

func (s *memoryUsers) ClearResetTokenIfMatches(ctx context.Context, email, tokenHash, newPasswordHash string, now time.Time) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.findByEmail(email)
	if !ok || u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash || !u.ResetTokenExpiresAt.After(now) {
		return false, nil
	}
	u.PasswordHash = newPasswordHash
	u.ResetTokenHash, u.ResetTokenExpiresAt = nil, nil
	s.users[u.ID] = u
	return true, nil
}

func (s *memoryUsers) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, u := range s.users {
		if u.ResetTokenExpiresAt != nil && !u.ResetTokenExpiresAt.After(now) {
			u.ResetTokenHash, u.ResetTokenExpiresAt = nil, nil
			s.users[id] = u
			n++
		}
	}
	return n, nil
}

// memoryNotifications records in-app notifications.
type memoryNotifications struct {
	mu    sync.Mutex
	items []model.Notification
	err   error
}

func (s *memoryNotifications) Create(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	n.ID = int64(len(s.items) + 1)
	s.items = append(s.items, n)
	return nil
}

func (s *memoryNotifications) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, 0)
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].UserID == userID {
			out = append(out, s.items[i])
		}
	}
	return out, nil
}

func (s *memoryNotifications) MarkRead(_ context.Context, id int64, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.items[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

// outbox captures sent email.
type outbox struct {
	mu   sync.Mutex
	sent []model.Email
	err  error
}

func (o *outbox) Send(_ context.Context, email model.Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, email)
	return nil
}

func (o *outbox) last() model.Email {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return model.Email{}
	}
	return o.sent[len(o.sent)-1]
}
