package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mughouse/mughouse-server/internal/domain"
	"github.com/mughouse/mughouse-server/internal/store"
)

func makeUser(id, email string) *domain.User {
	u := &domain.User{
		Email:        email,
		DisplayName:  "Test User",
		PasswordHash: "$argon2id$stub",
		Role:         domain.RoleStaff,
	}
	u.ID = id
	u.InitTimestamps()
	return u
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeUser("user-1", "lan@mughouse.vn")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.CreateUser(ctx, makeUser("user-2", "lan@mughouse.vn")); err != store.ErrAlreadyExists {
		t.Errorf("duplicate email: got %v, want ErrAlreadyExists", err)
	}

	got, err := s.GetUserByEmail(ctx, "LAN@mughouse.vn")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "user-1" || got.Role != domain.RoleStaff {
		t.Errorf("round trip mismatch: %+v", got)
	}

	got.Role = domain.RoleAdmin
	got.Touch()
	if err := s.UpdateUser(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got2, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got2.IsAdmin() {
		t.Error("role update not persisted")
	}

	n, err := s.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountUsers = (%d, %v), want (1, nil)", n, err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, makeUser("user-1", "lan@mughouse.vn")); err != nil {
		t.Fatalf("create user: %v", err)
	}

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:               "sess-1",
		UserID:           "user-1",
		RefreshTokenHash: "hash-1",
		CreatedAt:        now,
		LastUsedAt:       now,
		ExpiresAt:        now.Add(time.Hour),
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "hash-1")
	if err != nil || got.ID != "sess-1" {
		t.Fatalf("get by token: (%+v, %v)", got, err)
	}

	// Rotate the refresh token.
	got.RefreshTokenHash = "hash-2"
	got.LastUsedAt = now.Add(time.Minute)
	if err := s.UpdateSession(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-1"); err != store.ErrNotFound {
		t.Errorf("old token still resolves: %v", err)
	}

	// Expired sessions are reaped.
	expired := &domain.Session{
		ID:               "sess-2",
		UserID:           "user-1",
		RefreshTokenHash: "hash-old",
		CreatedAt:        now.Add(-2 * time.Hour),
		LastUsedAt:       now.Add(-2 * time.Hour),
		ExpiresAt:        now.Add(-time.Hour),
	}
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil || n != 1 {
		t.Errorf("DeleteExpiredSessions = (%d, %v), want (1, nil)", n, err)
	}

	sessions, err := s.ListUserSessions(ctx, "user-1")
	if err != nil || len(sessions) != 1 {
		t.Fatalf("ListUserSessions = (%d, %v), want 1", len(sessions), err)
	}

	if err := s.DeleteAllUserSessions(ctx, "user-1"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, err := s.GetSession(ctx, "sess-1"); err != store.ErrNotFound {
		t.Errorf("session survived DeleteAllUserSessions: %v", err)
	}
}
