package store

import (
	"testing"
	"time"

	"github.com/dukerupert/clipchat/internal/database"
	"github.com/dukerupert/clipchat/internal/model"
)

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreateDefaults(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create("alice", "secret")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}
	if u.Plan != model.PlanFree {
		t.Errorf("plan = %q, want %q", u.Plan, model.PlanFree)
	}
	if u.AttemptsRemaining != model.FreeAttempts {
		t.Errorf("attempts = %d, want %d", u.AttemptsRemaining, model.FreeAttempts)
	}
	if u.SubscriptionDate != nil {
		t.Error("new user should have no subscription date")
	}
}

func TestUserDuplicateUsername(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice", "secret"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := us.Create("alice", "other"); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestUserGetByUsernameCaseSensitive(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("Alice", "secret"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	u, err := us.GetByUsername("Alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if u == nil {
		t.Fatal("expected user, got nil")
	}

	other, err := us.GetByUsername("alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if other != nil {
		t.Error("lookup should be case-sensitive")
	}
}

func TestUserGetMissing(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID("nope")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for missing user")
	}
}

func TestUserUpgrade(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("alice", "secret")
	at := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	if err := us.Upgrade(u.ID, model.PlanPro, model.ProAttempts, at); err != nil {
		t.Fatalf("upgrade: %v", err)
	}

	got, _ := us.GetByID(u.ID)
	if got.Plan != model.PlanPro {
		t.Errorf("plan = %q, want %q", got.Plan, model.PlanPro)
	}
	if got.AttemptsRemaining != model.ProAttempts {
		t.Errorf("attempts = %d, want %d", got.AttemptsRemaining, model.ProAttempts)
	}
	if got.SubscriptionDate == nil {
		t.Fatal("expected subscription date to be set")
	}
	if !got.SubscriptionDate.Equal(at) {
		t.Errorf("subscription date = %v, want %v", got.SubscriptionDate, at)
	}
}

func TestUserDecrementAttempts(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("alice", "secret")

	for i := 0; i < model.FreeAttempts; i++ {
		if err := us.DecrementAttempts(u.ID); err != nil {
			t.Fatalf("decrement %d: %v", i+1, err)
		}
	}

	got, _ := us.GetByID(u.ID)
	if got.AttemptsRemaining != 0 {
		t.Fatalf("attempts = %d, want 0", got.AttemptsRemaining)
	}

	// Further decrements stop at zero.
	if err := us.DecrementAttempts(u.ID); err != nil {
		t.Fatalf("decrement at zero: %v", err)
	}
	got, _ = us.GetByID(u.ID)
	if got.AttemptsRemaining != 0 {
		t.Errorf("attempts went negative: %d", got.AttemptsRemaining)
	}
}

func TestUserCountByPlan(t *testing.T) {
	us := setupUserTestDB(t)

	a, _ := us.Create("alice", "x")
	us.Create("bob", "x")
	us.Create("carol", "x")
	us.Upgrade(a.ID, model.PlanPro, model.ProAttempts, time.Now().UTC())

	total, err := us.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	byPlan, err := us.CountByPlan()
	if err != nil {
		t.Fatalf("count by plan: %v", err)
	}
	if byPlan[model.PlanFree] != 2 {
		t.Errorf("free = %d, want 2", byPlan[model.PlanFree])
	}
	if byPlan[model.PlanPro] != 1 {
		t.Errorf("pro = %d, want 1", byPlan[model.PlanPro])
	}
}

func TestUserDelete(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("alice", "secret")
	if err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := us.GetByID(u.ID)
	if got != nil {
		t.Error("expected user gone after delete")
	}
}
