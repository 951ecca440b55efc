package handler

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/clipchat/internal/database"
	"github.com/dukerupert/clipchat/internal/model"
	"github.com/dukerupert/clipchat/internal/store"
)

func setupHandlerDB(t *testing.T) (*sql.DB, *store.UserStore, *store.SessionStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, store.NewUserStore(db), store.NewSessionStore(db)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}

func TestRegister(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(`{"username":"alice","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var u model.User
	json.NewDecoder(rec.Body).Decode(&u)
	if u.Plan != model.PlanFree {
		t.Errorf("plan = %q, want free", u.Plan)
	}
	if u.AttemptsRemaining != model.FreeAttempts {
		t.Errorf("attempts = %d, want %d", u.AttemptsRemaining, model.FreeAttempts)
	}

	// A session cookie is issued on registration.
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie")
	}
}

func TestRegisterValidation(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	for _, body := range []string{`{"username":"","password":"x"}`, `{"username":"  ","password":"x"}`, `{"username":"a","password":""}`} {
		req := httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Register(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Username and password are required" {
			t.Errorf("body %s: error = %q", body, msg)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	us.Create("alice", "secret")

	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(`{"username":"alice","password":"other"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "Username is already taken" {
		t.Errorf("error = %q", msg)
	}
}

func TestLogin(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	us.Create("alice", "secret")

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var u model.User
	json.NewDecoder(rec.Body).Decode(&u)
	if u.Username != "alice" {
		t.Errorf("username = %q, want alice", u.Username)
	}
}

func TestLoginGenericFailure(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	us.Create("alice", "secret")

	// Wrong password and unknown user produce the same message.
	for _, body := range []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"secret"}`,
	} {
		req := httptest.NewRequest("POST", "/api/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("body %s: status = %d, want 401", body, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "Invalid username or password" {
			t.Errorf("body %s: error = %q", body, msg)
		}
	}
}

func TestLoginBackfillsPlan(t *testing.T) {
	db, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	u, _ := us.Create("alice", "secret")
	// Simulate a record that predates plans.
	if _, err := db.Exec(`UPDATE users SET plan = '' WHERE id = ?`, u.ID); err != nil {
		t.Fatalf("clear plan: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/login", strings.NewReader(`{"username":"alice","password":"secret"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got model.User
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Plan != model.PlanFree {
		t.Errorf("response plan = %q, want free", got.Plan)
	}

	stored, _ := us.GetByID(u.ID)
	if stored.Plan != model.PlanFree {
		t.Errorf("stored plan = %q, want free", stored.Plan)
	}
}

func TestLogout(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	u, _ := us.Create("alice", "secret")
	sess, _ := ss.Create(u.ID, false)

	req := httptest.NewRequest("POST", "/api/logout", nil)
	req = req.WithContext(WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got, _ := ss.GetByToken(sess.Token); got != nil {
		t.Error("session should be deleted on logout")
	}
}

func TestMe(t *testing.T) {
	_, us, ss := setupHandlerDB(t)
	h := NewAuthHandler(us, ss, slog.Default())

	u, _ := us.Create("alice", "secret")
	sess, _ := ss.Create(u.ID, false)

	req := httptest.NewRequest("GET", "/api/me", nil)
	req = req.WithContext(WithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got model.User
	json.NewDecoder(rec.Body).Decode(&got)
	if got.ID != u.ID {
		t.Errorf("id = %q, want %q", got.ID, u.ID)
	}
}
