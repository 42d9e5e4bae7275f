package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dani-Bcn/tareas-de-casa/internal/database"
	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
	"github.com/Dani-Bcn/tareas-de-casa/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	mux     *http.ServeMux
	users   *store.UserStore
	tasks   *store.TaskStore
	rewards *store.RewardStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := store.NewUserStore(db)
	tasks := store.NewTaskStore(db)
	rewards := store.NewRewardStore(db)

	authH := NewAuthHandler(users, logger)
	childH := NewChildHandler(users, logger)
	taskH := NewTaskHandler(tasks, users, logger)
	rewardH := NewRewardHandler(rewards, users, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.HandleFunc("POST /api/auth/register", authH.Register)
	mux.HandleFunc("GET /api/users/children", childH.List)
	mux.HandleFunc("POST /api/users/children", childH.Create)
	mux.HandleFunc("GET /api/tasks", taskH.List)
	mux.HandleFunc("POST /api/tasks", taskH.Create)
	mux.HandleFunc("PUT /api/tasks/{id}", taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskH.Delete)
	mux.HandleFunc("GET /api/rewards", rewardH.List)
	mux.HandleFunc("POST /api/rewards", rewardH.Create)
	mux.HandleFunc("PUT /api/rewards/{id}", rewardH.Claim)
	mux.HandleFunc("DELETE /api/rewards/{id}", rewardH.Delete)

	return &testEnv{mux: mux, users: users, tasks: tasks, rewards: rewards}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	return body.Error
}

// seedParent and seedChild go through the stores directly with a cheap
// hash so tests don't pay full bcrypt cost per fixture.
func (e *testEnv) seedParent(t *testing.T, name, email, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	parent, err := e.users.CreateParent(name, email, string(hash))
	if err != nil {
		t.Fatalf("seed parent: %v", err)
	}
	return parent
}

func (e *testEnv) seedChild(t *testing.T, name, username, password string, parentID int64) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	birth := time.Now().AddDate(-10, 0, 0)
	child, err := e.users.CreateChild(name, username, string(hash), birth, "", parentID)
	if err != nil {
		t.Fatalf("seed child: %v", err)
	}
	return child
}
