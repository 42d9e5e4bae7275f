package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
)

func (e *testEnv) getPoints(t *testing.T, childID int64) int {
	t.Helper()
	u, err := e.users.GetByID(childID)
	if err != nil || u == nil {
		t.Fatalf("get child %d: %v", childID, err)
	}
	return u.Points
}

func TestCreateTaskDefaults(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")
	child := env.seedChild(t, "Leo", "leo2015", "kid123!", parent.ID)

	// Points omitted: defaults to 10
	rec := env.do(t, "POST", "/api/tasks", map[string]any{
		"title":    "Make bed",
		"childId":  child.ID,
		"parentId": parent.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Task model.Task `json:"task"`
	}
	decodeBody(t, rec, &body)
	if body.Task.Points != 10 {
		t.Errorf("points = %d, want default 10", body.Task.Points)
	}
	if body.Task.Completed {
		t.Error("new task must start incomplete")
	}
	if body.Task.Child == nil || body.Task.Child.ID != child.ID {
		t.Errorf("child ref = %v", body.Task.Child)
	}

	// Explicit points are kept
	rec = env.do(t, "POST", "/api/tasks", map[string]any{
		"title":    "Dishes",
		"points":   25,
		"childId":  child.ID,
		"parentId": parent.ID,
	})
	decodeBody(t, rec, &body)
	if body.Task.Points != 25 {
		t.Errorf("points = %d, want 25", body.Task.Points)
	}
}

func TestCreateTaskOwnership(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")
	other := env.seedParent(t, "Pau", "pau@example.com", "abc123!")
	child := env.seedChild(t, "Leo", "leo2015", "kid123!", parent.ID)

	// Unknown parent
	rec := env.do(t, "POST", "/api/tasks", map[string]any{
		"title": "X", "childId": child.ID, "parentId": 999,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown parent: status = %d, want 404", rec.Code)
	}

	// Child belongs to a different parent
	rec = env.do(t, "POST", "/api/tasks", map[string]any{
		"title": "X", "childId": child.ID, "parentId": other.ID,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign child: status = %d, want 404", rec.Code)
	}
}

func TestTaskCompleteFlow(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")
	child := env.seedChild(t, "Leo", "leo2015", "kid123!", parent.ID)

	task, err := env.tasks.Create("Chores", "", 15, child.ID, parent.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	// Child completes its own task
	rec := env.do(t, "PUT", fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"completed": true,
		"userId":    child.ID,
		"role":      "CHILD",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := env.getPoints(t, child.ID); got != 15 {
		t.Errorf("points = %d, want 15", got)
	}

	// Parent deletes the completed task, points come back off
	rec = env.do(t, "DELETE", fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"userId": parent.ID,
		"role":   "PARENT",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := env.getPoints(t, child.ID); got != 0 {
		t.Errorf("points after delete = %d, want 0", got)
	}
}

func TestTaskUpdateAuthorization(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")
	child := env.seedChild(t, "Leo", "leo2015", "kid123!", parent.ID)
	stranger := env.seedParent(t, "Pau", "pau@example.com", "abc123!")
	otherChild := env.seedChild(t, "Mar", "mar1", "kid123!", stranger.ID)

	task, _ := env.tasks.Create("Chores", "", 10, child.ID, parent.ID)

	tests := []struct {
		name   string
		userID int64
		role   string
		want   int
	}{
		{"other parent", stranger.ID, "PARENT", http.StatusForbidden},
		{"other child", otherChild.ID, "CHILD", http.StatusForbidden},
		{"own parent", parent.ID, "PARENT", http.StatusOK},
		{"own child", child.ID, "CHILD", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, "PUT", fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
				"completed": false,
				"userId":    tt.userID,
				"role":      tt.role,
			})
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestTaskDeleteRequiresOwningParent(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")
	child := env.seedChild(t, "Leo", "leo2015", "kid123!", parent.ID)
	stranger := env.seedParent(t, "Pau", "pau@example.com", "abc123!")

	task, _ := env.tasks.Create("Chores", "", 10, child.ID, parent.ID)

	// The assigned child cannot delete
	rec := env.do(t, "DELETE", fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"userId": child.ID,
		"role":   "CHILD",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("child delete: status = %d, want 403", rec.Code)
	}

	// Nor can another parent
	rec = env.do(t, "DELETE", fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{
		"userId": stranger.ID,
		"role":   "PARENT",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger delete: status = %d, want 403", rec.Code)
	}
}

func TestTaskNotFound(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")

	rec := env.do(t, "PUT", "/api/tasks/999", map[string]any{
		"completed": true, "userId": parent.ID, "role": "PARENT",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("update: status = %d, want 404", rec.Code)
	}

	rec = env.do(t, "DELETE", "/api/tasks/999", map[string]any{
		"userId": parent.ID, "role": "PARENT",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete: status = %d, want 404", rec.Code)
	}
}

func TestTaskListScoping(t *testing.T) {
	env := setupTestEnv(t)
	parent := env.seedParent(t, "Maria", "maria@example.com", "abc123!")
	child := env.seedChild(t, "Leo", "leo2015", "kid123!", parent.ID)
	env.tasks.Create("One", "", 10, child.ID, parent.ID)
	env.tasks.Create("Two", "", 10, child.ID, parent.ID)

	rec := env.do(t, "GET", fmt.Sprintf("/api/tasks?userId=%d&role=PARENT", parent.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Tasks []model.Task `json:"tasks"`
	}
	decodeBody(t, rec, &body)
	if len(body.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(body.Tasks))
	}
	if body.Tasks[0].Child == nil {
		t.Error("parent listing must include child ref")
	}

	rec = env.do(t, "GET", fmt.Sprintf("/api/tasks?userId=%d&role=CHILD", child.ID), nil)
	decodeBody(t, rec, &body)
	if len(body.Tasks) != 2 {
		t.Fatalf("expected 2 tasks for child, got %d", len(body.Tasks))
	}
	if body.Tasks[0].Parent == nil {
		t.Error("child listing must include parent ref")
	}

	// Missing params
	rec = env.do(t, "GET", "/api/tasks", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing params: status = %d, want 400", rec.Code)
	}

	// Unknown role
	rec = env.do(t, "GET", "/api/tasks?userId=1&role=ADMIN", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role: status = %d, want 400", rec.Code)
	}
}
