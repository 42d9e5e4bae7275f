package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
	"github.com/Dani-Bcn/tareas-de-casa/internal/store"
)

const defaultTaskPoints = 10

type TaskHandler struct {
	tasks  *store.TaskStore
	users  *store.UserStore
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, us *store.UserStore, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, users: us, logger: logger}
}

// parseUserRole reads the userId/role pair every scoped request carries.
func parseUserRole(userIDStr, roleStr string) (int64, model.Role, string) {
	if userIDStr == "" || roleStr == "" {
		return 0, "", "userId and role are required"
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, "", "invalid userId"
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return 0, "", "role must be PARENT or CHILD"
	}
	return userID, role, ""
}

// List returns the caller's tasks: everything a parent created, joined
// with each assignee, or everything assigned to a child, joined with each
// creator. Newest first either way.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, role, errMsg := parseUserRole(q.Get("userId"), q.Get("role"))
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	var tasks []model.Task
	var err error
	switch role {
	case model.RoleParent:
		tasks, err = h.tasks.ListByParent(userID)
	case model.RoleChild:
		tasks, err = h.tasks.ListByChild(userID)
	}
	if err != nil {
		h.logger.Error("list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Points      *int   `json:"points"`
		ChildID     int64  `json:"childId"`
		ParentID    int64  `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.ChildID == 0 || req.ParentID == 0 {
		writeError(w, http.StatusBadRequest, "title, childId and parentId are required")
		return
	}

	points := defaultTaskPoints
	if req.Points != nil {
		points = *req.Points
	}
	if points < 0 {
		writeError(w, http.StatusBadRequest, "points must be >= 0")
		return
	}

	parent, err := h.users.GetByID(req.ParentID)
	if err != nil {
		h.logger.Error("get parent", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if parent == nil || parent.Role != model.RoleParent {
		writeError(w, http.StatusNotFound, "parent not found")
		return
	}

	child, err := h.users.GetChildOfParent(req.ChildID, req.ParentID)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found or does not belong to this parent")
		return
	}

	task, err := h.tasks.Create(req.Title, req.Description, points, req.ChildID, req.ParentID)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"task": task})
}

// Update flips the completed flag. The point delta and the flag change are
// applied together by the store; a no-op transition moves no points.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Completed bool   `json:"completed"`
		UserID    int64  `json:"userId"`
		Role      string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == 0 || req.Role == "" {
		writeError(w, http.StatusBadRequest, "userId and role are required")
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "role must be PARENT or CHILD")
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	allowed := false
	switch role {
	case model.RoleParent:
		allowed = task.ParentID == req.UserID
	case model.RoleChild:
		allowed = task.ChildID == req.UserID
	}
	if !allowed {
		writeError(w, http.StatusForbidden, "not authorized to modify this task")
		return
	}

	updated, err := h.tasks.SetCompleted(id, req.Completed)
	if err != nil {
		h.logger.Error("update task", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"task": updated})
}

// Delete removes a task; only the creating parent may do it. Any applied
// point credit is reversed by the store as part of the delete.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID int64  `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == 0 || req.Role == "" {
		writeError(w, http.StatusBadRequest, "userId and role are required")
		return
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "role must be PARENT or CHILD")
		return
	}

	task, err := h.tasks.GetByID(id)
	if err != nil {
		h.logger.Error("get task", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if role != model.RoleParent || task.ParentID != req.UserID {
		writeError(w, http.StatusForbidden, "not authorized to delete this task")
		return
	}

	if err := h.tasks.Delete(id); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "task deleted successfully"})
}
