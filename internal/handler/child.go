package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
	"github.com/Dani-Bcn/tareas-de-casa/internal/store"
	"github.com/Dani-Bcn/tareas-de-casa/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

const birthDateLayout = "2006-01-02"

type ChildHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewChildHandler(us *store.UserStore, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{users: us, logger: logger}
}

// List returns the parent's children, ordered by name.
func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	parentIDStr := r.URL.Query().Get("parentId")
	if parentIDStr == "" {
		writeError(w, http.StatusBadRequest, "parentId is required")
		return
	}
	parentID, err := strconv.ParseInt(parentIDStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid parentId")
		return
	}

	parent, err := h.users.GetByID(parentID)
	if err != nil {
		h.logger.Error("get parent", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if parent == nil || parent.Role != model.RoleParent {
		writeError(w, http.StatusNotFound, "parent not found")
		return
	}

	children, err := h.users.ListChildren(parentID)
	if err != nil {
		h.logger.Error("list children", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if children == nil {
		children = []model.User{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"children": children})
}

// Create adds a child account to a parent. Business-rule checks run in a
// fixed order, each naming its first violated rule: password strength,
// birth date, parent existence, identifier collision.
func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		BirthDate string `json:"birthDate"`
		Gender    string `json:"gender"`
		ParentID  int64  `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	if req.Name == "" || req.Username == "" || req.Password == "" || req.BirthDate == "" || req.ParentID == 0 {
		writeError(w, http.StatusBadRequest, "name, username, password, birthDate and parentId are required")
		return
	}

	if err := validate.Password(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "birthDate must be a date in YYYY-MM-DD format")
		return
	}
	if err := validate.BirthDate(birthDate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
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

	// Checked against usernames AND emails so a child username can never
	// shadow a parent login.
	exists, err := h.users.IdentifierExists(req.Username)
	if err != nil {
		h.logger.Error("check username", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "username is already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	child, err := h.users.CreateChild(req.Name, req.Username, string(hash), birthDate, req.Gender, req.ParentID)
	if err != nil {
		h.logger.Error("create child", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "child added successfully",
		"child":   child,
	})
}
