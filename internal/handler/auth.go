package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
	"github.com/Dani-Bcn/tareas-de-casa/internal/store"
	"github.com/Dani-Bcn/tareas-de-casa/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	users  *store.UserStore
	logger *slog.Logger
}

func NewAuthHandler(us *store.UserStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: us, logger: logger}
}

// Login checks credentials against the stored hash. The failure message
// is the same whether the identifier is unknown or the password is wrong,
// so callers cannot enumerate accounts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
		LoginType  string `json:"loginType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" || req.LoginType == "" {
		writeError(w, http.StatusBadRequest, "identifier, password and loginType are required")
		return
	}

	var user *model.User
	var err error
	switch req.LoginType {
	case "parent":
		user, err = h.users.GetParentByEmail(req.Identifier)
	case "child":
		user, err = h.users.GetChildByUsername(req.Identifier)
	default:
		writeError(w, http.StatusBadRequest, "loginType must be parent or child")
		return
	}
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user,
	})
}

// Register creates a parent account. Children are created by their parent
// through the children endpoint, never here.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	if err := validate.Password(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	exists, err := h.users.IdentifierExists(req.Email)
	if err != nil {
		h.logger.Error("register identifier check", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "email is already in use")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	user, err := h.users.CreateParent(req.Name, req.Email, string(hash))
	if err != nil {
		h.logger.Error("create parent", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "registration successful",
		"user":    user,
	})
}
