package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dani-Bcn/tareas-de-casa/internal/model"
	"github.com/Dani-Bcn/tareas-de-casa/internal/store"
)

type RewardHandler struct {
	rewards *store.RewardStore
	users   *store.UserStore
	logger  *slog.Logger
}

func NewRewardHandler(rs *store.RewardStore, us *store.UserStore, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{rewards: rs, users: us, logger: logger}
}

// List returns rewards scoped by role: a parent sees every reward created
// for its children, a child sees only its own. Newest first.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, role, errMsg := parseUserRole(q.Get("userId"), q.Get("role"))
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	var rewards []model.Reward
	var err error
	switch role {
	case model.RoleParent:
		rewards, err = h.rewards.ListByParent(userID)
	case model.RoleChild:
		rewards, err = h.rewards.ListByChild(userID)
	}
	if err != nil {
		h.logger.Error("list rewards", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if rewards == nil {
		rewards = []model.Reward{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Cost        int    `json:"cost"`
		ChildID     int64  `json:"childId"`
		ParentID    int64  `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Cost == 0 || req.ChildID == 0 || req.ParentID == 0 {
		writeError(w, http.StatusBadRequest, "title, cost, childId and parentId are required")
		return
	}
	if req.Cost < 0 {
		writeError(w, http.StatusBadRequest, "cost must be > 0")
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

	reward, err := h.rewards.Create(req.Title, req.Description, req.Cost, req.ChildID)
	if err != nil {
		h.logger.Error("create reward", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"reward": reward})
}

// Claim lets the owning child spend points on a reward. Claims are
// permanent; the claimed flip and the point deduction happen together in
// the store.
func (h *RewardHandler) Claim(w http.ResponseWriter, r *http.Request) {
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

	reward, err := h.rewards.GetByID(id)
	if err != nil {
		h.logger.Error("get reward", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	if role != model.RoleChild || reward.ChildID != req.UserID {
		writeError(w, http.StatusForbidden, "not authorized to claim this reward")
		return
	}

	claimed, err := h.rewards.Claim(id)
	switch {
	case errors.Is(err, store.ErrAlreadyClaimed):
		writeError(w, http.StatusBadRequest, "reward already claimed")
		return
	case errors.Is(err, store.ErrInsufficientPoints):
		writeError(w, http.StatusBadRequest, "insufficient points")
		return
	case err != nil:
		h.logger.Error("claim reward", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	case claimed == nil:
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "reward claimed successfully",
		"reward":  claimed,
	})
}

// Delete removes a reward; only the parent owning the reward's child may
// do it. Claimed rewards carry no reversal, claims are permanent.
func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	reward, err := h.rewards.GetByID(id)
	if err != nil {
		h.logger.Error("get reward", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}
	if reward == nil {
		writeError(w, http.StatusNotFound, "reward not found")
		return
	}

	child, err := h.users.GetByID(reward.ChildID)
	if err != nil {
		h.logger.Error("get child", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	owns := role == model.RoleParent && child != nil &&
		child.ParentID != nil && *child.ParentID == req.UserID
	if !owns {
		writeError(w, http.StatusForbidden, "not authorized to delete this reward")
		return
	}

	if err := h.rewards.Delete(id); err != nil {
		h.logger.Error("delete reward", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrMsg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "reward deleted successfully"})
}
