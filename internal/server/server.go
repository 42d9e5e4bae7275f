package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dani-Bcn/tareas-de-casa/internal/handler"
	"github.com/Dani-Bcn/tareas-de-casa/internal/middleware"
	"github.com/Dani-Bcn/tareas-de-casa/internal/store"
)

type Server struct {
	db        *sql.DB
	authH     *handler.AuthHandler
	childH    *handler.ChildHandler
	taskH     *handler.TaskHandler
	rewardH   *handler.RewardHandler
	staticDir string
	logger    *slog.Logger
}

func New(db *sql.DB, staticDir string, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	rewardStore := store.NewRewardStore(db)

	return &Server{
		db:        db,
		authH:     handler.NewAuthHandler(userStore, logger.With("component", "auth")),
		childH:    handler.NewChildHandler(userStore, logger.With("component", "children")),
		taskH:     handler.NewTaskHandler(taskStore, userStore, logger.With("component", "tasks")),
		rewardH:   handler.NewRewardHandler(rewardStore, userStore, logger.With("component", "rewards")),
		staticDir: staticDir,
		logger:    logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.authH.Login)
	mux.HandleFunc("POST /api/auth/register", s.authH.Register)

	mux.HandleFunc("GET /api/users/children", s.childH.List)
	mux.HandleFunc("POST /api/users/children", s.childH.Create)

	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)

	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Claim)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)

	mux.HandleFunc("GET /health", s.healthHandler)

	// Browser client
	mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
