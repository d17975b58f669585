package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/studyflow/internal/logger"
	"github.com/julianstephens/studyflow/internal/planner"
	"github.com/julianstephens/studyflow/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type RouterConfig struct {
	Store   storage.Provider
	Planner *planner.Service
	// Token enables bearer auth on /api when set.
	Token string
	Now   func() time.Time
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	h := NewHandler(cfg.Store, cfg.Planner)
	if cfg.Now != nil {
		h.now = cfg.Now
	}

	r.GET("/healthcheck", HealthCheck)

	api := r.Group("/api")
	api.Use(RequireToken(cfg.Token))
	{
		// Plan
		api.GET("/plan", h.GetPlan)
		api.POST("/plan/regenerate", h.RegeneratePlan)
		api.GET("/plan/ics", h.PlanICS)
		api.GET("/plan/stats", h.PlanStats)
		api.PATCH("/sessions/:id", h.UpdateSession)

		// Inputs
		api.GET("/tasks", h.ListTasks)
		api.POST("/tasks", h.CreateTask)
		api.GET("/slots", h.ListSlots)
		api.POST("/slots", h.CreateSlot)
		api.GET("/habits", h.ListHabits)
		api.POST("/habits", h.CreateHabit)
	}
	return r
}

type Server struct {
	Engine *gin.Engine
	addr   string
}

func NewServer(addr string, cfg RouterConfig) *Server {
	return &Server{Engine: NewRouter(cfg), addr: addr}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("Shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
