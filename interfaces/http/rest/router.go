// Package rest wires the HTTP surface of the exploration service.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"kgexplorer/application/session"
	"kgexplorer/interfaces/http/rest/handlers"
	"kgexplorer/interfaces/http/rest/middleware"
	apperrors "kgexplorer/pkg/errors"
)

// Router builds the HTTP handler tree.
type Router struct {
	sessions       *session.Manager
	registry       *prometheus.Registry
	allowedOrigins []string
	logger         *zap.Logger
	errorHandler   *apperrors.ErrorHandler
}

// NewRouter creates a router over the session manager.
func NewRouter(sessions *session.Manager, registry *prometheus.Registry, allowedOrigins []string, logger *zap.Logger) *Router {
	return &Router{
		sessions:       sessions,
		registry:       registry,
		allowedOrigins: allowedOrigins,
		logger:         logger,
		errorHandler:   apperrors.NewErrorHandler(logger),
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.registry != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	}

	sessionHandler := handlers.NewSessionHandler(rt.sessions, rt.logger, rt.errorHandler)
	graphHandler := handlers.NewGraphHandler(rt.sessions, rt.logger, rt.errorHandler)
	nodeHandler := handlers.NewNodeHandler(rt.sessions, rt.logger, rt.errorHandler)
	chatHandler := handlers.NewChatHandler(rt.sessions, rt.logger, rt.errorHandler)
	quizHandler := handlers.NewQuizHandler(rt.sessions, rt.logger, rt.errorHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", sessionHandler.Create)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", sessionHandler.Delete)

			r.Post("/query", graphHandler.SubmitQuery)
			r.Get("/query", graphHandler.GetQueryState)
			r.Post("/graphs/{graphID}/load", graphHandler.LoadGraph)
			r.Get("/view", graphHandler.GetView)
			r.Post("/layer", graphHandler.SetLayer)
			r.Post("/connections/toggle", graphHandler.ToggleConnections)
			r.Post("/viewport", graphHandler.SetViewport)

			r.Get("/node", nodeHandler.GetDetails)
			r.Post("/nodes/{nodeID}/select", nodeHandler.Select)
			r.Post("/nodes/{nodeID}/drag/begin", nodeHandler.BeginDrag)
			r.Post("/nodes/{nodeID}/drag/end", nodeHandler.EndDrag)

			r.Post("/chat", chatHandler.Send)
			r.Get("/chat", chatHandler.Get)
			r.Post("/chat/toggle", chatHandler.Toggle)
			r.Post("/chat/clear", chatHandler.Clear)

			r.Post("/quiz", quizHandler.Generate)
			r.Get("/quiz", quizHandler.Get)
			r.Post("/quiz/answer", quizHandler.Answer)
			r.Post("/quiz/score", quizHandler.Score)
			r.Post("/quiz/reset", quizHandler.Reset)
		})
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
