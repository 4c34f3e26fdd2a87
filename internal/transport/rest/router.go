package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/ieatsighpies/fyp-survey-website/internal/service"
	"github.com/ieatsighpies/fyp-survey-website/internal/session"
	"github.com/ieatsighpies/fyp-survey-website/internal/survey"
	"github.com/ieatsighpies/fyp-survey-website/internal/transport/rest/handler"
	"github.com/ieatsighpies/fyp-survey-website/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Form            *survey.Definition
	Sessions        *session.Store
	SurveyService   *service.SurveyService
	DialogueService *service.DialogueService
	ReviewService   *service.ReviewService
	WSHub           *ws.Hub
	AllowedOrigins  string
	Logger          zerolog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.Sessions, c.Form)
	surveyHandler := handler.NewSurveyHandler(c.SurveyService, c.Sessions, c.Form)
	chatHandler := handler.NewChatHandler(c.DialogueService, c.Sessions, c.Form)
	reviewHandler := handler.NewReviewHandler(c.ReviewService, c.Sessions)
	wsHandler := ws.NewHandler(c.WSHub, c.Sessions, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/survey", surveyHandler.Submit).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/chat", chatHandler.Send).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/review/{questionIndex}", reviewHandler.Select).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{sessionId}/review/{questionIndex}", reviewHandler.Save).Methods("POST", "OPTIONS")

	// WebSocket fragment feed
	v1.HandleFunc("/ws/sessions/{sessionId}", wsHandler.SessionWS).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
