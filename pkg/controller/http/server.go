package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kohigashi/asakai/pkg/usecase"
	"github.com/kohigashi/asakai/pkg/utils/logging"
)

// Server routes the bot's webhook endpoints. All Slack routes sit behind
// signature verification; there is no other authentication surface.
type Server struct {
	router *chi.Mux
}

// New builds the HTTP server over the given use cases
func New(uc *usecase.UseCases, signingSecret string) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck // header already committed
	})

	eventHandler := NewSlackEventHandler(uc)
	interactionHandler := NewSlackInteractionHandler(uc)

	r.Route("/hooks/slack", func(r chi.Router) {
		r.Use(SlackSignatureMiddleware(signingSecret))

		r.Post("/event", eventHandler.ServeHTTP)
		r.Post("/interaction", interactionHandler.ServeHTTP)
	})

	return &Server{router: r}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
