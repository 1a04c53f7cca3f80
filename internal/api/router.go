package api

import (
	"net/http"
	"time"

	// Required by swaggo to find the generated API definitions.
	_ "github.com/cyrilcaoyang/gopoe/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter creates and configures the chi router with all application routes.
func NewRouter(conversationHandler *ConversationHandler, botHandler *BotHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	// Liveness probe for supervisors; the body is not load-bearing.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Management routes carry a timeout so connections cannot hang.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/conversations", conversationHandler.CreateConversation)
			r.Get("/conversations", conversationHandler.GetConversations)
			r.Get("/conversations/{conversationID}", conversationHandler.GetConversation)
			r.Put("/conversations/{conversationID}/title", conversationHandler.UpdateConversationTitle)
			r.Put("/conversations/{conversationID}/bot", conversationHandler.ChangeConversationBot)
			r.Delete("/conversations/{conversationID}", conversationHandler.DeleteConversation)

			r.Get("/bots", botHandler.GetBots)
		})

		// The streaming endpoint holds its connection open for the whole
		// turn and must not be subject to the timeout middleware.
		r.Group(func(r chi.Router) {
			r.Post("/conversations/messages", conversationHandler.HandleStreamMessage)
		})
	})

	return r
}
