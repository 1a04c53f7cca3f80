package api

import (
	"net/http"

	"github.com/cyrilcaoyang/gopoe/internal/interfaces"
)

// BotHandler handles HTTP requests for the bot catalog.
type BotHandler struct {
	service interfaces.BotService
}

func NewBotHandler(svc interfaces.BotService) *BotHandler {
	return &BotHandler{service: svc}
}

// GetBots godoc
// @Summary      List available bots
// @Description  Returns the bot catalog. With conversation_id set, also
// @Description  reports whether that conversation's bot binding is locked.
// @Tags         Bots
// @Produce      json
// @Param        conversation_id  query     string  false  "Conversation ID"
// @Success      200              {object}  service.BotCatalog
// @Failure      404              {object}  ErrorResponse
// @Router       /v1/bots [get]
func (h *BotHandler) GetBots(w http.ResponseWriter, r *http.Request) {
	conversationID := r.URL.Query().Get("conversation_id")
	catalog, err := h.service.List(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, catalog)
}
