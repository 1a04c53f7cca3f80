package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
	"github.com/cyrilcaoyang/gopoe/internal/interfaces"
	"github.com/cyrilcaoyang/gopoe/internal/model"
	"github.com/cyrilcaoyang/gopoe/internal/service"
)

// ConversationHandler handles HTTP requests for conversations and the
// streaming turn endpoint.
type ConversationHandler struct {
	service interfaces.ChatService
}

func NewConversationHandler(svc interfaces.ChatService) *ConversationHandler {
	return &ConversationHandler{service: svc}
}

// CreateConversationRequest is the DTO for explicitly creating a conversation.
type CreateConversationRequest struct {
	Title    string `json:"title" validate:"max=200" example:"Trip planning"`
	BotName  string `json:"bot_name" validate:"required" example:"Claude-Sonnet-4-Search"`
	ChatMode string `json:"chat_mode" example:"chatbot"`
}

// UpdateTitleRequest is the DTO for the rename endpoint.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200" example:"My Custom Title"`
}

// ChangeBotRequest is the DTO for rebinding a conversation's bot.
type ChangeBotRequest struct {
	BotName string `json:"bot_name" validate:"required" example:"GPT-4o"`
}

// SendMessageRequest is the DTO for one conversational turn. An empty
// conversation_id starts a new conversation.
type SendMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content" validate:"required,min=1"`
	BotName        string `json:"bot_name"`
	ChatMode       string `json:"chat_mode"`
}

// CreateConversation godoc
// @Summary      Create a conversation
// @Description  Creates an empty conversation bound to an initial bot.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversation  body      CreateConversationRequest  true  "Conversation"
// @Success      201           {object}  model.Conversation
// @Failure      400           {object}  ErrorResponse
// @Router       /v1/conversations [post]
func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	var req CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	conv, err := h.service.CreateConversation(r.Context(), req.Title, req.BotName, req.ChatMode)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, conv)
}

// GetConversations godoc
// @Summary      List conversations
// @Description  Lists conversations, most recently updated first.
// @Tags         Conversations
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of conversations"
// @Success      200    {array}   model.Conversation
// @Failure      500    {object}  ErrorResponse
// @Router       /v1/conversations [get]
func (h *ConversationHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, fmt.Errorf("%w: limit must be a non-negative integer", app_errors.ErrValidation))
			return
		}
		limit = parsed
	}

	convs, err := h.service.ListConversations(r.Context(), limit)
	if err != nil {
		respondWithError(w, err)
		return
	}
	if convs == nil {
		convs = []*model.Conversation{}
	}
	respondWithJSON(w, http.StatusOK, convs)
}

// GetConversation godoc
// @Summary      Get a conversation
// @Description  Returns a conversation's metadata and all its messages.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  model.FullConversation
// @Failure      404             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID} [get]
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	full, err := h.service.GetFullConversation(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, full)
}

// UpdateConversationTitle godoc
// @Summary      Rename a conversation
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversationID  path      string              true  "Conversation ID"
// @Param        title           body      UpdateTitleRequest  true  "New title"
// @Success      200             {object}  StatusResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID}/title [put]
func (h *ConversationHandler) UpdateConversationTitle(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.RenameConversation(r.Context(), conversationID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// ChangeConversationBot godoc
// @Summary      Rebind a conversation's bot
// @Description  Allowed only while the conversation has no user messages.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversationID  path      string            true  "Conversation ID"
// @Param        bot             body      ChangeBotRequest  true  "New bot"
// @Success      200             {object}  StatusResponse
// @Failure      404             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID}/bot [put]
func (h *ConversationHandler) ChangeConversationBot(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req ChangeBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.ChangeBot(r.Context(), conversationID, req.BotName); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// DeleteConversation godoc
// @Summary      Delete a conversation
// @Description  Removes a conversation and all its messages.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  StatusResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID} [delete]
func (h *ConversationHandler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.service.DeleteConversation(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleStreamMessage godoc
// @Summary      Send a message (streaming)
// @Description  Sends one conversational turn and streams the bot's reply as
// @Description  server-sent events. Omit conversation_id to start a new
// @Description  conversation; the final event carries its id.
// @Tags         Conversations
// @Accept       json
// @Produce      text/event-stream
// @Param        message  body  SendMessageRequest  true  "Turn"
// @Success      200
// @Router       /v1/conversations/messages [post]
func (h *ConversationHandler) HandleStreamMessage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendStreamError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		sendStreamError(w, err)
		return
	}

	turn := &service.TurnRequest{
		ConversationID: req.ConversationID,
		Content:        req.Content,
		BotName:        req.BotName,
		ChatMode:       req.ChatMode,
	}

	streamChan := make(chan model.StreamChunk)
	errc := make(chan error, 1)
	go func() {
		errc <- h.service.SendTurn(r.Context(), turn, streamChan)
	}()

	clientGone := false
	for chunk := range streamChan {
		if clientGone {
			continue // drain so the service can finish its turn
		}
		if err := writeStreamEvent(w, chunk); err != nil {
			slog.Info("Client disconnected mid-stream")
			clientGone = true
		}
	}

	if err := <-errc; err != nil && !clientGone {
		sendStreamError(w, err)
	}
}
