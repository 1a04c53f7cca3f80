package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyrilcaoyang/gopoe/internal/api"
	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
	"github.com/cyrilcaoyang/gopoe/internal/interfaces/mocks"
	"github.com/cyrilcaoyang/gopoe/internal/model"
	"github.com/cyrilcaoyang/gopoe/internal/service"
)

func setupConversationHandler(t *testing.T) (*api.ConversationHandler, *mocks.MockChatService) {
	mockSvc := mocks.NewMockChatService(t)
	return api.NewConversationHandler(mockSvc), mockSvc
}

// addChiURLParams simulates the chi router injecting URL parameters into the
// request context, which the handlers read via chi.URLParam.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func TestConversationHandler_CreateConversation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		conv := &model.Conversation{ID: "conv-1", Title: "Chat with TestBot", BotName: "TestBot"}
		mockSvc.On("CreateConversation", mock.Anything, "", "TestBot", "").Return(conv, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", strings.NewReader(`{"bot_name": "TestBot"}`))
		rr := httptest.NewRecorder()
		handler.CreateConversation(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var returned model.Conversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, "conv-1", returned.ID)
	})

	t.Run("Failure - missing bot name", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", strings.NewReader(`{"title": "No bot"}`))
		rr := httptest.NewRecorder()
		handler.CreateConversation(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field 'BotName' failed on the 'required' tag")
	})

	t.Run("Failure - invalid JSON", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", strings.NewReader(`{invalid`))
		rr := httptest.NewRecorder()
		handler.CreateConversation(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestConversationHandler_GetConversations(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		expected := []*model.Conversation{{ID: "conv-1", Title: "Test"}}
		mockSvc.On("ListConversations", mock.Anything, 0).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		rr := httptest.NewRecorder()
		handler.GetConversations(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var returned []*model.Conversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, expected, returned)
	})

	t.Run("Success - limit is forwarded", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("ListConversations", mock.Anything, 5).Return([]*model.Conversation{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations?limit=5", nil)
		rr := httptest.NewRecorder()
		handler.GetConversations(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - bad limit", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations?limit=abc", nil)
		rr := httptest.NewRecorder()
		handler.GetConversations(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - service error", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("ListConversations", mock.Anything, 0).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		rr := httptest.NewRecorder()
		handler.GetConversations(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestConversationHandler_GetConversation(t *testing.T) {
	conversationID := "conv-1"

	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		full := &model.FullConversation{Conversation: model.Conversation{ID: conversationID}}
		mockSvc.On("GetFullConversation", mock.Anything, conversationID).Return(full, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID, nil)
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.GetConversation(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - not found", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("GetFullConversation", mock.Anything, conversationID).Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID, nil)
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.GetConversation(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), `"code":"not_found"`)
	})
}

func TestConversationHandler_UpdateConversationTitle(t *testing.T) {
	conversationID := "conv-1"

	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("RenameConversation", mock.Anything, conversationID, "New Title").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/"+conversationID+"/title", strings.NewReader(`{"title": "New Title"}`))
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.UpdateConversationTitle(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - empty title", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/"+conversationID+"/title", strings.NewReader(`{"title": ""}`))
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.UpdateConversationTitle(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field 'Title' failed on the 'required' tag")
	})
}

func TestConversationHandler_ChangeConversationBot(t *testing.T) {
	conversationID := "conv-1"

	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("ChangeBot", mock.Anything, conversationID, "NewBot").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/"+conversationID+"/bot", strings.NewReader(`{"bot_name": "NewBot"}`))
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.ChangeConversationBot(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - locked conversation maps to 409", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		lockedErr := &app_errors.LockedConversationError{
			ConversationID: conversationID,
			BotName:        "BoundBot",
			UserMessages:   4,
		}
		mockSvc.On("ChangeBot", mock.Anything, conversationID, "NewBot").Return(lockedErr).Once()

		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/"+conversationID+"/bot", strings.NewReader(`{"bot_name": "NewBot"}`))
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.ChangeConversationBot(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Contains(t, rr.Body.String(), `"code":"locked_conversation"`)
		// The body names the bound bot and the message count so the client can
		// render the refusal verbatim.
		assert.Contains(t, rr.Body.String(), "BoundBot")
		assert.Contains(t, rr.Body.String(), "4 user messages")
	})

	t.Run("Failure - missing bot name", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/"+conversationID+"/bot", strings.NewReader(`{"bot_name": ""}`))
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.ChangeConversationBot(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestConversationHandler_DeleteConversation(t *testing.T) {
	conversationID := "conv-1"

	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("DeleteConversation", mock.Anything, conversationID).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/v1/conversations/"+conversationID, nil)
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.DeleteConversation(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Failure - not found", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("DeleteConversation", mock.Anything, conversationID).Return(app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/v1/conversations/"+conversationID, nil)
		req = addChiURLParams(req, map[string]string{"conversationID": conversationID})
		rr := httptest.NewRecorder()
		handler.DeleteConversation(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestConversationHandler_HandleStreamMessage(t *testing.T) {
	t.Run("Success - fragments and final event reach the client", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)

		mockSvc.On("SendTurn", mock.Anything, mock.MatchedBy(func(req *service.TurnRequest) bool {
			return req.Content == "hello" && req.BotName == "TestBot"
		}), mock.Anything).
			Run(func(args mock.Arguments) {
				ch := args.Get(2).(chan<- model.StreamChunk)
				ch <- model.StreamChunk{Text: "Hi "}
				ch <- model.StreamChunk{Text: "there"}
				ch <- model.StreamChunk{Done: true, ConversationID: "conv-1"}
				close(ch)
			}).
			Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"content": "hello", "bot_name": "TestBot"}`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))
		body := rr.Body.String()
		assert.Contains(t, body, `"text":"Hi "`)
		assert.Contains(t, body, `"text":"there"`)
		assert.Contains(t, body, `"done":true`)
		assert.Contains(t, body, `"conversation_id":"conv-1"`)
	})

	t.Run("Failure - service error becomes an error event", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)

		mockSvc.On("SendTurn", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				close(args.Get(2).(chan<- model.StreamChunk))
			}).
			Return(app_errors.ErrRateLimited).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"content": "hello"}`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		body := rr.Body.String()
		assert.Contains(t, body, "event: error")
		assert.Contains(t, body, `"code":"rate_limited"`)
	})

	t.Run("Failure - invalid JSON", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"content":`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		assert.Contains(t, rr.Body.String(), "event: error")
		assert.Contains(t, rr.Body.String(), `"code":"validation"`)
	})

	t.Run("Failure - empty content", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"content": ""}`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		assert.Contains(t, rr.Body.String(), "Field 'Content' failed on the 'required' tag")
	})
}
