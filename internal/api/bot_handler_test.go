package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyrilcaoyang/gopoe/internal/api"
	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
	"github.com/cyrilcaoyang/gopoe/internal/interfaces/mocks"
	"github.com/cyrilcaoyang/gopoe/internal/service"
)

func TestBotHandler_GetBots(t *testing.T) {
	t.Run("Success - plain catalog", func(t *testing.T) {
		mockSvc := mocks.NewMockBotService(t)
		handler := api.NewBotHandler(mockSvc)

		catalog := &service.BotCatalog{Bots: []string{"BotA", "BotB"}}
		mockSvc.On("List", mock.Anything, "").Return(catalog, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/bots", nil)
		rr := httptest.NewRecorder()
		handler.GetBots(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var returned service.BotCatalog
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, []string{"BotA", "BotB"}, returned.Bots)
		assert.False(t, returned.Locked)
	})

	t.Run("Success - lock state for a conversation", func(t *testing.T) {
		mockSvc := mocks.NewMockBotService(t)
		handler := api.NewBotHandler(mockSvc)

		catalog := &service.BotCatalog{Bots: []string{"BotA"}, Locked: true, LockedBot: "BotA"}
		mockSvc.On("List", mock.Anything, "conv-1").Return(catalog, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/bots?conversation_id=conv-1", nil)
		rr := httptest.NewRecorder()
		handler.GetBots(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"locked":true`)
		assert.Contains(t, rr.Body.String(), `"locked_bot":"BotA"`)
	})

	t.Run("Failure - unknown conversation", func(t *testing.T) {
		mockSvc := mocks.NewMockBotService(t)
		handler := api.NewBotHandler(mockSvc)

		mockSvc.On("List", mock.Anything, "missing").Return(nil, app_errors.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/bots?conversation_id=missing", nil)
		rr := httptest.NewRecorder()
		handler.GetBots(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
