package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/sohbet/models"
)

// stubConversationService, handler testleri için sabit yanıtlı service.
type stubConversationService struct {
	list *models.ConversationList
	err  error
	opts models.ListOptions
}

func (s *stubConversationService) GetConversationList(_ context.Context, _ string, opts models.ListOptions) (*models.ConversationList, error) {
	s.opts = opts
	return s.list, s.err
}

type stubReadStateService struct {
	calls [][2]string
	err   error
}

func (s *stubReadStateService) MarkConversationRead(_ context.Context, selfID, counterpartID string) error {
	s.calls = append(s.calls, [2]string{selfID, counterpartID})
	return s.err
}

func newTestMux(h *ConversationHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations", h.List)
	mux.HandleFunc("POST /api/conversations/{counterpartId}/read", h.MarkRead)
	return mux
}

func TestListRequiresViewerHeader(t *testing.T) {
	h := NewConversationHandler(&stubConversationService{}, &stubReadStateService{})
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListParsesQueryOptions(t *testing.T) {
	stub := &stubConversationService{list: &models.ConversationList{
		Conversations: []models.ConversationSummary{},
	}}
	h := NewConversationHandler(stub, &stubReadStateService{})
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations?search=ali&favorites=true", nil)
	req.Header.Set("X-User-ID", "me")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ali", stub.opts.Search)
	assert.True(t, stub.opts.FavoritesOnly)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestMarkReadDelegatesToService(t *testing.T) {
	stub := &stubReadStateService{}
	h := NewConversationHandler(&stubConversationService{}, stub)
	mux := newTestMux(h)

	req := httptest.NewRequest(http.MethodPost, "/api/conversations/alice/read", nil)
	req.Header.Set("X-User-ID", "me")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, stub.calls, 1)
	assert.Equal(t, [2]string{"me", "alice"}, stub.calls[0])
}
