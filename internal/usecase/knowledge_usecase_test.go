package usecase

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragzy-ai/ragzy-api/internal/config"
	"github.com/ragzy-ai/ragzy-api/internal/models"
)

type knowledgeFixture struct {
	uc        *KnowledgeUseCase
	kb        *fakeKnowledgeBaseRepo
	agentKB   *fakeAgentKnowledgeRepo
	publisher *recordingPublisher

	mu    sync.Mutex
	calls map[string][]map[string]any
}

// record captures decoded request bodies per path before answering.
func (f *knowledgeFixture) record(t *testing.T, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if r.Body != nil && r.Method != http.MethodDelete {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		}
		if payload == nil {
			payload = map[string]any{}
		}
		if m := r.URL.Query().Get("embedding_model"); m != "" {
			payload["_embedding_model"] = m
		}
		f.mu.Lock()
		f.calls[r.URL.Path] = append(f.calls[r.URL.Path], payload)
		f.mu.Unlock()
		respond(status, body)(w, r)
	}
}

func newKnowledgeFixture(t *testing.T, routes func(f *knowledgeFixture) map[string]http.HandlerFunc) *knowledgeFixture {
	t.Helper()
	f := &knowledgeFixture{
		kb:        newFakeKnowledgeBaseRepo(),
		agentKB:   newFakeAgentKnowledgeRepo(),
		publisher: &recordingPublisher{},
		calls:     map[string][]map[string]any{},
	}
	var r map[string]http.HandlerFunc
	if routes != nil {
		r = routes(f)
	}
	conf := &config.Config{Embedding: config.EmbeddingConfig{Provider: "openai", Model: "text-embedding-3-small"}}
	chat := NewChatUseCase(newFakeWidgetRepo(models.ChatWidget{ID: "w1", BusinessID: "ws1"}), nil, nil, nil, nil)
	agents := NewAgentUseCase(newFakeAgentRepo(models.Agent{ID: "a1", WorkspaceID: "ws1", Name: "Support"}), f.agentKB, nil, nil)
	tokens := fakeTokens{"notion/ws1": "secret_notion", "google_sheets/ws1": "ya29"}

	f.uc = NewKnowledgeUseCase(conf, f.kb, f.agentKB, chat, agents, newBackendStub(t, r), tokens, f.publisher)
	f.uc.now = clock
	return f
}

func TestCreateKnowledgeBaseItem(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/knowledge-base/store": f.record(t, http.StatusOK, `{"success":true,"qdrantId":"q1"}`),
		}
	})
	ctx := context.Background()

	item, err := f.uc.CreateKnowledgeBaseItem(ctx, "ws1", "w1", models.CreateKnowledgeBaseItemParams{
		Title: "Pricing", Content: "Plans start at $10", Type: models.KnowledgeTypeText,
	})
	require.NoError(t, err)
	assert.Equal(t, "ws1", item.BusinessID)
	assert.Equal(t, fixedNow, item.CreatedAt)
	assert.Contains(t, f.kb.items, item.ID)

	calls := f.calls["/api/knowledge-base/store"]
	require.Len(t, calls, 1)
	assert.Equal(t, item.ID, calls[0]["id"])
	assert.Equal(t, "text-embedding-3-small", calls[0]["_embedding_model"])
	assert.Equal(t, []models.EventType{models.EventKnowledgeCreated}, f.publisher.types())

	_, err = f.uc.CreateKnowledgeBaseItem(ctx, "ws2", "w1", models.CreateKnowledgeBaseItemParams{Title: "x", Type: models.KnowledgeTypeText})
	assert.ErrorIs(t, err, ErrWidgetNotFound)
}

func TestCreateKnowledgeBaseItemSurvivesIndexFailure(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/knowledge-base/store": respond(http.StatusInternalServerError, `{"detail":"qdrant down"}`),
		}
	})

	item, err := f.uc.CreateKnowledgeBaseItem(context.Background(), "ws1", "w1", models.CreateKnowledgeBaseItemParams{
		Title: "Pricing", Type: models.KnowledgeTypeText,
	})
	require.NoError(t, err)
	assert.Contains(t, f.kb.items, item.ID)
}

func TestCreateAgentKnowledgeRoutesFAQ(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/knowledge-base/store":     f.record(t, http.StatusOK, `{"success":true}`),
			"/api/knowledge-base/store-faq": f.record(t, http.StatusOK, `{"success":true}`),
		}
	})
	ctx := context.Background()

	faq, err := f.uc.CreateAgentKnowledge(ctx, "ws1", "a1", models.CreateAgentKnowledgeParams{
		Title: "Refunds", Type: models.KnowledgeTypeFAQ, FAQQuestion: "Can I get a refund?", FAQAnswer: "Within 30 days.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Q: Can I get a refund?\n\nA: Within 30 days.", faq.Content)
	assert.Equal(t, "openai", faq.EmbeddingProvider)

	faqCalls := f.calls["/api/knowledge-base/store-faq"]
	require.Len(t, faqCalls, 1)
	assert.Equal(t, "Can I get a refund?", faqCalls[0]["question"])
	assert.Equal(t, "a1", faqCalls[0]["agent_id"])
	assert.Empty(t, f.calls["/api/knowledge-base/store"])

	_, err = f.uc.CreateAgentKnowledge(ctx, "ws1", "a1", models.CreateAgentKnowledgeParams{
		Title: "About", Type: models.KnowledgeTypeText, Content: "We sell shoes", EmbeddingModel: "custom-model",
	})
	require.NoError(t, err)
	storeCalls := f.calls["/api/knowledge-base/store"]
	require.Len(t, storeCalls, 1)
	assert.Equal(t, "custom-model", storeCalls[0]["_embedding_model"])
	assert.Equal(t, "ws1", storeCalls[0]["workspaceId"])

	_, err = f.uc.CreateAgentKnowledge(ctx, "ws2", "a1", models.CreateAgentKnowledgeParams{Title: "x", Type: models.KnowledgeTypeText})
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestDeleteAgentKnowledge(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/knowledge-base/delete/k1": f.record(t, http.StatusOK, `{"success":true}`),
		}
	})
	f.agentKB.items["k1"] = models.AgentKnowledgeItem{ID: "k1", AgentID: "a1", WorkspaceID: "ws1"}
	ctx := context.Background()

	assert.ErrorIs(t, f.uc.DeleteAgentKnowledge(ctx, "ws2", "k1"), ErrKnowledgeNotFound)
	require.NoError(t, f.uc.DeleteAgentKnowledge(ctx, "ws1", "k1"))
	assert.NotContains(t, f.agentKB.items, "k1")
	assert.Len(t, f.calls["/api/knowledge-base/delete/k1"], 1)
	assert.ErrorIs(t, f.uc.DeleteAgentKnowledge(ctx, "ws1", "k1"), ErrKnowledgeNotFound)
}

func TestImportNotion(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/notion/import-page":       f.record(t, http.StatusOK, `{"success":true,"id":"n1","title":"Handbook","chunks_created":4}`),
			"/api/notion/import-database":   f.record(t, http.StatusOK, `{"success":false,"message":"database is empty"}`),
			"/api/knowledge-base/delete/n1": f.record(t, http.StatusOK, `{"success":true}`),
		}
	})
	ctx := context.Background()

	_, err := f.uc.ImportNotion(ctx, "ws1", "a1", models.ImportNotionParams{Title: "x"})
	assert.ErrorIs(t, err, ErrNotionSourceMissing)

	item, err := f.uc.ImportNotion(ctx, "ws1", "a1", models.ImportNotionParams{PageID: "p1", DatabaseID: "d1", Title: "Docs"})
	require.NoError(t, err)
	assert.NotEqual(t, "n1", item.ID)
	assert.Equal(t, "n1", item.BackendID)
	assert.Equal(t, "Handbook", item.Title)
	assert.Equal(t, models.KnowledgeTypeNotion, item.Type)
	assert.Equal(t, "p1", item.NotionPageID)
	assert.Equal(t, 4, item.ChunksCreated)

	pageCalls := f.calls["/api/notion/import-page"]
	require.Len(t, pageCalls, 1)
	assert.Equal(t, "secret_notion", pageCalls[0]["api_key"])
	assert.NotContains(t, pageCalls[0], "database_id")

	// the backend answers with the same id for a re-import
	again, err := f.uc.ImportNotion(ctx, "ws1", "a1", models.ImportNotionParams{PageID: "p1", Title: "Docs"})
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, again.ID)
	assert.Contains(t, f.agentKB.items, item.ID)
	assert.Contains(t, f.agentKB.items, again.ID)

	require.NoError(t, f.uc.DeleteAgentKnowledge(ctx, "ws1", again.ID))
	assert.Len(t, f.calls["/api/knowledge-base/delete/n1"], 1)

	_, err = f.uc.ImportNotion(ctx, "ws1", "a1", models.ImportNotionParams{DatabaseID: "d1", Title: "Docs"})
	var appErr *models.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, "database is empty", appErr.Message)

	_, err = f.uc.ImportNotion(ctx, "ws2", "a1", models.ImportNotionParams{PageID: "p1", Title: "Docs"})
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestKnowledgeRequiresConnection(t *testing.T) {
	f := newKnowledgeFixture(t, nil)
	f.uc.tokens = fakeTokens{}
	ctx := context.Background()

	_, err := f.uc.SearchNotionPages(ctx, "ws1", "")
	assert.ErrorIs(t, err, ErrNotionNotConnected)
	_, err = f.uc.ImportNotion(ctx, "ws1", "a1", models.ImportNotionParams{PageID: "p1", Title: "Docs"})
	assert.ErrorIs(t, err, ErrNotionNotConnected)
	_, err = f.uc.ListSpreadsheets(ctx, "ws1", "")
	assert.ErrorIs(t, err, ErrSheetsNotConnected)
}

func TestImportSheet(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/google-sheets/import-sheet": f.record(t, http.StatusOK, `{"success":true,"rows_count":120,"url":"https://docs.google.com/s/1"}`),
		}
	})

	item, err := f.uc.ImportSheet(context.Background(), "ws1", "a1", models.ImportSheetParams{
		SpreadsheetID: "s1", SheetName: "Prices", Title: "Price list",
	})
	require.NoError(t, err)
	assert.Equal(t, "Price list", item.Title)
	assert.Equal(t, 120, item.RowsCount)
	assert.Equal(t, "s1", item.GoogleSheetID)
	assert.Equal(t, "https://docs.google.com/s/1", item.FileURL)
	assert.Contains(t, f.agentKB.items, item.ID)

	calls := f.calls["/api/google-sheets/import-sheet"]
	require.Len(t, calls, 1)
	assert.Equal(t, "ya29", calls[0]["access_token"])
}

func TestSearchNotionPages(t *testing.T) {
	f := newKnowledgeFixture(t, func(f *knowledgeFixture) map[string]http.HandlerFunc {
		return map[string]http.HandlerFunc{
			"/api/notion/search-pages": f.record(t, http.StatusOK, `{"pages":[{"id":"p1","title":"Handbook"}]}`),
		}
	})

	pages, err := f.uc.SearchNotionPages(context.Background(), "ws1", "hand")
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Handbook", pages[0].Title)
	assert.Equal(t, "hand", f.calls["/api/notion/search-pages"][0]["query"])
}
