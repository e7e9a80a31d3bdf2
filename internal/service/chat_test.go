package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/chat"
	"github.com/skillbridge/skillbridge-api/internal/language"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
)

type chatFixture struct {
	svc      *ChatService
	contexts *fakeContextStore
	chats    *fakeChatStore
	events   *fakePublisher
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	log := logger.NewNop()

	lang, err := language.NewService(cache.NewMemory[string, string]("translations", 100, time.Hour))
	require.NoError(t, err)

	f := &chatFixture{
		contexts: newFakeContextStore(),
		chats:    &fakeChatStore{},
		events:   &fakePublisher{},
	}
	contexts := NewContextService(f.contexts, cache.NewMemory[string, *model.UserContext]("contexts", 100, time.Hour), log)
	f.svc = NewChatService(
		chat.NewSelector(nil, nil, log),
		chat.NewPersonalizer(rand.New(rand.NewPCG(1, 2))),
		contexts,
		lang,
		f.chats,
		f.events,
		log,
	)
	return f
}

func TestSendRejectsBlankMessage(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.Send(context.Background(), "user-1", model.ChatRequest{Message: "   "})

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, f.chats.turns)
	assert.Empty(t, f.events.chats)
}

func TestSendAnonymous(t *testing.T) {
	f := newChatFixture(t)

	resp, err := f.svc.Send(context.Background(), "", model.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "Hello! I'm SkillBridge AI, your career development assistant. How can I help you today?", resp.Message)
	assert.Empty(t, resp.Suggestions)
	assert.NotNil(t, resp.Suggestions)
	assert.False(t, resp.Context.Personalized)
	assert.Equal(t, chat.CategoryExactMatch, resp.Context.Category)
	assert.Equal(t, 1.0, resp.Context.Confidence)
	assert.Equal(t, language.English, resp.Context.Language)

	assert.Empty(t, f.chats.turns, "anonymous turns are not stored")
	assert.Empty(t, f.contexts.contexts, "anonymous turns create no context")
	require.Len(t, f.events.chats, 1)
	assert.Empty(t, f.events.chats[0].UserID)
	assert.Equal(t, model.DefaultSessionID, f.events.chats[0].SessionID)
}

func TestSendPersonalizesAndRecords(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "How do I improve my resume?", SessionID: "s-1"})
	require.NoError(t, err)

	assert.True(t, resp.Context.Personalized)
	assert.NotEmpty(t, resp.Suggestions)
	assert.LessOrEqual(t, len(resp.Suggestions), chat.MaxSuggestions)

	require.Len(t, f.chats.turns, 1)
	turn := f.chats.turns[0]
	assert.Equal(t, "user-1", turn.UserID)
	assert.Equal(t, "s-1", turn.SessionID)
	assert.Equal(t, "resume", turn.Topic)
	assert.Equal(t, "question", turn.Intent)
	assert.Equal(t, resp.Message, turn.AIResponse)
	assert.Equal(t, model.LevelEntry, turn.Personalization.ExperienceLevel)

	uc := f.contexts.contexts["user-1"]
	require.NotNil(t, uc)
	assert.Equal(t, 1, uc.ConversationHistory.TotalConversations)
	assert.Equal(t, 1, uc.Performance.TotalMessages)
	require.Len(t, uc.ContextMemory.RecentTopics, 1)
	assert.Equal(t, "resume", uc.ContextMemory.RecentTopics[0].Topic)
	assert.EqualValues(t, 1, uc.Version)

	require.Len(t, f.events.chats, 1)
	assert.Equal(t, "resume", f.events.chats[0].Topic)
	assert.True(t, f.events.chats[0].Personalized)
}

func TestSendRemembersExactRepliesPerMessage(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	greeting, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	require.Equal(t, chat.CategoryExactMatch, greeting.Context.Category)

	other, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "qwerty"})
	require.NoError(t, err)
	assert.Equal(t, chat.CategoryFallback, other.Context.Category)
	assert.Equal(t, 0.5, other.Context.Confidence)
	assert.NotEqual(t, greeting.Message, other.Message, "a different message keeps its own reply")
	assert.Contains(t, other.Message, chat.NotSureResponse)

	again, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "  HELLO "})
	require.NoError(t, err)
	assert.Equal(t, greeting.Message, again.Message)

	uc := f.contexts.contexts["user-1"]
	require.NotNil(t, uc)
	require.Len(t, uc.ResponseCache, 1)
	assert.Equal(t, chat.ReplyKey("hello"), uc.ResponseCache[0].Context)
}

func TestSendFallsBackWhenContextSaveFails(t *testing.T) {
	f := newChatFixture(t)
	f.contexts.saveErr = errors.New("database is down")

	resp, err := f.svc.Send(context.Background(), "user-1", model.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	assert.False(t, resp.Context.Personalized)
	assert.Equal(t, "Hello! I'm SkillBridge AI, your career development assistant. How can I help you today?", resp.Message)
	assert.Empty(t, resp.Suggestions)
	assert.Len(t, f.chats.turns, 1, "the turn is stored even when personalization failed")
}

func TestSendSurvivesStoreAndPublishFailures(t *testing.T) {
	f := newChatFixture(t)
	f.chats.err = errors.New("insert failed")
	f.events.err = errors.New("nats unavailable")

	resp, err := f.svc.Send(context.Background(), "user-1", model.ChatRequest{Message: "hello"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
}

func TestSendReplyLanguage(t *testing.T) {
	ctx := context.Background()

	t.Run("requested", func(t *testing.T) {
		f := newChatFixture(t)
		resp, err := f.svc.Send(ctx, "", model.ChatRequest{Message: "hello", Language: language.Spanish})
		require.NoError(t, err)
		assert.Equal(t, language.Spanish, resp.Context.Language)
		assert.True(t, resp.Translated)
		assert.NotEqual(t, resp.OriginalMessage, resp.Message)
	})

	t.Run("detected", func(t *testing.T) {
		f := newChatFixture(t)
		resp, err := f.svc.Send(ctx, "", model.ChatRequest{Message: "नमस्ते"})
		require.NoError(t, err)
		assert.Equal(t, language.Nepali, resp.Context.Language)
	})

	t.Run("preference", func(t *testing.T) {
		f := newChatFixture(t)
		_, err := f.svc.contexts.UpdatePreferences(ctx, "user-1", model.PreferencesUpdate{PreferredLanguage: language.French})
		require.NoError(t, err)

		resp, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "hello"})
		require.NoError(t, err)
		assert.Equal(t, language.French, resp.Context.Language)
		assert.Equal(t, language.French, f.chats.turns[0].UserLanguage)
	})
}

func TestHistoryClampsLimit(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	for range 3 {
		_, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "hello", SessionID: "a"})
		require.NoError(t, err)
	}
	_, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "hello", SessionID: "b"})
	require.NoError(t, err)

	all, err := f.svc.History(ctx, "user-1", "", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)

	a, err := f.svc.History(ctx, "user-1", "a", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, a.Total)

	other, err := f.svc.History(ctx, "user-2", "", MaxHistoryLimit+1)
	require.NoError(t, err)
	assert.Zero(t, other.Total)
}

func TestPerformanceCountsTurns(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, err := f.svc.Send(ctx, "user-1", model.ChatRequest{Message: "hello"})
	require.NoError(t, err)
	_, err = f.svc.Send(ctx, "", model.ChatRequest{Message: "zzz qqq"})
	require.NoError(t, err)

	report := f.svc.Performance(ctx)
	assert.EqualValues(t, 2, report.TotalRequests)
	assert.EqualValues(t, 1, report.CacheHits)
	assert.EqualValues(t, 1, report.CacheMisses)
	assert.Equal(t, 1, report.ContextCache.ContextCacheSize)

	f.svc.ClearCaches(ctx)
	report = f.svc.Performance(ctx)
	assert.Zero(t, report.ContextCache.ContextCacheSize)
	assert.Zero(t, report.LanguageCache)
}

func TestLanguagesListsSupported(t *testing.T) {
	f := newChatFixture(t)
	assert.Len(t, f.svc.Languages(), len(language.Supported()))
}
