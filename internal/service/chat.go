package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/skillbridge/skillbridge-api/internal/chat"
	"github.com/skillbridge/skillbridge-api/internal/language"
	"github.com/skillbridge/skillbridge-api/internal/model"
	"github.com/skillbridge/skillbridge-api/pkg/logger"
	"github.com/skillbridge/skillbridge-api/pkg/metrics"
	"github.com/skillbridge/skillbridge-api/pkg/tracing"
)

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// ChatStore persists chat turns.
type ChatStore interface {
	Create(ctx context.Context, t *model.ChatTurn) error
	History(ctx context.Context, userID, sessionID string, limit int) ([]model.ChatTurn, error)
}

// ChatStats are process-wide counters of the chat service.
type ChatStats struct {
	TotalRequests       int64   `json:"totalRequests"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	CacheHits           int64   `json:"cacheHits"`
	CacheMisses         int64   `json:"cacheMisses"`
}

// PerformanceReport is the body of GET /api/chat/performance.
type PerformanceReport struct {
	ChatStats
	ContextCache  ContextCacheStats `json:"contextCache"`
	LanguageCache int               `json:"languageCache"`
	Timestamp     time.Time         `json:"timestamp"`
}

// ChatService answers chat messages.
type ChatService struct {
	selector     *chat.Selector
	personalizer *chat.Personalizer
	contexts     *ContextService
	language     *language.Service
	chats        ChatStore
	events       EventPublisher
	logger       *logger.Logger

	mu    sync.Mutex
	stats ChatStats

	now func() time.Time
}

// NewChatService creates a chat service. A nil events uses NopPublisher.
func NewChatService(
	selector *chat.Selector,
	personalizer *chat.Personalizer,
	contexts *ContextService,
	lang *language.Service,
	chats ChatStore,
	events EventPublisher,
	log *logger.Logger,
) *ChatService {
	if events == nil {
		events = NopPublisher{}
	}
	return &ChatService{
		selector:     selector,
		personalizer: personalizer,
		contexts:     contexts,
		language:     lang,
		chats:        chats,
		events:       events,
		logger:       log.Named("chat"),
		now:          time.Now,
	}
}

// turn carries what the personalization step learned about one message.
type turn struct {
	reply        chat.Personalized
	prefs        model.Preferences
	snapshot     model.PersonalizationSnapshot
	personalized bool
}

func baseTurn(base chat.Selection) turn {
	uc := model.NewUserContext("")
	return turn{
		reply:    chat.Personalized{Message: base.Message, Suggestions: []string{}},
		prefs:    uc.Preferences,
		snapshot: uc.Snapshot(uc.Preferences.PreferredLanguage),
	}
}

// Send answers a message. userID may be empty for anonymous callers, who
// get the base reply without personalization or persistence.
func (s *ChatService) Send(ctx context.Context, userID string, req model.ChatRequest) (*model.ChatResponse, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, ErrEmptyMessage
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = model.DefaultSessionID
	}

	ctx, span := tracing.Tracer("chat").Start(ctx, "ChatService.Send")
	defer span.End()

	start := s.now()
	log := s.logger.With(zap.String("user_id", userID), zap.String("session_id", sessionID))

	detected := language.Detect(msg)
	cls := chat.Classify(msg)
	base := s.selector.Select(ctx, msg, userID)

	t := baseTurn(base)
	if userID != "" {
		t = s.personalize(ctx, log, userID, sessionID, msg, cls, base, start)
	}

	lang := s.replyLanguage(req.Language, detected, t.prefs)
	resp := model.ChatResponse{
		Message:     t.reply.Message,
		Suggestions: t.reply.Suggestions,
		Context: model.ChatContext{
			Category:     base.Category,
			Confidence:   base.Confidence,
			Language:     lang,
			Personalized: t.personalized,
		},
	}
	out := s.language.FormatResponse(ctx, resp, lang)

	elapsed := s.now().Sub(start)
	out.Context.ResponseTime = elapsed.Milliseconds()

	span.SetAttributes(
		attribute.String("chat.category", base.Category),
		attribute.String("chat.topic", cls.Topic),
		attribute.Float64("chat.confidence", base.Confidence),
		attribute.Bool("chat.personalized", t.personalized),
	)

	if userID != "" {
		t.snapshot.PreferredLanguage = lang
		s.persist(ctx, log, &model.ChatTurn{
			UserID:           userID,
			SessionID:        sessionID,
			UserMessage:      msg,
			AIResponse:       out.Message,
			Topic:            cls.Topic,
			Mood:             cls.Mood,
			Intent:           cls.Intent,
			Category:         base.Category,
			Confidence:       base.Confidence,
			Suggestions:      out.Suggestions,
			Personalization:  t.snapshot,
			UserLanguage:     lang,
			DetectedLanguage: detected,
			Translated:       out.Translated,
			LatencyMs:        elapsed.Milliseconds(),
			Complexity:       model.ComplexityFor(len(msg) + len(out.Message)),
		})
	}

	publishChatTurn(ctx, s.events, log, &model.ChatTurnEvent{
		ID:           model.NewID(),
		Type:         model.EventChatTurn,
		UserID:       userID,
		SessionID:    sessionID,
		Topic:        cls.Topic,
		Mood:         cls.Mood,
		Intent:       cls.Intent,
		Category:     base.Category,
		Confidence:   base.Confidence,
		Language:     lang,
		Personalized: t.personalized,
		LatencyMs:    elapsed.Milliseconds(),
		CreatedAt:    s.now().UTC(),
	})

	s.record(base, elapsed)
	metrics.RecordChatTurn(base.Category, t.personalized, elapsed.Seconds())

	return &out, nil
}

// personalize rewrites base for the user and folds the turn into their
// context in one versioned write. Failures fall back to the base reply.
func (s *ChatService) personalize(
	ctx context.Context,
	log *logger.Logger,
	userID, sessionID, msg string,
	cls chat.Classification,
	base chat.Selection,
	start time.Time,
) turn {
	var t turn
	_, err := s.contexts.Update(ctx, userID, func(uc *model.UserContext) error {
		t.prefs = uc.Preferences
		t.snapshot = uc.Snapshot(uc.Preferences.PreferredLanguage)
		t.reply = s.personalizer.Personalize(uc, msg, cls.Topic, base)

		now := s.now().UTC()
		uc.RecordConversation(cls.Topic, cls.Mood, sessionID, now)
		uc.RecordTopic(cls.Topic, sessionID, now)
		uc.RecordResponseTime(s.now().Sub(start))
		if t.reply.Cacheable {
			uc.RememberReply(chat.ReplyKey(msg), t.reply.Message, base.Confidence)
		}
		return nil
	})
	if err != nil {
		log.Warn("personalization failed, using base reply", zap.Error(err), zap.Int("message_length", len(msg)))
		return baseTurn(base)
	}
	t.personalized = true
	return t
}

// replyLanguage picks the reply language: the requested one, else a
// detected non-English language, else the user's preference.
func (s *ChatService) replyLanguage(requested, detected string, prefs model.Preferences) string {
	switch {
	case language.IsSupported(requested):
		return requested
	case detected != language.English:
		return detected
	case language.IsSupported(prefs.PreferredLanguage):
		return prefs.PreferredLanguage
	default:
		return language.English
	}
}

func (s *ChatService) persist(ctx context.Context, log *logger.Logger, t *model.ChatTurn) {
	if err := s.chats.Create(ctx, t); err != nil {
		log.Warn("failed to save chat turn", zap.Error(err))
	}
}

func (s *ChatService) record(base chat.Selection, elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.stats
	st.TotalRequests++
	ms := float64(elapsed.Microseconds()) / 1000
	st.AverageResponseTime += (ms - st.AverageResponseTime) / float64(st.TotalRequests)
	if base.Matched() {
		st.CacheHits++
	} else {
		st.CacheMisses++
	}
}

// History returns a user's turns oldest first. A zero limit uses
// DefaultHistoryLimit.
func (s *ChatService) History(ctx context.Context, userID, sessionID string, limit int) (*model.ChatHistoryResponse, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}
	turns, err := s.chats.History(ctx, userID, sessionID, limit)
	if err != nil {
		s.logger.Error("failed to load chat history", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return &model.ChatHistoryResponse{Chats: turns, Total: len(turns)}, nil
}

// Performance reports the service counters and cache sizes.
func (s *ChatService) Performance(ctx context.Context) PerformanceReport {
	s.mu.Lock()
	st := s.stats
	s.mu.Unlock()

	return PerformanceReport{
		ChatStats:     st,
		ContextCache:  s.contexts.CacheStats(ctx),
		LanguageCache: s.language.CacheSize(ctx),
		Timestamp:     s.now().UTC(),
	}
}

// Languages lists the supported reply languages.
func (s *ChatService) Languages() []language.Info {
	return language.Supported()
}

// ClearCaches drops the context and translation caches.
func (s *ChatService) ClearCaches(ctx context.Context) {
	s.contexts.ClearCache(ctx)
	s.language.ClearCache(ctx)
	s.logger.Info("chat caches cleared")
}

// recordError marks the current span as failed.
func recordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
