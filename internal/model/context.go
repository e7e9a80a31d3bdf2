package model

import (
	"sort"
	"time"
)

const (
	// MaxMoodHistory bounds ConversationHistory.MoodHistory.
	MaxMoodHistory = 50
	// MaxRecentTopics bounds ContextMemory.RecentTopics.
	MaxRecentTopics = 10
	// MaxSessionFlows bounds ContextMemory.ConversationFlow.
	MaxSessionFlows = 20
	// MaxCachedResponses bounds UserContext.ResponseCache.
	MaxCachedResponses = 20
	// CacheReuseConfidence is the floor a cached reply must exceed to be reused.
	CacheReuseConfidence = 0.8
)

// Experience levels.
const (
	LevelEntry  = "entry"
	LevelMid    = "mid"
	LevelSenior = "senior"
)

// Communication styles.
const (
	StyleFormal         = "formal"
	StyleCasual         = "casual"
	StyleTechnical      = "technical"
	StyleConversational = "conversational"
)

// Response lengths.
const (
	LengthBrief         = "brief"
	LengthDetailed      = "detailed"
	LengthComprehensive = "comprehensive"
)

// Preferences shape how replies are personalized.
type Preferences struct {
	ExperienceLevel    string   `json:"experienceLevel"`
	Industry           string   `json:"industry,omitempty"`
	CareerGoals        []string `json:"careerGoals,omitempty"`
	Skills             []string `json:"skills,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	PreferredLanguage  string   `json:"preferredLanguage"`
	LearningStyle      string   `json:"learningStyle"`
	CommunicationStyle string   `json:"communicationStyle"`
	ResponseLength     string   `json:"responseLength"`
}

// DefaultPreferences are applied to a freshly created context.
func DefaultPreferences() Preferences {
	return Preferences{
		ExperienceLevel:    LevelEntry,
		PreferredLanguage:  "en",
		LearningStyle:      "visual",
		CommunicationStyle: StyleConversational,
		ResponseLength:     LengthDetailed,
	}
}

// TopicCount is a frequency entry for one topic.
type TopicCount struct {
	Topic         string    `json:"topic"`
	Frequency     int       `json:"frequency"`
	LastDiscussed time.Time `json:"lastDiscussed"`
}

// MoodEntry is one observed mood.
type MoodEntry struct {
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationHistory accumulates counters across all turns.
type ConversationHistory struct {
	TotalConversations int          `json:"totalConversations"`
	LastActiveSession  *time.Time   `json:"lastActiveSession,omitempty"`
	CurrentSessionID   string       `json:"currentSessionId,omitempty"`
	Topics             []TopicCount `json:"conversationTopics"`
	MoodHistory        []MoodEntry  `json:"userMoodHistory"`
}

// SessionFlow is the ordered set of topics seen in one session.
type SessionFlow struct {
	SessionID string   `json:"sessionId"`
	Topics    []string `json:"topics"`
}

// ContextMemory holds the short-term view used for follow-ups.
type ContextMemory struct {
	RecentTopics     []TopicCount  `json:"recentTopics"`
	ConversationFlow []SessionFlow `json:"conversationFlow"`
}

// Performance tracks per-user reply statistics.
type Performance struct {
	TotalMessages       int     `json:"totalMessages"`
	AverageResponseTime float64 `json:"averageResponseTime"`
	SatisfactionScore   float64 `json:"satisfactionScore"`
	SatisfactionCount   int     `json:"satisfactionCount"`
}

// CachedResponse is a reply remembered for a context key.
type CachedResponse struct {
	Context    string  `json:"context"`
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
}

// UserContext is the per-user personalization state. Version guards
// concurrent writers: a save succeeds only against the version it loaded.
type UserContext struct {
	UserID              string              `json:"userId" gorm:"primaryKey;size:36"`
	Preferences         Preferences         `json:"preferences" gorm:"serializer:json"`
	ConversationHistory ConversationHistory `json:"conversationHistory" gorm:"serializer:json"`
	ContextMemory       ContextMemory       `json:"contextMemory" gorm:"serializer:json"`
	Performance         Performance         `json:"performance" gorm:"serializer:json"`
	ResponseCache       []CachedResponse    `json:"cache" gorm:"serializer:json"`
	Version             int64               `json:"version" gorm:"not null;default:0"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
}

// NewUserContext returns an empty context with default preferences.
func NewUserContext(userID string) *UserContext {
	return &UserContext{
		UserID:      userID,
		Preferences: DefaultPreferences(),
	}
}

// Clone returns a deep copy so cached values are never mutated in place.
func (c *UserContext) Clone() *UserContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Preferences.CareerGoals = append([]string(nil), c.Preferences.CareerGoals...)
	out.Preferences.Skills = append([]string(nil), c.Preferences.Skills...)
	out.Preferences.Interests = append([]string(nil), c.Preferences.Interests...)
	if c.ConversationHistory.LastActiveSession != nil {
		t := *c.ConversationHistory.LastActiveSession
		out.ConversationHistory.LastActiveSession = &t
	}
	out.ConversationHistory.Topics = append([]TopicCount(nil), c.ConversationHistory.Topics...)
	out.ConversationHistory.MoodHistory = append([]MoodEntry(nil), c.ConversationHistory.MoodHistory...)
	out.ContextMemory.RecentTopics = append([]TopicCount(nil), c.ContextMemory.RecentTopics...)
	out.ContextMemory.ConversationFlow = make([]SessionFlow, len(c.ContextMemory.ConversationFlow))
	for i, f := range c.ContextMemory.ConversationFlow {
		out.ContextMemory.ConversationFlow[i] = SessionFlow{
			SessionID: f.SessionID,
			Topics:    append([]string(nil), f.Topics...),
		}
	}
	out.ResponseCache = append([]CachedResponse(nil), c.ResponseCache...)
	return &out
}

// RecordConversation counts a turn, its topic and its mood.
func (c *UserContext) RecordConversation(topic, mood, sessionID string, now time.Time) {
	h := &c.ConversationHistory
	h.TotalConversations++
	h.LastActiveSession = &now
	h.CurrentSessionID = sessionID
	h.Topics = bumpTopic(h.Topics, topic, now)

	h.MoodHistory = append(h.MoodHistory, MoodEntry{Mood: mood, Timestamp: now})
	if n := len(h.MoodHistory); n > MaxMoodHistory {
		h.MoodHistory = append([]MoodEntry(nil), h.MoodHistory[n-MaxMoodHistory:]...)
	}
}

// RecordTopic updates recent topics and the session flow.
func (c *UserContext) RecordTopic(topic, sessionID string, now time.Time) {
	m := &c.ContextMemory
	m.RecentTopics = bumpTopic(m.RecentTopics, topic, now)
	sort.SliceStable(m.RecentTopics, func(i, j int) bool {
		return m.RecentTopics[i].Frequency > m.RecentTopics[j].Frequency
	})
	if len(m.RecentTopics) > MaxRecentTopics {
		m.RecentTopics = m.RecentTopics[:MaxRecentTopics]
	}

	found := false
	for i := range m.ConversationFlow {
		f := &m.ConversationFlow[i]
		if f.SessionID != sessionID {
			continue
		}
		found = true
		if !containsString(f.Topics, topic) {
			f.Topics = append(f.Topics, topic)
		}
		break
	}
	if !found {
		m.ConversationFlow = append(m.ConversationFlow, SessionFlow{SessionID: sessionID, Topics: []string{topic}})
	}
	if n := len(m.ConversationFlow); n > MaxSessionFlows {
		m.ConversationFlow = append([]SessionFlow(nil), m.ConversationFlow[n-MaxSessionFlows:]...)
	}
}

// RecordResponseTime folds one latency sample into the running mean.
func (c *UserContext) RecordResponseTime(d time.Duration) {
	p := &c.Performance
	p.TotalMessages++
	ms := float64(d.Microseconds()) / 1000
	p.AverageResponseTime += (ms - p.AverageResponseTime) / float64(p.TotalMessages)
}

// RecordSatisfaction folds one 1-5 rating into the running mean.
func (c *UserContext) RecordSatisfaction(rating int) {
	p := &c.Performance
	p.SatisfactionCount++
	p.SatisfactionScore += (float64(rating) - p.SatisfactionScore) / float64(p.SatisfactionCount)
}

// HasRecentTopic reports whether topic is among the recent topics.
func (c *UserContext) HasRecentTopic(topic string) bool {
	for _, t := range c.ContextMemory.RecentTopics {
		if t.Topic == topic {
			return true
		}
	}
	return false
}

// CachedReply returns a remembered reply for key when its confidence
// exceeds CacheReuseConfidence.
func (c *UserContext) CachedReply(key string) (CachedResponse, bool) {
	for _, r := range c.ResponseCache {
		if r.Context == key && r.Confidence > CacheReuseConfidence {
			return r, true
		}
	}
	return CachedResponse{}, false
}

// RememberReply stores a reply for key, replacing any previous one and
// evicting the oldest entry past MaxCachedResponses.
func (c *UserContext) RememberReply(key, response string, confidence float64) {
	kept := c.ResponseCache[:0:0]
	for _, r := range c.ResponseCache {
		if r.Context != key {
			kept = append(kept, r)
		}
	}
	kept = append(kept, CachedResponse{Context: key, Response: response, Confidence: confidence})
	if n := len(kept); n > MaxCachedResponses {
		kept = kept[n-MaxCachedResponses:]
	}
	c.ResponseCache = kept
}

// ForgetReplies drops every cached reply.
func (c *UserContext) ForgetReplies() {
	c.ResponseCache = nil
}

// Snapshot captures the preferences that shaped a turn.
func (c *UserContext) Snapshot(language string) PersonalizationSnapshot {
	return PersonalizationSnapshot{
		ExperienceLevel:    c.Preferences.ExperienceLevel,
		Industry:           c.Preferences.Industry,
		PreferredLanguage:  language,
		LearningStyle:      c.Preferences.LearningStyle,
		CommunicationStyle: c.Preferences.CommunicationStyle,
		ResponseLength:     c.Preferences.ResponseLength,
	}
}

func bumpTopic(list []TopicCount, topic string, now time.Time) []TopicCount {
	for i := range list {
		if list[i].Topic == topic {
			list[i].Frequency++
			list[i].LastDiscussed = now
			return list
		}
	}
	return append(list, TopicCount{Topic: topic, Frequency: 1, LastDiscussed: now})
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PreferencesUpdate is the body of PUT /api/chat/preferences. Empty fields
// leave the stored value alone.
type PreferencesUpdate struct {
	ExperienceLevel    string   `json:"experienceLevel" validate:"omitempty,oneof=entry mid senior"`
	Industry           *string  `json:"industry" validate:"omitempty,max=100"`
	CareerGoals        []string `json:"careerGoals" validate:"omitempty,max=20,dive,max=100"`
	Skills             []string `json:"skills" validate:"omitempty,max=50,dive,max=64"`
	Interests          []string `json:"interests" validate:"omitempty,max=20,dive,max=64"`
	PreferredLanguage  string   `json:"preferredLanguage" validate:"omitempty,oneof=en ne hi es fr"`
	LearningStyle      string   `json:"learningStyle" validate:"omitempty,oneof=visual auditory kinesthetic reading"`
	CommunicationStyle string   `json:"communicationStyle" validate:"omitempty,oneof=formal casual technical conversational"`
	ResponseLength     string   `json:"responseLength" validate:"omitempty,oneof=brief detailed comprehensive"`
}

// Apply merges the update into p.
func (u PreferencesUpdate) Apply(p *Preferences) {
	if u.ExperienceLevel != "" {
		p.ExperienceLevel = u.ExperienceLevel
	}
	if u.Industry != nil {
		p.Industry = *u.Industry
	}
	if u.CareerGoals != nil {
		p.CareerGoals = u.CareerGoals
	}
	if u.Skills != nil {
		p.Skills = u.Skills
	}
	if u.Interests != nil {
		p.Interests = u.Interests
	}
	if u.PreferredLanguage != "" {
		p.PreferredLanguage = u.PreferredLanguage
	}
	if u.LearningStyle != "" {
		p.LearningStyle = u.LearningStyle
	}
	if u.CommunicationStyle != "" {
		p.CommunicationStyle = u.CommunicationStyle
	}
	if u.ResponseLength != "" {
		p.ResponseLength = u.ResponseLength
	}
}

// Insights is the read model behind GET /api/chat/insights.
type Insights struct {
	Preferences         Preferences         `json:"preferences"`
	ConversationHistory ConversationHistory `json:"conversationHistory"`
	Performance         Performance         `json:"performance"`
	RecentTopics        []TopicCount        `json:"recentTopics"`
}

// Insights summarizes the context, keeping the five most frequent topics.
func (c *UserContext) Insights() Insights {
	top := c.ContextMemory.RecentTopics
	if len(top) > 5 {
		top = top[:5]
	}
	return Insights{
		Preferences:         c.Preferences,
		ConversationHistory: c.ConversationHistory,
		Performance:         c.Performance,
		RecentTopics:        append([]TopicCount(nil), top...),
	}
}
