package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserContextDefaults(t *testing.T) {
	c := NewUserContext("u1")

	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, LevelEntry, c.Preferences.ExperienceLevel)
	assert.Equal(t, StyleConversational, c.Preferences.CommunicationStyle)
	assert.Equal(t, LengthDetailed, c.Preferences.ResponseLength)
	assert.Equal(t, "en", c.Preferences.PreferredLanguage)
	assert.Equal(t, "visual", c.Preferences.LearningStyle)
}

func TestRecordTopicKeepsTenMostFrequent(t *testing.T) {
	c := NewUserContext("u1")
	now := time.Now()

	for i := 0; i < 11; i++ {
		c.RecordTopic(fmt.Sprintf("topic-%d", i), "s1", now)
	}

	require.Len(t, c.ContextMemory.RecentTopics, MaxRecentTopics)
	for _, tc := range c.ContextMemory.RecentTopics {
		assert.Equal(t, 1, tc.Frequency)
	}
	assert.Equal(t, "topic-0", c.ContextMemory.RecentTopics[0].Topic)
	assert.False(t, c.HasRecentTopic("topic-10"))
}

func TestRecordTopicRanksByFrequency(t *testing.T) {
	c := NewUserContext("u1")
	now := time.Now()

	c.RecordTopic("resume", "s1", now)
	c.RecordTopic("career", "s1", now)
	c.RecordTopic("career", "s1", now)
	c.RecordTopic("skills", "s1", now)

	topics := c.ContextMemory.RecentTopics
	require.Len(t, topics, 3)
	assert.Equal(t, "career", topics[0].Topic)
	assert.Equal(t, 2, topics[0].Frequency)
	assert.Equal(t, "resume", topics[1].Topic)
	assert.Equal(t, "skills", topics[2].Topic)
}

func TestRecordTopicBoundsSessionFlow(t *testing.T) {
	c := NewUserContext("u1")
	now := time.Now()

	for i := 0; i < MaxSessionFlows+5; i++ {
		c.RecordTopic("resume", fmt.Sprintf("s%d", i), now)
	}
	c.RecordTopic("career", "s24", now)
	c.RecordTopic("career", "s24", now)

	flows := c.ContextMemory.ConversationFlow
	require.Len(t, flows, MaxSessionFlows)
	assert.Equal(t, "s5", flows[0].SessionID)
	last := flows[len(flows)-1]
	assert.Equal(t, "s24", last.SessionID)
	assert.Equal(t, []string{"resume", "career"}, last.Topics)
}

func TestRecordConversation(t *testing.T) {
	c := NewUserContext("u1")
	now := time.Now()

	for i := 0; i < MaxMoodHistory+3; i++ {
		c.RecordConversation("resume", "neutral", "s1", now)
	}
	c.RecordConversation("career", "positive", "s2", now)

	h := c.ConversationHistory
	assert.Equal(t, MaxMoodHistory+4, h.TotalConversations)
	assert.Len(t, h.MoodHistory, MaxMoodHistory)
	assert.Equal(t, "positive", h.MoodHistory[MaxMoodHistory-1].Mood)
	require.Len(t, h.Topics, 2)
	assert.Equal(t, MaxMoodHistory+3, h.Topics[0].Frequency)
	assert.Equal(t, "s2", h.CurrentSessionID)
	require.NotNil(t, h.LastActiveSession)
}

func TestRunningAverages(t *testing.T) {
	c := NewUserContext("u1")

	c.RecordResponseTime(100 * time.Millisecond)
	c.RecordResponseTime(300 * time.Millisecond)
	assert.Equal(t, 2, c.Performance.TotalMessages)
	assert.InDelta(t, 200, c.Performance.AverageResponseTime, 0.001)

	c.RecordSatisfaction(5)
	c.RecordSatisfaction(2)
	assert.Equal(t, 2, c.Performance.SatisfactionCount)
	assert.InDelta(t, 3.5, c.Performance.SatisfactionScore, 0.001)
}

func TestResponseCache(t *testing.T) {
	c := NewUserContext("u1")

	c.RememberReply("resume", "low", 0.5)
	_, ok := c.CachedReply("resume")
	assert.False(t, ok)

	c.RememberReply("resume", "high", 1.0)
	got, ok := c.CachedReply("resume")
	require.True(t, ok)
	assert.Equal(t, "high", got.Response)
	assert.Len(t, c.ResponseCache, 1)

	for i := 0; i < MaxCachedResponses+5; i++ {
		c.RememberReply(fmt.Sprintf("k%d", i), "r", 1.0)
	}
	assert.Len(t, c.ResponseCache, MaxCachedResponses)
	_, ok = c.CachedReply("resume")
	assert.False(t, ok)

	c.ForgetReplies()
	assert.Empty(t, c.ResponseCache)
}

func TestCloneIsDeep(t *testing.T) {
	c := NewUserContext("u1")
	c.RecordTopic("resume", "s1", time.Now())
	c.Preferences.Skills = []string{"go"}

	cp := c.Clone()
	cp.RecordTopic("career", "s1", time.Now())
	cp.Preferences.Skills[0] = "rust"

	assert.Len(t, c.ContextMemory.RecentTopics, 1)
	assert.Equal(t, []string{"resume"}, c.ContextMemory.ConversationFlow[0].Topics)
	assert.Equal(t, "go", c.Preferences.Skills[0])
}

func TestPreferencesUpdateApply(t *testing.T) {
	p := DefaultPreferences()
	industry := "fintech"

	PreferencesUpdate{ExperienceLevel: LevelSenior, Industry: &industry, ResponseLength: LengthBrief}.Apply(&p)

	assert.Equal(t, LevelSenior, p.ExperienceLevel)
	assert.Equal(t, "fintech", p.Industry)
	assert.Equal(t, LengthBrief, p.ResponseLength)
	assert.Equal(t, StyleConversational, p.CommunicationStyle)
}

func TestInsightsTopFive(t *testing.T) {
	c := NewUserContext("u1")
	for i := 0; i < 8; i++ {
		c.RecordTopic(fmt.Sprintf("t%d", i), "s1", time.Now())
	}

	in := c.Insights()
	assert.Len(t, in.RecentTopics, 5)
}

func TestComplexityFor(t *testing.T) {
	assert.Equal(t, ComplexitySimple, ComplexityFor(99))
	assert.Equal(t, ComplexityModerate, ComplexityFor(100))
	assert.Equal(t, ComplexityComplex, ComplexityFor(500))
}
