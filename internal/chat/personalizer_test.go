package chat

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

func newTestPersonalizer() *Personalizer {
	return NewPersonalizer(rand.New(rand.NewPCG(1, 2)))
}

func TestMakeFormalIsIdempotent(t *testing.T) {
	in := "I'm sure you're fine, don't worry, I can't wait."

	once := MakeFormal(in)
	twice := MakeFormal(once)

	assert.Equal(t, "I am sure you are fine, do not worry, I cannot wait.", once)
	assert.Equal(t, once, twice)
}

func TestMakeCasual(t *testing.T) {
	assert.Equal(t, "I'm here and you're welcome, don't stop, I can't.", MakeCasual("I am here and you are welcome, do not stop, I cannot."))
}

func TestMakeBrief(t *testing.T) {
	assert.Equal(t, "One. Two.", MakeBrief("One. Two. Three. Four."))
	assert.Equal(t, "Only one.", MakeBrief("Only one"))
}

func TestPersonalizeEntryLevel(t *testing.T) {
	uc := model.NewUserContext("u1")
	p := newTestPersonalizer()

	out := p.Personalize(uc, "how do i improve my resume", TopicResume, Selection{Message: "Base.", Confidence: 0.9, Category: "resume"})

	assert.Equal(t, "Base."+entryAdditions[TopicResume], out.Message)
	assert.False(t, out.FromCache)
	assert.False(t, out.Cacheable)
}

func TestPersonalizeMidLevelFormalComprehensive(t *testing.T) {
	uc := model.NewUserContext("u1")
	uc.Preferences.ExperienceLevel = model.LevelMid
	uc.Preferences.CommunicationStyle = model.StyleFormal
	uc.Preferences.ResponseLength = model.LengthComprehensive
	p := newTestPersonalizer()

	out := p.Personalize(uc, "career", TopicCareer, Selection{Message: "I'm here.", Confidence: 1.0, Category: CategoryExactMatch})

	assert.Equal(t, "I am here."+comprehensiveAdditions[TopicCareer], out.Message)
	assert.True(t, out.Cacheable)
}

func TestPersonalizeSeniorBrief(t *testing.T) {
	uc := model.NewUserContext("u1")
	uc.Preferences.ExperienceLevel = model.LevelSenior
	uc.Preferences.ResponseLength = model.LengthBrief
	p := newTestPersonalizer()

	out := p.Personalize(uc, "interview tips", TopicInterview, Selection{Message: "First. Second. Third.", Confidence: 0.9})

	assert.Equal(t, "First. Second.", out.Message)
}

func TestPersonalizeReusesRememberedExactReply(t *testing.T) {
	uc := model.NewUserContext("u1")
	uc.RememberReply(ReplyKey("  Hello  "), "remembered", 1.0)
	p := newTestPersonalizer()

	out := p.Personalize(uc, "hello", TopicGeneral, Selection{Message: "Base.", Confidence: 1.0, Category: CategoryExactMatch})
	assert.True(t, out.FromCache)
	assert.Equal(t, "remembered", out.Message)
	assert.NotEmpty(t, out.Suggestions)
}

func TestPersonalizeIgnoresRememberedReplyForOtherMessages(t *testing.T) {
	uc := model.NewUserContext("u1")
	uc.RememberReply(ReplyKey("what is resume"), "remembered", 1.0)
	p := newTestPersonalizer()

	out := p.Personalize(uc, "any interview advice for my resume gaps?", TopicResume,
		Selection{Message: "Keyword reply.", Confidence: 0.9, Category: "resume"})
	assert.False(t, out.FromCache)
	assert.NotEqual(t, "remembered", out.Message)
	assert.False(t, out.Cacheable)
}

func TestPersonalizeSameMessageOnLowerTierIsNotReplaced(t *testing.T) {
	uc := model.NewUserContext("u1")
	uc.RememberReply(ReplyKey("what should i learn next"), "remembered", 1.0)
	p := newTestPersonalizer()

	out := p.Personalize(uc, "what should i learn next", TopicSkills,
		Selection{Message: "Focus on Go.", Confidence: 1.0, Category: CategoryContextAwareSkills})
	assert.False(t, out.FromCache)
	assert.False(t, out.Cacheable)
}

func TestReplyKeyNormalizesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, "what is a resume", ReplyKey("  What   is a\tRESUME "))
}

func TestFollowUpsConcurrentUse(t *testing.T) {
	p := newTestPersonalizer()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uc := model.NewUserContext("u1")
			for j := 0; j < 100; j++ {
				out := p.FollowUps(uc, TopicGeneral)
				assert.Len(t, out, 1)
			}
		}()
	}
	wg.Wait()
}

func TestFollowUpsFixedList(t *testing.T) {
	uc := model.NewUserContext("u1")
	p := newTestPersonalizer()

	assert.Equal(t, followUps[TopicSkills], p.FollowUps(uc, TopicSkills))
}

func TestFollowUpsLearnAboutUnvisitedTopic(t *testing.T) {
	uc := model.NewUserContext("u1")
	now := time.Now()
	for _, topic := range []string{TopicResume, TopicInterview, TopicCareer} {
		uc.RecordTopic(topic, "s1", now)
	}
	p := newTestPersonalizer()

	out := p.FollowUps(uc, TopicGeneral)

	require.Len(t, out, 1)
	assert.Equal(t, "Learn about skills", out[0])
}

func TestFollowUpsRandomChoiceIsUniformOverUnvisited(t *testing.T) {
	uc := model.NewUserContext("u1")
	p := newTestPersonalizer()
	seen := map[string]bool{}

	for i := 0; i < 200; i++ {
		out := p.FollowUps(uc, TopicGeneral)
		require.Len(t, out, 1)
		require.True(t, strings.HasPrefix(out[0], "Learn about "))
		seen[out[0]] = true
	}

	assert.Len(t, seen, len(followUpTopics))
}

func TestFollowUpsNoneLeft(t *testing.T) {
	uc := model.NewUserContext("u1")
	for _, topic := range followUpTopics {
		uc.RecordTopic(topic, "s1", time.Now())
	}
	p := newTestPersonalizer()

	out := p.FollowUps(uc, TopicGeneral)

	assert.NotNil(t, out)
	assert.Empty(t, out)
}
