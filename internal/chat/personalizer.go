package chat

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

// MaxSuggestions caps the follow-ups attached to a reply.
const MaxSuggestions = 3

var entryAdditions = map[string]string{
	TopicResume:    " Since you're just starting your career, focus on highlighting your education, projects, and any relevant experience.",
	TopicInterview: " As an entry-level candidate, emphasize your potential, willingness to learn, and cultural fit.",
	TopicSkills:    " Start with foundational skills and build up gradually. Don't worry about having everything mastered yet.",
	TopicCareer:    " This is a great time to explore different paths and find what interests you most.",
}

var seniorAdditions = map[string]string{
	TopicResume:    " At your level, focus on strategic impact, leadership, and quantifiable business results.",
	TopicInterview: " Senior-level interviews focus on strategic thinking, leadership, and business impact.",
	TopicSkills:    " Consider executive education and thought leadership opportunities to advance further.",
	TopicCareer:    " Focus on legacy, mentorship, and strategic impact in your industry.",
}

var comprehensiveAdditions = map[string]string{
	TopicResume:    " Additionally, consider including a skills section, certifications, and relevant projects. Remember to quantify achievements where possible.",
	TopicInterview: " Also prepare for behavioral questions using the STAR method, research the company thoroughly, and prepare thoughtful questions to ask.",
	TopicSkills:    " Consider both technical and soft skills, and how they complement each other in your target role.",
	TopicCareer:    " Think about your long-term goals, work-life balance preferences, and the type of company culture that suits you best.",
}

// followUpTopics fixes the iteration order of followUps.
var followUpTopics = []string{TopicResume, TopicInterview, TopicSkills, TopicCareer}

var followUps = map[string][]string{
	TopicResume:    {"How to improve my resume?", "Resume format options", "What to include in resume"},
	TopicInterview: {"Common interview questions", "Interview preparation tips", "Behavioral interview techniques"},
	TopicSkills:    {"What skills should I learn next?", "Skills gap analysis", "Learning resources"},
	TopicCareer:    {"Career change advice", "Career advancement strategies", "Industry insights"},
}

var formalReplacer = strings.NewReplacer(
	"I'm", "I am",
	"you're", "you are",
	"don't", "do not",
	"can't", "cannot",
)

var casualReplacer = strings.NewReplacer(
	"I am", "I'm",
	"you are", "you're",
	"do not", "don't",
	"cannot", "can't",
)

// Personalized is a reply rewritten for one user.
type Personalized struct {
	Message     string
	Suggestions []string
	// FromCache is set when a remembered reply replaced the rewrite.
	FromCache bool
	// Cacheable is set when the reply should be remembered for its message.
	Cacheable bool
}

// Personalizer rewrites base replies according to a user's preferences.
// It is safe for concurrent use.
type Personalizer struct {
	mu   sync.Mutex
	rand *rand.Rand
}

// NewPersonalizer creates a personalizer drawing from r. A nil r uses the
// global source.
func NewPersonalizer(r *rand.Rand) *Personalizer {
	return &Personalizer{rand: r}
}

func (p *Personalizer) intn(n int) int {
	if p.rand == nil {
		return rand.IntN(n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rand.IntN(n)
}

// ReplyKey is the per-user reply cache key of a message.
func ReplyKey(message string) string {
	return strings.Join(strings.Fields(normalize(message)), " ")
}

// Personalize rewrites base for uc without mutating it. topic is the
// classified topic of message. Rewrites of exact-match replies are
// remembered per message and reused while the user's preferences hold.
func (p *Personalizer) Personalize(uc *model.UserContext, message, topic string, base Selection) Personalized {
	out := Personalized{Suggestions: p.FollowUps(uc, topic)}

	exact := base.Category == CategoryExactMatch
	if cached, ok := uc.CachedReply(ReplyKey(message)); ok && exact {
		out.Message = cached.Response
		out.FromCache = true
		return out
	}

	prefs := uc.Preferences
	msg := base.Message

	switch prefs.ExperienceLevel {
	case model.LevelEntry:
		msg += entryAdditions[topic]
	case model.LevelSenior:
		msg += seniorAdditions[topic]
	}

	switch prefs.CommunicationStyle {
	case model.StyleFormal:
		msg = MakeFormal(msg)
	case model.StyleCasual:
		msg = MakeCasual(msg)
	}

	switch prefs.ResponseLength {
	case model.LengthBrief:
		msg = MakeBrief(msg)
	case model.LengthComprehensive:
		msg += comprehensiveAdditions[topic]
	}

	out.Message = msg
	out.Cacheable = exact
	return out
}

// FollowUps returns up to MaxSuggestions follow-up prompts for topic.
func (p *Personalizer) FollowUps(uc *model.UserContext, topic string) []string {
	out := append(make([]string, 0, MaxSuggestions), followUps[topic]...)

	var unused []string
	for _, t := range followUpTopics {
		if !uc.HasRecentTopic(t) {
			unused = append(unused, t)
		}
	}
	if len(unused) > 0 && len(out) < MaxSuggestions {
		pick := unused[p.intn(len(unused))]
		out = append(out, fmt.Sprintf("Learn about %s", strings.Replace(pick, "_", " ", 1)))
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// MakeFormal expands common contractions.
func MakeFormal(s string) string {
	return formalReplacer.Replace(s)
}

// MakeCasual contracts common phrases.
func MakeCasual(s string) string {
	return casualReplacer.Replace(s)
}

// MakeBrief keeps the first two '.'-delimited segments.
func MakeBrief(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".") + "."
}
