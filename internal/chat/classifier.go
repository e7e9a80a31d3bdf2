package chat

import "strings"

// Topics.
const (
	TopicResume           = "resume"
	TopicInterview        = "interview"
	TopicCareer           = "career"
	TopicSkills           = "skills"
	TopicSalary           = "salary"
	TopicNetworking       = "networking"
	TopicLeadership       = "leadership"
	TopicCommunication    = "communication"
	TopicTimeManagement   = "time_management"
	TopicLinkedIn         = "linkedin"
	TopicRemoteWork       = "remote_work"
	TopicFreelancing      = "freelancing"
	TopicPersonalBranding = "personal_branding"
	TopicGeneral          = "general"
)

// Moods.
const (
	MoodPositive   = "positive"
	MoodFrustrated = "frustrated"
	MoodConcerned  = "concerned"
	MoodNeutral    = "neutral"
)

// Intents.
const (
	IntentQuestion           = "question"
	IntentHelpRequest        = "help_request"
	IntentGratitude          = "gratitude"
	IntentFarewell           = "farewell"
	IntentGreeting           = "greeting"
	IntentInformationRequest = "information_request"
)

type rule struct {
	label    string
	keywords []string
}

var topicRules = []rule{
	{TopicResume, []string{"resume", "cv"}},
	{TopicInterview, []string{"interview"}},
	{TopicCareer, []string{"career", "job"}},
	{TopicSkills, []string{"skill", "learn"}},
	{TopicSalary, []string{"salary", "pay"}},
	{TopicNetworking, []string{"network"}},
	{TopicLeadership, []string{"leadership"}},
	{TopicCommunication, []string{"communication"}},
	{TopicTimeManagement, []string{"time management"}},
	{TopicLinkedIn, []string{"linkedin"}},
	{TopicRemoteWork, []string{"remote", "work"}},
	{TopicFreelancing, []string{"freelance"}},
	{TopicPersonalBranding, []string{"brand", "personal"}},
}

var intentRules = []rule{
	{IntentQuestion, []string{"what", "how", "why"}},
	{IntentHelpRequest, []string{"help", "assist"}},
	{IntentGratitude, []string{"thank"}},
	{IntentFarewell, []string{"goodbye", "bye"}},
	{IntentGreeting, []string{"hello", "hi"}},
}

var (
	positiveWords  = []string{"great", "awesome", "excellent", "good", "happy", "excited", "thank", "love", "amazing"}
	negativeWords  = []string{"frustrated", "worried", "confused", "stressed", "difficult", "help", "problem", "issue", "bad"}
	concernedWords = []string{"concerned", "unsure", "maybe", "think", "wonder", "question"}
)

// Classification is the coarse labelling of one message.
type Classification struct {
	Topic  string `json:"topic"`
	Mood   string `json:"mood"`
	Intent string `json:"intent"`
}

// Classify labels a message by case-insensitive substring matching.
func Classify(message string) Classification {
	msg := strings.ToLower(message)
	return Classification{
		Topic:  firstRule(msg, topicRules, TopicGeneral),
		Mood:   detectMood(msg),
		Intent: firstRule(msg, intentRules, IntentInformationRequest),
	}
}

// DetectTopic returns only the topic label of a message.
func DetectTopic(message string) string {
	return firstRule(strings.ToLower(message), topicRules, TopicGeneral)
}

func firstRule(msg string, rules []rule, fallback string) string {
	for _, r := range rules {
		if containsAny(msg, r.keywords) {
			return r.label
		}
	}
	return fallback
}

func detectMood(msg string) string {
	pos := countPresent(msg, positiveWords)
	neg := countPresent(msg, negativeWords)
	con := countPresent(msg, concernedWords)

	switch {
	case pos > neg && pos > con:
		return MoodPositive
	case neg > pos:
		return MoodFrustrated
	case con > 0:
		return MoodConcerned
	default:
		return MoodNeutral
	}
}

func containsAny(msg string, words []string) bool {
	for _, w := range words {
		if strings.Contains(msg, w) {
			return true
		}
	}
	return false
}

func countPresent(msg string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(msg, w) {
			n++
		}
	}
	return n
}
