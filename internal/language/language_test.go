package language

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/model"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(cache.NewMemory[string, string]("translation", 100, time.Minute))
	require.NoError(t, err)
	return s
}

func TestDetect(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"नमस्ते", Nepali},
		{"मुझे मदद चाहिए", Nepali},
		{"Hola señor", Spanish},
		{"ÑANDÚ", Spanish},
		{"très bien", French},
		{"ça va", French},
		{"hello", English},
		{"", English},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.text))
		})
	}
}

func TestSupported(t *testing.T) {
	langs := Supported()
	require.Len(t, langs, 5)
	assert.Equal(t, "en", langs[0].Code)
	assert.True(t, IsSupported("ne"))
	assert.False(t, IsSupported("de"))
	assert.Equal(t, "Español", Lookup("es").Name)
	assert.Equal(t, "English", Lookup("xx").Name)
}

func TestTranslateKnownPhrases(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	got := s.Translate(ctx, "Hello! I'm SkillBridge AI, your career development assistant. How can I help you today?", Spanish, English)
	assert.Equal(t, s.translations[Spanish]["greetings"], got)

	got = s.Translate(ctx, "You're very welcome! Thanks again.", French, English)
	assert.Equal(t, s.translations[French]["thanks"], got)

	assert.Equal(t, "Career change advice", s.Translate(ctx, "Career change advice", Nepali, English))
	assert.Equal(t, "same", s.Translate(ctx, "same", English, English))
}

func TestTranslateCaches(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	s.Translate(ctx, "help me", Hindi, English)
	s.Translate(ctx, "help me", Hindi, English)
	assert.Equal(t, 1, s.CacheSize(ctx))

	s.ClearCache(ctx)
	assert.Zero(t, s.CacheSize(ctx))
}

func TestFormatResponse(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	resp := model.ChatResponse{
		Message:     "I'm here to help! Ask away.",
		Suggestions: []string{"Career change advice"},
		Context:     model.ChatContext{Category: "general", Language: Nepali},
	}

	out := s.FormatResponse(ctx, resp, Nepali)

	assert.Equal(t, s.translations[Nepali]["help"], out.Message)
	assert.Equal(t, resp.Message, out.OriginalMessage)
	assert.True(t, out.Translated)
	assert.Equal(t, []string{"Career change advice"}, out.Suggestions)
	assert.Equal(t, "general", out.Context.Category)

	same := s.FormatResponse(ctx, resp, English)
	assert.Equal(t, resp, same)
	assert.False(t, same.Translated)
}

func TestNewServiceMissingLocale(t *testing.T) {
	fsys := fstest.MapFS{"locales/en.yaml": {Data: []byte("greetings: hi")}}

	_, err := newService(fsys, nil)

	assert.Error(t, err)
}
