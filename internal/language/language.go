// Package language detects the language of chat messages and swaps known
// English replies for stored translations.
package language

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/skillbridge/skillbridge-api/internal/cache"
	"github.com/skillbridge/skillbridge-api/internal/model"
)

//go:embed locales
var localesFS embed.FS

// Language codes.
const (
	English = "en"
	Nepali  = "ne"
	Hindi   = "hi"
	Spanish = "es"
	French  = "fr"
)

// Info describes a supported language.
type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

var supported = []Info{
	{Code: English, Name: "English", Flag: "🇺🇸"},
	{Code: Nepali, Name: "नेपाली", Flag: "🇳🇵"},
	{Code: Hindi, Name: "हिंदी", Flag: "🇮🇳"},
	{Code: Spanish, Name: "Español", Flag: "🇪🇸"},
	{Code: French, Name: "Français", Flag: "🇫🇷"},
}

// phraseKey pairs a locale key with the English substrings that select it.
type phraseKey struct {
	key     string
	markers []string
}

// Checked in order; the first category with a marker present wins.
var phraseKeys = []phraseKey{
	{"greetings", []string{"hello", "hi"}},
	{"identity", []string{"what is your name", "who are you"}},
	{"resume", []string{"what is resume", "what is cv"}},
	{"help", []string{"help"}},
	{"thanks", []string{"thank you", "thanks"}},
}

const (
	spanishMarks = "áéíóúñü"
	frenchMarks  = "àâäéèêëïîôöùûüÿç"
)

// Service translates replies using the embedded locale tables.
type Service struct {
	translations map[string]map[string]string
	cache        cache.Cache[string, string]
}

// NewService loads every supported locale from the embedded files.
func NewService(c cache.Cache[string, string]) (*Service, error) {
	return newService(localesFS, c)
}

func newService(fsys fs.FS, c cache.Cache[string, string]) (*Service, error) {
	s := &Service{
		translations: make(map[string]map[string]string, len(supported)),
		cache:        c,
	}
	for _, info := range supported {
		p := path.Join("locales", info.Code+".yaml")
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", p, err)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse translation file %s: %w", p, err)
		}
		s.translations[info.Code] = table
	}
	return s, nil
}

// Detect guesses a language code from the script and diacritics in text.
// Devanagari is reported as Nepali.
func Detect(text string) string {
	for _, r := range text {
		if unicode.In(r, unicode.Devanagari) {
			return Nepali
		}
	}
	lower := strings.ToLower(text)
	if strings.ContainsAny(lower, spanishMarks) {
		return Spanish
	}
	if strings.ContainsAny(lower, frenchMarks) {
		return French
	}
	return English
}

// Supported lists the languages replies can be formatted for.
func Supported() []Info {
	return append([]Info(nil), supported...)
}

// IsSupported reports whether code names a supported language.
func IsSupported(code string) bool {
	for _, info := range supported {
		if info.Code == code {
			return true
		}
	}
	return false
}

// Lookup returns the info for code, or English when unknown.
func Lookup(code string) Info {
	for _, info := range supported {
		if info.Code == code {
			return info
		}
	}
	return supported[0]
}

// Translate returns the stored translation of text into target, or text
// itself when no known phrase matches.
func (s *Service) Translate(ctx context.Context, text, target, source string) string {
	if target == source {
		return text
	}

	key := text + "|" + source + "|" + target
	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, key); ok {
			return v
		}
	}

	out := text
	if t, ok := s.commonTranslation(text, target); ok {
		out = t
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, out)
	}
	return out
}

func (s *Service) commonTranslation(text, target string) (string, bool) {
	lower := strings.ToLower(text)
	for _, pk := range phraseKeys {
		for _, m := range pk.markers {
			if !strings.Contains(lower, m) {
				continue
			}
			if t, ok := s.translations[target][pk.key]; ok {
				return t, true
			}
			return s.translations[English][pk.key], true
		}
	}
	return "", false
}

// FormatResponse translates the message and suggestions of resp into code.
// English replies pass through untouched.
func (s *Service) FormatResponse(ctx context.Context, resp model.ChatResponse, code string) model.ChatResponse {
	if code == "" || code == English {
		return resp
	}

	out := resp
	out.OriginalMessage = resp.Message
	out.Message = s.Translate(ctx, resp.Message, code, English)
	out.Suggestions = make([]string, len(resp.Suggestions))
	for i, sug := range resp.Suggestions {
		out.Suggestions[i] = s.Translate(ctx, sug, code, English)
	}
	out.Translated = true
	return out
}

// ClearCache drops every cached translation.
func (s *Service) ClearCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Purge(ctx)
	}
}

// CacheSize reports the number of cached translations.
func (s *Service) CacheSize(ctx context.Context) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len(ctx)
}
