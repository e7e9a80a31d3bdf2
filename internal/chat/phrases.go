// Package chat implements the rule-based career assistant: message
// classification, reply selection and per-user personalization.
package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// ExactPhrase maps a whole normalized message to a reply.
type ExactPhrase struct {
	Phrase   string `yaml:"phrase"`
	Response string `yaml:"response"`
}

// Pattern maps a substring to a reply.
type Pattern struct {
	Pattern  string `yaml:"pattern"`
	Response string `yaml:"response"`
}

// Category groups exact phrases and patterns under a name.
type Category struct {
	Name     string        `yaml:"name"`
	Exact    []ExactPhrase `yaml:"exact"`
	Patterns []Pattern     `yaml:"patterns"`
}

// PhraseTable is the ordered set of reply categories.
type PhraseTable struct {
	Categories []Category `yaml:"categories"`
}

// LoadPhraseTable parses a phrase table from YAML.
func LoadPhraseTable(data []byte) (*PhraseTable, error) {
	var t PhraseTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse phrase table: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, fmt.Errorf("phrase table has no categories")
	}
	for i := range t.Categories {
		c := &t.Categories[i]
		if c.Name == "" {
			return nil, fmt.Errorf("phrase table category %d has no name", i)
		}
		for j := range c.Exact {
			c.Exact[j].Phrase = normalize(c.Exact[j].Phrase)
		}
		for j := range c.Patterns {
			c.Patterns[j].Pattern = strings.ToLower(c.Patterns[j].Pattern)
		}
	}
	return &t, nil
}

// DefaultPhraseTable returns the embedded phrase table.
func DefaultPhraseTable() *PhraseTable {
	t, err := LoadPhraseTable(defaultPhrases)
	if err != nil {
		panic(err)
	}
	return t
}

// Exact returns the reply for a normalized message matching an exact phrase
// in any category.
func (t *PhraseTable) Exact(msg string) (string, bool) {
	for _, c := range t.Categories {
		for _, e := range c.Exact {
			if e.Phrase == msg {
				return e.Response, true
			}
		}
	}
	return "", false
}

// Match returns the first pattern contained in msg, walking categories and
// patterns in declaration order.
func (t *PhraseTable) Match(msg string) (category string, hit Pattern, ok bool) {
	for _, c := range t.Categories {
		for _, p := range c.Patterns {
			if strings.Contains(msg, p.Pattern) {
				return c.Name, p, true
			}
		}
	}
	return "", Pattern{}, false
}

// Category looks a category up by name.
func (t *PhraseTable) Category(name string) (*Category, bool) {
	for i := range t.Categories {
		if t.Categories[i].Name == name {
			return &t.Categories[i], true
		}
	}
	return nil, false
}

// Pattern returns the reply for a named pattern within the category.
func (c *Category) Pattern(name string) (string, bool) {
	for _, p := range c.Patterns {
		if p.Pattern == name {
			return p.Response, true
		}
	}
	return "", false
}

// FirstExact returns the first exact reply of the category.
func (c *Category) FirstExact() (string, bool) {
	if len(c.Exact) == 0 {
		return "", false
	}
	return c.Exact[0].Response, true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
