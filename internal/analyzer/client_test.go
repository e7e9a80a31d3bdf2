package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge/skillbridge-api/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, Timeout: timeout, HealthTimeout: timeout}, nil)
}

func TestAnalyze(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze-resume", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "resume text", body["text"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"extracted_skills": ["Go", "SQL"],
			"experience_years": {"total_years": 4.5, "mentions": [4.5]},
			"keywords": ["backend"],
			"predicted_career_domains": ["Data Engineering", "Backend"],
			"domain_match_scores": {"Data Engineering": 72.5},
			"learning_gaps": [{"domain": "Data Engineering", "missing_skills": ["Airflow"], "priority": "High"}]
		}`))
	}, time.Second)

	res, err := c.Analyze(context.Background(), "resume text")
	require.NoError(t, err)

	var a model.Analysis
	res.ApplyTo(&a)

	assert.Equal(t, []string{"Go", "SQL"}, []string(a.ExtractedSkills))
	assert.Equal(t, 4.5, a.ExperienceYears.TotalYears)
	assert.Equal(t, 72.5, a.DomainMatchScores["Data Engineering"])
	require.Len(t, a.LearningGaps, 1)
	assert.Equal(t, model.PriorityHigh, a.LearningGaps[0].Priority)
	assert.Equal(t, []string{"Airflow"}, a.LearningGaps[0].MissingSkills)
	assert.Equal(t, model.AnalysisSummary{
		TotalSkillsFound: 2,
		YearsExperience:  4.5,
		TopDomain:        "Data Engineering",
		GapsIdentified:   1,
	}, a.Summary)
}

func TestApplyToEmptyResult(t *testing.T) {
	var a model.Analysis
	(&Result{LearningGaps: []resultGap{{Domain: "X", Priority: "Urgent"}}}).ApplyTo(&a)

	assert.Equal(t, "Unknown", a.Summary.TopDomain)
	assert.NotNil(t, a.ExtractedSkills)
	assert.NotNil(t, a.ExperienceYears.Mentions)
	assert.Equal(t, model.PriorityMedium, a.LearningGaps[0].Priority)
	assert.NotNil(t, a.LearningGaps[0].MissingSkills)
}

func TestApplyToKeepsAnalyzerSummary(t *testing.T) {
	var a model.Analysis
	(&Result{
		ExtractedSkills: []string{"Go"},
		Summary:         &resultSummary{TotalSkillsFound: 9, TopDomain: "Backend"},
	}).ApplyTo(&a)

	assert.Equal(t, 9, a.Summary.TotalSkillsFound)
	assert.Equal(t, "Backend", a.Summary.TopDomain)
}

func TestAnalyzeUpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "No text provided"}`))
	}, time.Second)

	_, err := c.Analyze(context.Background(), "")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindUpstream, ae.Kind)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "Analysis failed: No text provided", ae.UserMessage())
}

func TestAnalyzeUpstreamStatusText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, time.Second)

	_, err := c.Analyze(context.Background(), "x")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Analysis failed: Internal Server Error", ae.UserMessage())
}

func TestAnalyzeTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	_, err := c.Analyze(context.Background(), "x")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindTimeout, ae.Kind)
	assert.Equal(t, "Analysis request timed out", ae.UserMessage())
}

func TestAnalyzeUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(Config{BaseURL: url}, nil)

	_, err := c.Analyze(context.Background(), "x")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindUnavailable, ae.Kind)
	assert.Equal(t, "Analysis service not responding", ae.UserMessage())
}

func TestHealth(t *testing.T) {
	healthy := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	}, time.Second)
	assert.NoError(t, healthy.Health(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, time.Second)
	assert.Error(t, down.Health(context.Background()))
}

func TestSkillCategory(t *testing.T) {
	tests := map[string]string{
		"Go":             "Programming",
		"react":          "Framework",
		"PostgreSQL":     "Database",
		"docker":         "Cloud",
		"ansible":        "DevOps",
		"Agile":          "Soft Skills",
		"basket weaving": CategoryOther,
	}
	for skill, want := range tests {
		assert.Equal(t, want, SkillCategory(skill), skill)
	}
}

func TestExperienceLevel(t *testing.T) {
	tests := []struct {
		years float64
		want  string
	}{
		{0, "Entry"}, {0.9, "Entry"}, {1, "Junior"}, {3, "Mid"},
		{5, "Senior"}, {8, "Lead"}, {12, "Principal"}, {30, "Principal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExperienceLevel(tt.years))
	}
}
