package analyzer

import (
	"slices"
	"strings"
)

type skillGroup struct {
	category string
	skills   []string
}

// Checked in order; a skill listed under several groups takes the first.
var skillGroups = []skillGroup{
	{"Programming", []string{"javascript", "python", "java", "c++", "c#", "php", "ruby", "go", "rust", "swift", "kotlin", "scala", "r", "matlab"}},
	{"Framework", []string{"react", "angular", "vue", "node.js", "express", "django", "flask", "spring", "laravel", "asp.net", "jquery", "bootstrap", "tailwind", "material-ui"}},
	{"Database", []string{"mysql", "postgresql", "mongodb", "redis", "sqlite", "oracle", "sql server", "dynamodb", "cassandra", "elasticsearch"}},
	{"Cloud", []string{"aws", "azure", "gcp", "heroku", "digitalocean", "kubernetes", "docker", "terraform", "jenkins", "gitlab"}},
	{"DevOps", []string{"git", "jenkins", "docker", "kubernetes", "terraform", "ansible", "chef", "puppet", "vagrant"}},
	{"Soft Skills", []string{"leadership", "communication", "teamwork", "problem solving", "project management", "agile", "scrum", "mentoring", "presentation"}},
}

// CategoryOther is the category of unrecognised skills.
const CategoryOther = "Other"

// SkillCategory groups a skill for dashboards.
func SkillCategory(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	for _, g := range skillGroups {
		if slices.Contains(g.skills, s) {
			return g.category
		}
	}
	return CategoryOther
}

// ExperienceLevel labels a number of years of experience.
func ExperienceLevel(years float64) string {
	switch {
	case years < 1:
		return "Entry"
	case years < 3:
		return "Junior"
	case years < 5:
		return "Mid"
	case years < 8:
		return "Senior"
	case years < 12:
		return "Lead"
	default:
		return "Principal"
	}
}
