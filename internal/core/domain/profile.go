package domain

import (
	"strings"
	"time"
)

// Social holds the optional social network links of a profile.
type Social struct {
	YouTube   string `json:"youtube,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Experience is a single job entry on a profile.
type Experience struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to,omitempty"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

// Education is a single school entry on a profile.
type Education struct {
	ID           string     `json:"_id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to,omitempty"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

// Profile is the professional profile owned by exactly one user.
type Profile struct {
	ID             string       `json:"_id"`
	Owner          string       `json:"-"`
	User           *UserRef     `json:"user,omitempty"`
	Company        string       `json:"company,omitempty"`
	Website        string       `json:"website,omitempty"`
	Location       string       `json:"location,omitempty"`
	Status         string       `json:"status"`
	Skills         []string     `json:"skills"`
	Bio            string       `json:"bio,omitempty"`
	GitHubUsername string       `json:"githubusername,omitempty"`
	Experience     []Experience `json:"experience"`
	Education      []Education  `json:"education"`
	Social         Social       `json:"social"`
	CreatedAt      time.Time    `json:"date"`
}

// ProfileFields carries the user-editable scalar fields of a profile.
// Empty strings mean "leave unset".
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         []string
	Social         Social
}

// SplitSkills turns the comma separated skills field into a list, dropping
// blanks.
func SplitSkills(csv string) []string {
	parts := strings.Split(csv, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}
