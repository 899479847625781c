package handler

import (
	"time"

	"github.com/devconnector/connector-api/internal/core/domain"
	"github.com/devconnector/connector-api/internal/core/ports"
)

// profileRequest mirrors the profile form: skills arrive comma separated and
// social links are flat fields.
type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status"         validate:"required"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills"         validate:"required"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

func (profileRequest) validationMessages() map[string]string {
	return map[string]string{
		"status": "Status is required",
		"skills": "Skills are required",
	}
}

func (r profileRequest) toFields() domain.ProfileFields {
	return domain.ProfileFields{
		Company:        r.Company,
		Website:        r.Website,
		Location:       r.Location,
		Bio:            r.Bio,
		Status:         r.Status,
		GitHubUsername: r.GitHubUsername,
		Skills:         domain.SplitSkills(r.Skills),
		Social: domain.Social{
			YouTube:   r.YouTube,
			Twitter:   r.Twitter,
			Facebook:  r.Facebook,
			LinkedIn:  r.LinkedIn,
			Instagram: r.Instagram,
		},
	}
}

type experienceRequest struct {
	Title       string `json:"title"    validate:"required"`
	Company     string `json:"company"  validate:"required"`
	Location    string `json:"location"`
	From        string `json:"from"     validate:"required,isodate"`
	To          string `json:"to"       validate:"omitempty,isodate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

func (experienceRequest) validationMessages() map[string]string {
	return map[string]string{
		"title":         "Title is required",
		"company":       "Company is required",
		"from.required": "From Date is required",
		"from.isodate":  "From Date must be a valid date",
		"to.isodate":    "To Date must be a valid date",
	}
}

func (r experienceRequest) toInput() ports.ExperienceInput {
	in := ports.ExperienceInput{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Current:     r.Current,
		Description: r.Description,
	}
	in.From, _ = parseDate(r.From)
	in.To = optionalDate(r.To, r.Current)
	return in
}

type educationRequest struct {
	School       string `json:"school"       validate:"required"`
	Degree       string `json:"degree"       validate:"required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required"`
	From         string `json:"from"         validate:"required,isodate"`
	To           string `json:"to"           validate:"omitempty,isodate"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

func (educationRequest) validationMessages() map[string]string {
	return map[string]string{
		"school":        "School is required",
		"degree":        "Degree is required",
		"fieldofstudy":  "Field of Study is required",
		"from.required": "From Date is required",
		"from.isodate":  "From Date must be a valid date",
		"to.isodate":    "To Date must be a valid date",
	}
}

func (r educationRequest) toInput() ports.EducationInput {
	in := ports.EducationInput{
		School:       r.School,
		Degree:       r.Degree,
		FieldOfStudy: r.FieldOfStudy,
		Current:      r.Current,
		Description:  r.Description,
	}
	in.From, _ = parseDate(r.From)
	in.To = optionalDate(r.To, r.Current)
	return in
}

// optionalDate returns nil for ongoing entries and blank input.
func optionalDate(s string, current bool) *time.Time {
	if current || s == "" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
