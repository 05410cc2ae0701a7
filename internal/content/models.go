// Package content holds the portfolio domain: entity types, their sort
// rules, and the service that reads and writes them through the store.
package content

import (
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Collection names in the backing store.
const (
	CollectionProjects    = "projects"
	CollectionSkills      = "skills"
	CollectionExperiences = "experiences"
	CollectionMessages    = "messages"
	CollectionSettings    = "settings"

	// ProfileKey is the fixed key of the singleton settings record.
	ProfileKey = "profile"
)

// SkillCategories are the five fixed category labels, matching the icons
// on the public site.
var SkillCategories = []string{
	"Programming & Development",
	"Frameworks",
	"Database Management",
	"Best Practices",
	"Additional Expertise",
}

// CommaList is an ordered list of strings that also accepts a single
// comma-separated JSON string (the tech-stack input format).
type CommaList []string

// UnmarshalJSON accepts either a JSON array of strings or one delimited string.
func (l *CommaList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = CleanList(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = SplitCommaList(s)
	return nil
}

// LineList is an ordered list of strings that also accepts a single
// newline-separated JSON string (the multi-line description format).
type LineList []string

// UnmarshalJSON accepts either a JSON array of strings or one multi-line string.
func (l *LineList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = CleanList(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = SplitLines(s)
	return nil
}

// Project is one portfolio project card.
type Project struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	TechStack    CommaList `json:"tech_stack"`
	ImageURL     string    `json:"image_url"`
	LiveURL      string    `json:"live_url"`
	GitHubURL    string    `json:"github_url"`
	DisplayOrder int       `json:"display_order"`
	IsFeatured   bool      `json:"is_featured"`
}

// Validate checks the fields required by the admin form.
func (p Project) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Description, validation.Required),
	)
}

// Skill is one entry in the skills grid.
type Skill struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	Proficiency  int    `json:"proficiency"`
	DisplayOrder int    `json:"display_order"`
}

// Validate checks name, the fixed category set, and the 0-100 proficiency range.
func (s Skill) Validate() error {
	cats := make([]any, len(SkillCategories))
	for i, c := range SkillCategories {
		cats[i] = c
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Category, validation.Required, validation.In(cats...)),
		validation.Field(&s.Proficiency, validation.Min(0), validation.Max(100)),
	)
}

// Experience is one timeline entry. EndDate empty means "present".
type Experience struct {
	JobTitle     string   `json:"job_title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Description  LineList `json:"description"`
	DisplayOrder int      `json:"display_order"`
}

// Validate checks the fields required by the admin form.
func (e Experience) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.JobTitle, validation.Required),
		validation.Field(&e.Company, validation.Required),
		validation.Field(&e.StartDate, validation.Required),
	)
}

// Message is one contact-form submission. Timestamp is epoch
// milliseconds. The text field is named Body so that embedding Message
// in MessageRecord does not shadow it.
type Message struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Body      string `json:"message"`
	IsRead    bool   `json:"is_read"`
	Timestamp int64  `json:"timestamp"`
}

// ContactSubmission is the public contact-form payload. The server stamps
// is_read and timestamp itself.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate checks the contact form's required fields.
func (c ContactSubmission) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Message, validation.Required),
	)
}

// Profile is the singleton settings record behind the About photo.
type Profile struct {
	PhotoURL string `json:"photoUrl"`
}

// ProjectRecord pairs a project with its store key.
type ProjectRecord struct {
	Key string `json:"key"`
	Project
}

// SkillRecord pairs a skill with its store key.
type SkillRecord struct {
	Key string `json:"key"`
	Skill
}

// ExperienceRecord pairs an experience with its store key.
type ExperienceRecord struct {
	Key string `json:"key"`
	Experience
}

// MessageRecord pairs a message with its store key.
type MessageRecord struct {
	Key string `json:"key"`
	Message
}
