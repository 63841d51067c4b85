package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/genailabs-inc/usecase-portal/pkg/apperrors"
)

// Moderation status values for a use case.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ServiceLines is the fixed vocabulary for the service_line field.
var ServiceLines = []string{"DE&E", "DA&AI", "SFBU", "Oracle", "CEMS"}

// SDLCPhases is the fixed vocabulary for the sdlc_phase field.
var SDLCPhases = []string{
	"Discovery",
	"Design/Documentation",
	"Implementation/Development",
	"Testing",
	"Deployment",
	"Upgrade",
}

// BaseTools is the built-in tool vocabulary. Custom tools extend it at runtime.
var BaseTools = []string{
	"ChatGPT",
	"Langchain",
	"Microsoft Copilot",
	"Github Copilot",
	"Streamlit",
	"Hugging Face",
	"TensorFlow",
	"PyTorch",
}

// Field length limits for submissions.
const (
	TitleMinLen   = 5
	TitleMaxLen   = 200
	ProjectMinLen = 3
	ProjectMaxLen = 100
	PromptsMinLen = 10
	PromptsMaxLen = 5000
)

// UseCase is a submitted Gen AI use case record. Field names match the
// on-disk JSON layout, which is load-bearing for older data files.
type UseCase struct {
	ID               int64      `json:"id"`
	Title            string     `json:"usecase"`
	Project          string     `json:"project"`
	PromptsUsed      string     `json:"prompts_used"`
	ServiceLine      StringSet  `json:"service_line"`
	SDLCPhase        StringSet  `json:"sdlc_phase"`
	ToolsUsed        StringSet  `json:"tools_used"`
	EstimatedEfforts float64    `json:"estimated_efforts"`
	ActualHours      float64    `json:"actual_hours"`
	Comments         string     `json:"comments,omitempty"`
	Status           string     `json:"status"`
	UserID           int64      `json:"userId"`
	SubmittedAt      time.Time  `json:"submittedAt"`
	ModeratedAt      *time.Time `json:"moderatedAt,omitempty"`
}

// IsValidStatus reports whether s is one of the three moderation states.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// IsTerminalStatus reports whether s is a value SetStatus may transition to.
func IsTerminalStatus(s string) bool {
	return s == StatusApproved || s == StatusRejected
}

func isKnownValue(vocabulary []string, value string) bool {
	for _, v := range vocabulary {
		if v == value {
			return true
		}
	}
	return false
}

// Validate checks the submission constraints on the editable fields.
// The returned error wraps apperrors.ErrValidation and names every violation.
func (u *UseCase) Validate(knownTools []string) error {
	var problems []string

	if n := len(strings.TrimSpace(u.Title)); n < TitleMinLen || n > TitleMaxLen {
		problems = append(problems, fmt.Sprintf("usecase must be %d-%d characters", TitleMinLen, TitleMaxLen))
	}
	if n := len(strings.TrimSpace(u.Project)); n < ProjectMinLen || n > ProjectMaxLen {
		problems = append(problems, fmt.Sprintf("project must be %d-%d characters", ProjectMinLen, ProjectMaxLen))
	}
	if n := len(strings.TrimSpace(u.PromptsUsed)); n < PromptsMinLen || n > PromptsMaxLen {
		problems = append(problems, fmt.Sprintf("prompts_used must be %d-%d characters", PromptsMinLen, PromptsMaxLen))
	}

	if len(u.ServiceLine) == 0 {
		problems = append(problems, "service_line is required")
	}
	for _, v := range u.ServiceLine {
		if !isKnownValue(ServiceLines, v) {
			problems = append(problems, fmt.Sprintf("unknown service_line %q", v))
		}
	}

	if len(u.SDLCPhase) == 0 {
		problems = append(problems, "sdlc_phase is required")
	}
	for _, v := range u.SDLCPhase {
		if !isKnownValue(SDLCPhases, v) {
			problems = append(problems, fmt.Sprintf("unknown sdlc_phase %q", v))
		}
	}

	if len(u.ToolsUsed) == 0 {
		problems = append(problems, "at least one tool is required")
	}
	for _, v := range u.ToolsUsed {
		if !isKnownValue(knownTools, v) {
			problems = append(problems, fmt.Sprintf("unknown tool %q", v))
		}
	}

	if u.EstimatedEfforts < 0 {
		problems = append(problems, "estimated_efforts must be non-negative")
	}
	if u.ActualHours < 0 {
		problems = append(problems, "actual_hours must be non-negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Efficiency returns the effort efficiency percentage,
// ((estimated/actual) - 1) * 100. ok is false when actual_hours is zero.
func (u *UseCase) Efficiency() (pct float64, ok bool) {
	if u.ActualHours == 0 {
		return 0, false
	}
	return (u.EstimatedEfforts/u.ActualHours - 1) * 100, true
}

// VisibleTo reports whether viewer may see this record. Moderators see
// everything, owners see their own submissions in any state, and everyone
// else (including anonymous viewers, viewer == nil) sees approved records only.
func (u *UseCase) VisibleTo(viewer *User) bool {
	if viewer != nil {
		if viewer.CanModerate() {
			return true
		}
		if u.UserID == viewer.ID {
			return true
		}
	}
	return u.Status == StatusApproved
}
