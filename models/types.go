// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Grant status constants
const (
	StatusOpen    = "open"
	StatusAwarded = "awarded"
)

// Application acceptance status
const (
	AcceptanceAwarded = "awarded"
)

// Question type constants
const (
	QuestionShortAnswer    = "short_answer"
	QuestionMultipleChoice = "multiple_choice"
)

// MaxCategories is the number of category tags a grant may carry.
const MaxCategories = 3

// Request types

type CreateGrantRequest struct {
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	AmountCents int64     `json:"amount_cents" validate:"gt=0"`
	Categories  []string  `json:"categories" validate:"max=3,dive,required,max=40"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

type AddQuestionRequest struct {
	Text      string   `json:"text" validate:"required,max=1000"`
	Type      string   `json:"type" validate:"required,oneof=short_answer multiple_choice"`
	WordLimit *int     `json:"word_limit,omitempty" validate:"omitempty,gt=0"`
	Options   []string `json:"options,omitempty" validate:"dive,required"`
}

type AnswerInput struct {
	QuestionID string `json:"question_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

type SubmitApplicationRequest struct {
	LabID   *string       `json:"lab_id,omitempty"`
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

type AwardRequest struct {
	ApplicationID          string `json:"application_id" validate:"required"`
	AuthorizationConfirmed bool   `json:"authorization_confirmed"`
}

// Response types

type CreateGrantResponse struct {
	GrantID string `json:"grant_id"`
}

type AddQuestionResponse struct {
	QuestionID string `json:"question_id"`
}

type SubmitApplicationResponse struct {
	ApplicationID string `json:"application_id"`
}

type ApplicationListResponse struct {
	Shortlisted []AggregatedApplication `json:"shortlisted"`
	Other       []AggregatedApplication `json:"other"`
	Total       int                     `json:"total"`
}

type GrantPreviewResponse struct {
	Name             string `json:"name"`
	Status           string `json:"status"`
	AmountDisplay    string `json:"amount_display"`
	ApplicationCount int    `json:"application_count"`
	ShortlistCount   int    `json:"shortlist_count"`
}

// Domain types

type Grant struct {
	ID                     string     `json:"id" db:"id"`
	Name                   string     `json:"name" db:"name"`
	Description            string     `json:"description" db:"description"`
	AmountCents            int64      `json:"amount_cents" db:"amount_cents"`
	Categories             StringList `json:"categories" db:"categories"`
	Deadline               time.Time  `json:"deadline" db:"deadline"`
	OwnerID                string     `json:"owner_id" db:"owner_id"`
	Status                 string     `json:"status" db:"status"`
	AwardedApplicant       *string    `json:"awarded_applicant,omitempty" db:"awarded_applicant"`
	PaymentAuthorizationID *string    `json:"-" db:"payment_authorization_id"` // Never expose in JSON
	Version                int64      `json:"version" db:"version"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	AwardedAt              *time.Time `json:"awarded_at,omitempty" db:"awarded_at"`
}

// IsAwarded reports whether the grant reached its terminal state.
func (g Grant) IsAwarded() bool {
	return g.Status == StatusAwarded
}

type Question struct {
	ID        string     `json:"id" db:"id"`
	GrantID   string     `json:"grant_id" db:"grant_id"`
	Position  int        `json:"position" db:"position"`
	Text      string     `json:"text" db:"text"`
	Type      string     `json:"type" db:"type"`
	WordLimit *int       `json:"word_limit,omitempty" db:"word_limit"`
	Options   StringList `json:"options,omitempty" db:"options"`
}

type Application struct {
	ID               string    `json:"id" db:"id"`
	GrantID          string    `json:"grant_id" db:"grant_id"`
	ApplicantID      string    `json:"applicant_id" db:"applicant_id"`
	LabID            *string   `json:"lab_id,omitempty" db:"lab_id"`
	Shortlisted      bool      `json:"shortlisted" db:"shortlisted"`
	AcceptanceStatus *string   `json:"acceptance_status,omitempty" db:"acceptance_status"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// IsAwarded reports whether this application won its grant.
func (a Application) IsAwarded() bool {
	return a.AcceptanceStatus != nil && *a.AcceptanceStatus == AcceptanceAwarded
}

type Answer struct {
	ID            string `json:"id" db:"id"`
	ApplicationID string `json:"application_id" db:"application_id"`
	GrantID       string `json:"grant_id" db:"grant_id"`
	ApplicantID   string `json:"applicant_id" db:"applicant_id"`
	QuestionID    string `json:"question_id" db:"question_id"`
	Content       string `json:"content" db:"content"`
}

type Profile struct {
	UserID      string `json:"user_id" db:"user_id"`
	DisplayName string `json:"display_name" db:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty" db:"avatar_url"`
}

type Lab struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	AvatarURL string `json:"avatar_url,omitempty" db:"avatar_url"`
}

// Aggregated view types

type ApplicantView struct {
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	Contact     Lookup[string] `json:"contact"`
}

type AnswerView struct {
	Answer   Answer           `json:"answer"`
	Question Lookup[Question] `json:"question"`
}

type AggregatedApplication struct {
	Application Application           `json:"application"`
	Applicant   Lookup[ApplicantView] `json:"applicant"`
	Lab         *Lookup[Lab]          `json:"lab,omitempty"` // nil when no lab is associated
	Answers     Lookup[[]AnswerView]  `json:"answers"`
}

// LabName returns the resolved lab name or "".
func (a AggregatedApplication) LabName() string {
	if a.Lab == nil || !a.Lab.Resolved {
		return ""
	}
	return a.Lab.Value.Name
}

type WinnerView struct {
	ApplicationID string `json:"application_id"`
	ApplicantID   string `json:"applicant_id"`
	DisplayName   string `json:"display_name"`
	LabName       string `json:"lab_name,omitempty"`
}

// GrantState is the grant detail view shown to every viewer.
type GrantState struct {
	Grant              Grant       `json:"grant"`
	AmountDisplay      string      `json:"amount_display"`
	ReadOnly           bool        `json:"read_only"`
	Winner             *WinnerView `json:"winner,omitempty"`
	YouWon             bool        `json:"you_won"`
	WinnerPayoutLinked *bool       `json:"winner_payout_linked,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
