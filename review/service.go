// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/microgrants/contacts"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/payments"
	"github.com/danielhkuo/microgrants/store"
)

var validate = validator.New()

// Options tunes the service policy.
type Options struct {
	MaxGrantAmountCents int64
}

// Service is the in-process contract the HTTP layer talks to.
type Service struct {
	store      *store.Store
	aggregator *Aggregator
	authorizer *Authorizer
	lifecycle  *Lifecycle
	opts       Options
	now        func() time.Time
}

func NewService(s *store.Store, p payments.Collaborator, c contacts.Resolver, opts Options) *Service {
	agg := NewAggregator(s, c)
	return &Service{
		store:      s,
		aggregator: agg,
		authorizer: NewAuthorizer(s, p),
		lifecycle:  NewLifecycle(s, p, agg),
		opts:       opts,
		now:        time.Now,
	}
}

// OpenSession aggregates a grant's applications for its owner.
func (s *Service) OpenSession(ctx context.Context, grantID, caller string) (*Session, error) {
	if _, err := s.lifecycle.AuthorizeOwner(ctx, grantID, caller); err != nil {
		return nil, err
	}
	apps, err := s.aggregator.Aggregate(ctx, grantID)
	if err != nil {
		return nil, err
	}
	return NewSession(grantID, apps, s.store), nil
}

// ListApplications returns the owner's view of a grant's applications,
// filtered by query and split into shortlisted and other.
func (s *Service) ListApplications(ctx context.Context, grantID, caller, query string) (models.ApplicationListResponse, error) {
	session, err := s.OpenSession(ctx, grantID, caller)
	if err != nil {
		return models.ApplicationListResponse{}, err
	}
	matched := session.Search(query)
	shortlisted, other := Partition(matched)
	return models.ApplicationListResponse{
		Shortlisted: shortlisted,
		Other:       other,
		Total:       len(matched),
	}, nil
}

// ToggleShortlist flips the shortlist flag of one application of the grant.
func (s *Service) ToggleShortlist(ctx context.Context, grantID, applicationID, caller string) (models.AggregatedApplication, error) {
	if _, err := s.lifecycle.AuthorizeOwner(ctx, grantID, caller); err != nil {
		return models.AggregatedApplication{}, err
	}
	app, err := s.store.GetApplication(ctx, applicationID)
	if err != nil {
		return models.AggregatedApplication{}, fromStore(err, "application "+applicationID)
	}
	if app.GrantID != grantID {
		return models.AggregatedApplication{}, fmt.Errorf("%w: application %s in grant %s", ErrNotFound, applicationID, grantID)
	}

	session := NewSession(grantID, []models.AggregatedApplication{s.aggregator.AggregateApplication(ctx, app)}, s.store)
	return session.ToggleShortlist(ctx, applicationID)
}

// Award awards the grant and returns the resulting detail view.
func (s *Service) Award(ctx context.Context, req AwardRequest) (models.GrantState, error) {
	grant, err := s.authorizer.Award(ctx, req)
	if err != nil {
		return models.GrantState{}, err
	}
	return s.lifecycle.stateOf(ctx, grant, req.Caller), nil
}

func (s *Service) DeleteGrant(ctx context.Context, grantID, caller string) error {
	return s.lifecycle.DeleteGrant(ctx, grantID, caller)
}

func (s *Service) GrantState(ctx context.Context, grantID, caller string) (models.GrantState, error) {
	return s.lifecycle.State(ctx, grantID, caller)
}

// Preview returns public counts for a grant.
func (s *Service) Preview(ctx context.Context, grantID string) (models.GrantPreviewResponse, error) {
	grant, err := s.store.GetGrant(ctx, grantID)
	if err != nil {
		return models.GrantPreviewResponse{}, fromStore(err, "grant "+grantID)
	}
	total, shortlisted, err := s.store.CountApplications(ctx, grantID)
	if err != nil {
		return models.GrantPreviewResponse{}, err
	}
	return models.GrantPreviewResponse{
		Name:             grant.Name,
		Status:           grant.Status,
		AmountDisplay:    FormatAmount(grant.AmountCents),
		ApplicationCount: total,
		ShortlistCount:   shortlisted,
	}, nil
}

// CreateGrant publishes a new open grant owned by caller.
func (s *Service) CreateGrant(ctx context.Context, caller string, req models.CreateGrantRequest) (models.Grant, error) {
	if err := validate.Struct(req); err != nil {
		return models.Grant{}, invalid("%s", validationMessage(err))
	}
	if s.opts.MaxGrantAmountCents > 0 && req.AmountCents > s.opts.MaxGrantAmountCents {
		return models.Grant{}, invalid("amount may not exceed %s", FormatAmount(s.opts.MaxGrantAmountCents))
	}
	if !req.Deadline.After(s.now()) {
		return models.Grant{}, invalid("deadline must be in the future")
	}

	grant := models.Grant{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		AmountCents: req.AmountCents,
		Categories:  normalizeCategories(req.Categories),
		Deadline:    req.Deadline.UTC(),
		OwnerID:     caller,
	}
	if err := s.store.CreateGrant(ctx, &grant); err != nil {
		return models.Grant{}, err
	}

	slog.Info("grant created", "grant_id", grant.ID, "owner_id", caller, "amount", FormatAmount(grant.AmountCents))
	return grant, nil
}

func (s *Service) ListMyGrants(ctx context.Context, caller string) ([]models.Grant, error) {
	return s.store.ListGrantsByOwner(ctx, caller)
}

// AddQuestion appends a question. Questions are frozen once the grant has
// applications or has been awarded.
func (s *Service) AddQuestion(ctx context.Context, grantID, caller string, req models.AddQuestionRequest) (models.Question, error) {
	if err := validate.Struct(req); err != nil {
		return models.Question{}, invalid("%s", validationMessage(err))
	}
	switch req.Type {
	case models.QuestionMultipleChoice:
		if len(req.Options) < 2 {
			return models.Question{}, invalid("multiple choice questions need at least 2 options")
		}
		if req.WordLimit != nil {
			return models.Question{}, invalid("word_limit only applies to short answer questions")
		}
	case models.QuestionShortAnswer:
		if len(req.Options) > 0 {
			return models.Question{}, invalid("options only apply to multiple choice questions")
		}
	}

	grant, err := s.lifecycle.AuthorizeOwner(ctx, grantID, caller)
	if err != nil {
		return models.Question{}, err
	}
	if grant.Status != models.StatusOpen {
		return models.Question{}, precondition(ReasonNotOpen, "grant %s has already been awarded", grantID)
	}
	total, _, err := s.store.CountApplications(ctx, grantID)
	if err != nil {
		return models.Question{}, err
	}
	if total > 0 {
		return models.Question{}, precondition(ReasonHasApplications, "questions cannot change once applications exist")
	}

	q := models.Question{
		GrantID:   grantID,
		Text:      strings.TrimSpace(req.Text),
		Type:      req.Type,
		WordLimit: req.WordLimit,
		Options:   req.Options,
	}
	if err := s.store.CreateQuestion(ctx, &q); err != nil {
		return models.Question{}, err
	}
	return q, nil
}

// SubmitApplication stores caller's application with one answer per question.
func (s *Service) SubmitApplication(ctx context.Context, grantID, caller string, req models.SubmitApplicationRequest) (models.Application, error) {
	if err := validate.Struct(req); err != nil {
		return models.Application{}, invalid("%s", validationMessage(err))
	}

	grant, err := s.store.GetGrant(ctx, grantID)
	if err != nil {
		return models.Application{}, fromStore(err, "grant "+grantID)
	}
	if grant.OwnerID == caller {
		return models.Application{}, invalid("owners cannot apply to their own grant")
	}
	if grant.Status != models.StatusOpen {
		return models.Application{}, precondition(ReasonNotOpen, "grant %s is no longer accepting applications", grantID)
	}
	if s.now().After(grant.Deadline) {
		return models.Application{}, precondition(ReasonDeadlinePassed, "the application deadline has passed")
	}

	questions, err := s.store.ListQuestions(ctx, grantID)
	if err != nil {
		return models.Application{}, err
	}
	answers, err := checkAnswers(questions, req.Answers)
	if err != nil {
		return models.Application{}, err
	}

	var labID *string
	if req.LabID != nil && strings.TrimSpace(*req.LabID) != "" {
		id := strings.TrimSpace(*req.LabID)
		labID = &id
	}

	app := models.Application{GrantID: grantID, ApplicantID: caller, LabID: labID}
	if err := s.store.CreateApplicationWithAnswers(ctx, &app, answers); err != nil {
		return models.Application{}, fromStore(err, "grant "+grantID)
	}

	slog.Info("application submitted", "grant_id", grantID, "application_id", app.ID, "applicant_id", caller)
	return app, nil
}

// checkAnswers requires exactly one answer per question and enforces each
// question's constraints.
func checkAnswers(questions []models.Question, inputs []models.AnswerInput) ([]models.Answer, error) {
	byID := make(map[string]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	seen := make(map[string]bool, len(inputs))
	answers := make([]models.Answer, 0, len(inputs))
	for _, in := range inputs {
		q, ok := byID[in.QuestionID]
		if !ok {
			return nil, invalid("unknown question %s", in.QuestionID)
		}
		if seen[q.ID] {
			return nil, invalid("question %s answered twice", q.ID)
		}
		seen[q.ID] = true

		content := strings.TrimSpace(in.Content)
		switch q.Type {
		case models.QuestionShortAnswer:
			if q.WordLimit != nil && len(strings.Fields(content)) > *q.WordLimit {
				return nil, invalid("answer to %q exceeds %d words", q.Text, *q.WordLimit)
			}
		case models.QuestionMultipleChoice:
			if !containsString(q.Options, content) {
				return nil, invalid("%q is not an option for %q", content, q.Text)
			}
		}
		answers = append(answers, models.Answer{QuestionID: q.ID, Content: content})
	}

	for _, q := range questions {
		if !seen[q.ID] {
			return nil, invalid("question %q is unanswered", q.Text)
		}
	}
	return answers, nil
}

func normalizeCategories(in []string) models.StringList {
	out := models.StringList{}
	seen := make(map[string]bool, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s exceeds maximum of %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
