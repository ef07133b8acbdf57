// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package review

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/microgrants/contacts"
	"github.com/danielhkuo/microgrants/metrics"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/store"
)

// PlaceholderName is shown for applicants whose profile cannot be found.
const PlaceholderName = "Unknown applicant"

// Reasons attached to unresolved lookups
const (
	reasonProfileMissing     = "profile not found"
	reasonProfileUnavailable = "profile lookup failed"
	reasonLabMissing         = "lab not found"
	reasonLabUnavailable     = "lab lookup failed"
	reasonContactMissing     = "no contact on file"
	reasonContactUnavailable = "contact service unavailable"
	reasonQuestionMissing    = "no matching question found"
	reasonQuestionsFailed    = "questions unavailable"
	reasonAnswersFailed      = "answers unavailable"
)

const defaultAnswerConcurrency = 8

// Aggregator assembles display-ready applications from records the store
// cannot join. It never fails a batch because one reference is missing or
// one sub-fetch failed; the affected record is degraded instead.
type Aggregator struct {
	store             *store.Store
	contacts          contacts.Resolver
	answerConcurrency int
}

func NewAggregator(s *store.Store, c contacts.Resolver) *Aggregator {
	if c == nil {
		c = contacts.Static(nil)
	}
	return &Aggregator{store: s, contacts: c, answerConcurrency: defaultAnswerConcurrency}
}

// Aggregate returns every application of a grant in submission order.
// Only a failure to list the applications themselves is fatal.
func (a *Aggregator) Aggregate(ctx context.Context, grantID string) ([]models.AggregatedApplication, error) {
	apps, err := a.store.ListApplications(ctx, grantID)
	if err != nil {
		return nil, err
	}
	return a.aggregate(ctx, grantID, apps), nil
}

// AggregateApplication assembles a single application.
func (a *Aggregator) AggregateApplication(ctx context.Context, app models.Application) models.AggregatedApplication {
	return a.aggregate(ctx, app.GrantID, []models.Application{app})[0]
}

type references struct {
	profiles    map[string]models.Profile
	profilesErr error
	labs        map[string]models.Lab
	labsErr     error
	contacts    map[string]string
	contactsErr error
	questions   map[string]models.Question
	questionErr error
}

func (a *Aggregator) aggregate(ctx context.Context, grantID string, apps []models.Application) []models.AggregatedApplication {
	start := time.Now()
	defer func() { metrics.ObserveAggregation(time.Since(start)) }()

	out := make([]models.AggregatedApplication, len(apps))
	if len(apps) == 0 {
		return out
	}

	applicantIDs, labIDs := distinctReferences(apps)
	refs := a.fetchReferences(ctx, grantID, applicantIDs, labIDs)

	answerSets := make([]models.Lookup[[]models.AnswerView], len(apps))
	var g errgroup.Group
	g.SetLimit(a.answerConcurrency)
	for i, app := range apps {
		g.Go(func() error {
			answerSets[i] = a.resolveAnswers(ctx, app, refs)
			return nil
		})
	}
	g.Wait()

	var degradedProfiles, degradedLabs int
	for i, app := range apps {
		applicant := applicantView(app.ApplicantID, refs)
		if !applicant.Resolved {
			degradedProfiles++
		}
		lab := labView(app.LabID, refs)
		if lab != nil && !lab.Resolved {
			degradedLabs++
		}
		out[i] = models.AggregatedApplication{
			Application: app,
			Applicant:   applicant,
			Lab:         lab,
			Answers:     answerSets[i],
		}
	}
	metrics.RecordDegraded("profile", degradedProfiles)
	metrics.RecordDegraded("lab", degradedLabs)

	return out
}

// fetchReferences loads profiles, labs, contacts and questions concurrently,
// one query per kind. Failures are kept alongside the results.
func (a *Aggregator) fetchReferences(ctx context.Context, grantID string, applicantIDs, labIDs []string) references {
	var refs references
	var g errgroup.Group

	g.Go(func() error {
		refs.profiles, refs.profilesErr = a.store.ProfilesByIDs(ctx, applicantIDs)
		return nil
	})
	g.Go(func() error {
		refs.labs, refs.labsErr = a.store.LabsByIDs(ctx, labIDs)
		return nil
	})
	g.Go(func() error {
		refs.contacts, refs.contactsErr = a.contacts.ResolveContacts(ctx, applicantIDs)
		return nil
	})
	g.Go(func() error {
		questions, err := a.store.ListQuestions(ctx, grantID)
		if err != nil {
			refs.questionErr = err
			return nil
		}
		refs.questions = make(map[string]models.Question, len(questions))
		for _, q := range questions {
			refs.questions[q.ID] = q
		}
		return nil
	})
	g.Wait()

	if refs.profilesErr != nil {
		slog.Warn("profile lookup failed", "grant_id", grantID, "error", refs.profilesErr)
	}
	if refs.labsErr != nil {
		slog.Warn("lab lookup failed", "grant_id", grantID, "error", refs.labsErr)
	}
	if refs.contactsErr != nil {
		slog.Warn("contact lookup failed", "grant_id", grantID, "resolved", len(refs.contacts), "error", refs.contactsErr)
		metrics.RecordDegraded("contact", len(applicantIDs)-len(refs.contacts))
	}
	if refs.questionErr != nil {
		slog.Warn("question lookup failed", "grant_id", grantID, "error", refs.questionErr)
	}
	return refs
}

func (a *Aggregator) resolveAnswers(ctx context.Context, app models.Application, refs references) models.Lookup[[]models.AnswerView] {
	answers, err := a.store.ListAnswers(ctx, app.GrantID, app.ApplicantID)
	if err != nil {
		slog.Warn("answer lookup failed", "application_id", app.ID, "error", err)
		metrics.RecordDegraded("answers", 1)
		return models.Unresolved([]models.AnswerView{}, reasonAnswersFailed)
	}

	views := make([]models.AnswerView, 0, len(answers))
	missing := 0
	for _, ans := range answers {
		view := models.AnswerView{Answer: ans}
		switch q, ok := refs.questions[ans.QuestionID]; {
		case refs.questionErr != nil:
			view.Question = models.Unresolved(models.Question{ID: ans.QuestionID}, reasonQuestionsFailed)
		case !ok:
			view.Question = models.Unresolved(models.Question{ID: ans.QuestionID}, reasonQuestionMissing)
			missing++
		default:
			view.Question = models.Resolved(q)
		}
		views = append(views, view)
	}
	metrics.RecordDegraded("question", missing)

	// Question order first; answers without a question keep their place at the end.
	slices.SortStableFunc(views, func(x, y models.AnswerView) int {
		switch {
		case x.Question.Resolved && y.Question.Resolved:
			return x.Question.Value.Position - y.Question.Value.Position
		case x.Question.Resolved:
			return -1
		case y.Question.Resolved:
			return 1
		default:
			return 0
		}
	})
	return models.Resolved(views)
}

func distinctReferences(apps []models.Application) (applicantIDs, labIDs []string) {
	seenApplicants := make(map[string]bool, len(apps))
	seenLabs := make(map[string]bool)
	for _, app := range apps {
		if !seenApplicants[app.ApplicantID] {
			seenApplicants[app.ApplicantID] = true
			applicantIDs = append(applicantIDs, app.ApplicantID)
		}
		if app.LabID != nil && *app.LabID != "" && !seenLabs[*app.LabID] {
			seenLabs[*app.LabID] = true
			labIDs = append(labIDs, *app.LabID)
		}
	}
	return applicantIDs, labIDs
}

func applicantView(userID string, refs references) models.Lookup[models.ApplicantView] {
	view := models.ApplicantView{UserID: userID, DisplayName: PlaceholderName}

	// a failed resolve may still return the contacts it already knew
	switch email, ok := refs.contacts[userID]; {
	case ok:
		view.Contact = models.Resolved(email)
	case refs.contactsErr != nil:
		view.Contact = models.Unresolved("", reasonContactUnavailable)
	default:
		view.Contact = models.Unresolved("", reasonContactMissing)
	}

	if refs.profilesErr != nil {
		return models.Unresolved(view, reasonProfileUnavailable)
	}
	p, ok := refs.profiles[userID]
	if !ok {
		return models.Unresolved(view, reasonProfileMissing)
	}
	view.DisplayName = p.DisplayName
	view.AvatarURL = p.AvatarURL
	return models.Resolved(view)
}

func labView(labID *string, refs references) *models.Lookup[models.Lab] {
	if labID == nil || *labID == "" {
		return nil
	}
	var lookup models.Lookup[models.Lab]
	switch lab, ok := refs.labs[*labID]; {
	case refs.labsErr != nil:
		lookup = models.Unresolved(models.Lab{ID: *labID}, reasonLabUnavailable)
	case !ok:
		lookup = models.Unresolved(models.Lab{ID: *labID}, reasonLabMissing)
	default:
		lookup = models.Resolved(lab)
	}
	return &lookup
}
