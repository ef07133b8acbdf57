// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package review

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/danielhkuo/microgrants/metrics"
	"github.com/danielhkuo/microgrants/models"
)

// Shortlister persists the shortlist flag of one application.
type Shortlister interface {
	SetShortlisted(ctx context.Context, applicationID string, value bool) error
}

// Session is a grant owner's working set of aggregated applications.
type Session struct {
	grantID     string
	apps        []models.AggregatedApplication
	index       map[string]int
	shortlister Shortlister
}

func NewSession(grantID string, apps []models.AggregatedApplication, shortlister Shortlister) *Session {
	s := &Session{
		grantID:     grantID,
		apps:        apps,
		index:       make(map[string]int, len(apps)),
		shortlister: shortlister,
	}
	for i, app := range apps {
		s.index[app.Application.ID] = i
	}
	return s
}

func (s *Session) GrantID() string {
	return s.grantID
}

// Applications returns the working set in aggregator order.
func (s *Session) Applications() []models.AggregatedApplication {
	return append([]models.AggregatedApplication(nil), s.apps...)
}

// Search matches the query case-insensitively against applicant display
// names and lab names. A blank query matches everything.
func (s *Session) Search(query string) []models.AggregatedApplication {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Applications()
	}

	var out []models.AggregatedApplication
	for _, app := range s.apps {
		name := strings.ToLower(app.Applicant.Value.DisplayName)
		lab := strings.ToLower(app.LabName())
		if strings.Contains(name, q) || (lab != "" && strings.Contains(lab, q)) {
			out = append(out, app)
		}
	}
	return out
}

// Partition splits applications into shortlisted and other, keeping order.
func Partition(apps []models.AggregatedApplication) (shortlisted, other []models.AggregatedApplication) {
	shortlisted = []models.AggregatedApplication{}
	other = []models.AggregatedApplication{}
	for _, app := range apps {
		if app.Application.Shortlisted {
			shortlisted = append(shortlisted, app)
		} else {
			other = append(other, app)
		}
	}
	return shortlisted, other
}

// ToggleShortlist flips one application's shortlist flag. The local copy
// only changes after the write succeeded. Acceptance status is untouched.
func (s *Session) ToggleShortlist(ctx context.Context, applicationID string) (models.AggregatedApplication, error) {
	i, ok := s.index[applicationID]
	if !ok {
		return models.AggregatedApplication{}, fmt.Errorf("%w: application %s in grant %s", ErrNotFound, applicationID, s.grantID)
	}

	target := !s.apps[i].Application.Shortlisted
	if err := s.shortlister.SetShortlisted(ctx, applicationID, target); err != nil {
		return models.AggregatedApplication{}, fromStore(err, "application "+applicationID)
	}

	s.apps[i].Application.Shortlisted = target
	metrics.RecordShortlistToggle(target)
	slog.Info("shortlist toggled", "grant_id", s.grantID, "application_id", applicationID, "shortlisted", target)

	return s.apps[i], nil
}
