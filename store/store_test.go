// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/store"
	"github.com/danielhkuo/microgrants/testutil"
)

func TestCreateAndGetGrant(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	g := testutil.CreateTestGrant(t, s, "owner-1", 25000)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, models.StatusOpen, g.Status)
	assert.EqualValues(t, 1, g.Version)

	got, err := s.GetGrant(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.Name, got.Name)
	assert.Equal(t, int64(25000), got.AmountCents)
	assert.Equal(t, models.StringList{"biology"}, got.Categories)
	assert.Equal(t, "owner-1", got.OwnerID)
	assert.Nil(t, got.AwardedApplicant)
	assert.Nil(t, got.PaymentAuthorizationID)

	_, err = s.GetGrant(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListGrantsByOwner(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	testutil.CreateTestGrant(t, s, "owner-1", 100)
	testutil.CreateTestGrant(t, s, "owner-1", 200)
	testutil.CreateTestGrant(t, s, "owner-2", 300)

	grants, err := s.ListGrantsByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, grants, 2)
	for _, g := range grants {
		assert.Equal(t, "owner-1", g.OwnerID)
	}

	none, err := s.ListGrantsByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMarkGrantAwarded(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)
	at := time.Now()

	// wrong version
	err := store.MarkGrantAwarded(ctx, s.DB(), g.ID, "applicant", g.Version+1, at)
	assert.ErrorIs(t, err, store.ErrConflict)

	require.NoError(t, store.MarkGrantAwarded(ctx, s.DB(), g.ID, "applicant", g.Version, at))

	got, err := s.GetGrant(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwarded, got.Status)
	require.NotNil(t, got.AwardedApplicant)
	assert.Equal(t, "applicant", *got.AwardedApplicant)
	assert.Equal(t, g.Version+1, got.Version)
	assert.NotNil(t, got.AwardedAt)

	// already awarded, even at the new version
	err = store.MarkGrantAwarded(ctx, s.DB(), g.ID, "other", got.Version, at)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestSetPaymentAuthorization(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)

	require.NoError(t, store.SetPaymentAuthorization(ctx, s.DB(), g.ID, "auth-1"))
	got, err := s.GetGrant(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PaymentAuthorizationID)
	assert.Equal(t, "auth-1", *got.PaymentAuthorizationID)

	err = store.SetPaymentAuthorization(ctx, s.DB(), "missing", "auth-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateApplicationWithAnswers(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)
	q := testutil.AddTestQuestion(t, s, g.ID, "Why?")

	app := testutil.SubmitTestApplication(t, s, g.ID, "applicant", nil, map[string]string{q.ID: "because"})
	assert.NotEmpty(t, app.ID)
	assert.False(t, app.Shortlisted)

	answers, err := s.ListAnswers(ctx, g.ID, "applicant")
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, app.ID, answers[0].ApplicationID)
	assert.Equal(t, "because", answers[0].Content)

	byApplicant, err := s.GetApplicationByApplicant(ctx, g.ID, "applicant")
	require.NoError(t, err)
	assert.Equal(t, app.ID, byApplicant.ID)

	dup := models.Application{GrantID: g.ID, ApplicantID: "applicant"}
	err = s.CreateApplicationWithAnswers(ctx, &dup, nil)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = s.GetApplicationByApplicant(ctx, g.ID, "someone-else")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListApplicationsSubmissionOrder(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)

	first := testutil.SubmitTestApplication(t, s, g.ID, "a", nil, nil)
	second := testutil.SubmitTestApplication(t, s, g.ID, "b", nil, nil)
	third := testutil.SubmitTestApplication(t, s, g.ID, "c", nil, nil)

	apps, err := s.ListApplications(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{apps[0].ID, apps[1].ID, apps[2].ID})
}

func TestShortlistAndCount(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)

	total, shortlisted, err := s.CountApplications(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, shortlisted)

	a := testutil.SubmitTestApplication(t, s, g.ID, "a", nil, nil)
	testutil.SubmitTestApplication(t, s, g.ID, "b", nil, nil)
	require.NoError(t, s.SetShortlisted(ctx, a.ID, true))

	total, shortlisted, err = s.CountApplications(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, shortlisted)

	got, err := s.GetApplication(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Shortlisted)

	assert.ErrorIs(t, s.SetShortlisted(ctx, "missing", true), store.ErrNotFound)
}

func TestMarkApplicationAwarded(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)
	other := testutil.CreateTestGrant(t, s, "owner", 1000)
	app := testutil.SubmitTestApplication(t, s, g.ID, "a", nil, nil)

	err := store.MarkApplicationAwarded(ctx, s.DB(), app.ID, other.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, store.MarkApplicationAwarded(ctx, s.DB(), app.ID, g.ID))
	got, err := s.GetApplication(ctx, app.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AcceptanceStatus)
	assert.Equal(t, models.AcceptanceAwarded, *got.AcceptanceStatus)
}

func TestCreateQuestionPositions(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()
	g := testutil.CreateTestGrant(t, s, "owner", 1000)

	q1 := testutil.AddTestQuestion(t, s, g.ID, "first")
	q2 := testutil.AddTestChoiceQuestion(t, s, g.ID, "second", "yes", "no")
	q3 := testutil.AddTestQuestion(t, s, g.ID, "third")
	assert.Equal(t, []int{0, 1, 2}, []int{q1.Position, q2.Position, q3.Position})

	questions, err := s.ListQuestions(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "second", questions[1].Text)
	assert.Equal(t, models.StringList{"yes", "no"}, questions[1].Options)
	require.NotNil(t, questions[0].WordLimit)
	assert.Equal(t, 100, *questions[0].WordLimit)
}

func TestProjectionsByIDs(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	testutil.CreateTestProfile(t, s, "u1", "Ada")
	testutil.CreateTestProfile(t, s, "u2", "Grace")
	testutil.CreateTestLab(t, s, "lab-1", "Optics")

	profiles, err := s.ProfilesByIDs(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.Equal(t, "Grace", profiles["u2"].DisplayName)
	_, ok := profiles["u3"]
	assert.False(t, ok)

	labs, err := s.LabsByIDs(ctx, []string{"lab-1", "lab-2"})
	require.NoError(t, err)
	assert.Len(t, labs, 1)
	assert.Equal(t, "Optics", labs["lab-1"].Name)

	// upsert replaces
	testutil.CreateTestProfile(t, s, "u1", "Ada L.")
	profiles, err = s.ProfilesByIDs(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", profiles["u1"].DisplayName)
}

func TestProjectionsEmptyIDs(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	s := store.New(sqlx.NewDb(mockDB, "sqlmock"))

	profiles, err := s.ProfilesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	labs, err := s.LabsByIDs(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, labs)

	// no query issued
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteGrantCascade(t *testing.T) {
	s := testutil.SetupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteGrantCascade(ctx, "missing"), store.ErrNotFound)

	g := testutil.CreateTestGrant(t, s, "owner", 1000)
	q := testutil.AddTestQuestion(t, s, g.ID, "Why?")
	testutil.SubmitTestApplication(t, s, g.ID, "a", nil, map[string]string{q.ID: "x"})

	require.NoError(t, s.DeleteGrantCascade(ctx, g.ID))

	_, err := s.GetGrant(ctx, g.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	questions, err := s.ListQuestions(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, questions)
	answers, err := s.ListAnswers(ctx, g.ID, "a")
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	s := store.New(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM answers").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM applications").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = s.DeleteGrantCascade(context.Background(), "grant-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete applications")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	s := store.New(sqlx.NewDb(mockDB, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	err = s.WithTx(context.Background(), func(tx *sqlx.Tx) error { return nil })
	assert.ErrorIs(t, err, store.ErrCommit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
