// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/microgrants/auth"
	"github.com/danielhkuo/microgrants/cliparse"
	"github.com/danielhkuo/microgrants/db"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/store"
)

// TestJWTSecret signs caller tokens in tests
const TestJWTSecret = "test-jwt-secret"

// SetupTestDB creates a fresh sqlite database with the full schema
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "microgrants_test.db")
	conn, err := db.Open(db.TypeSQLite, path)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.CreateSchema(conn), "failed to create schema")
	return conn
}

// SetupTestStore is SetupTestDB wrapped in a store
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t))
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         "file:test.db",
		DatabaseType:        db.TypeSQLite,
		JWTSecret:           TestJWTSecret,
		MaxGrantAmountCents: 500000,
		ContactsCacheSize:   16,
		CollaboratorTimeout: time.Second,
		LogLevel:            "debug",
	}
}

// CreateTestGrant inserts an open grant owned by ownerID
func CreateTestGrant(t *testing.T, s *store.Store, ownerID string, amountCents int64) models.Grant {
	t.Helper()

	g := models.Grant{
		Name:        "Test Grant",
		Description: "A test grant",
		AmountCents: amountCents,
		Categories:  models.StringList{"biology"},
		Deadline:    time.Now().Add(30 * 24 * time.Hour).UTC(),
		OwnerID:     ownerID,
	}
	require.NoError(t, s.CreateGrant(context.Background(), &g), "failed to create test grant")
	return g
}

// AddTestQuestion appends a short answer question to a grant
func AddTestQuestion(t *testing.T, s *store.Store, grantID, text string) models.Question {
	t.Helper()

	limit := 100
	q := models.Question{GrantID: grantID, Text: text, Type: models.QuestionShortAnswer, WordLimit: &limit}
	require.NoError(t, s.CreateQuestion(context.Background(), &q), "failed to create test question")
	return q
}

// AddTestChoiceQuestion appends a multiple choice question to a grant
func AddTestChoiceQuestion(t *testing.T, s *store.Store, grantID, text string, options ...string) models.Question {
	t.Helper()

	q := models.Question{GrantID: grantID, Text: text, Type: models.QuestionMultipleChoice, Options: options}
	require.NoError(t, s.CreateQuestion(context.Background(), &q), "failed to create test question")
	return q
}

// CreateTestProfile stores a profile, optionally with a lab
func CreateTestProfile(t *testing.T, s *store.Store, userID, name string) {
	t.Helper()
	require.NoError(t, s.UpsertProfile(context.Background(), models.Profile{UserID: userID, DisplayName: name}))
}

func CreateTestLab(t *testing.T, s *store.Store, labID, name string) {
	t.Helper()
	require.NoError(t, s.UpsertLab(context.Background(), models.Lab{ID: labID, Name: name}))
}

// SubmitTestApplication stores an application with one answer per
// (questionID -> content) entry. Applications are spaced one millisecond
// apart so submission order is stable.
func SubmitTestApplication(t *testing.T, s *store.Store, grantID, applicantID string, labID *string, answers map[string]string) models.Application {
	t.Helper()

	app := models.Application{
		GrantID:     grantID,
		ApplicantID: applicantID,
		LabID:       labID,
		CreatedAt:   nextTimestamp(),
	}
	var rows []models.Answer
	for questionID, content := range answers {
		rows = append(rows, models.Answer{QuestionID: questionID, Content: content})
	}
	require.NoError(t, s.CreateApplicationWithAnswers(context.Background(), &app, rows), "failed to create test application")
	return app
}

var (
	clockMu sync.Mutex
	clock   = time.Now().UTC().Truncate(time.Second)
)

func nextTimestamp() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	clock = clock.Add(time.Millisecond)
	return clock
}

// TokenFor returns a bearer token identifying userID
func TokenFor(t *testing.T, userID string) string {
	t.Helper()

	token, err := auth.IssueToken(userID, TestJWTSecret, time.Hour)
	require.NoError(t, err)
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AuthHeader returns the Authorization header for userID
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + TokenFor(t, userID)}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
