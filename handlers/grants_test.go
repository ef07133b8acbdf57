// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/microgrants/cliparse"
	"github.com/danielhkuo/microgrants/middleware"
	"github.com/danielhkuo/microgrants/models"
	"github.com/danielhkuo/microgrants/payments"
	"github.com/danielhkuo/microgrants/review"
	"github.com/danielhkuo/microgrants/store"
	"github.com/danielhkuo/microgrants/testutil"
)

type testEnv struct {
	store   *store.Store
	ledger  *payments.Ledger
	cfg     cliparse.Config
	grants  *GrantHandler
	applies *ApplicationHandler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	s := testutil.SetupTestStore(t)
	cfg := testutil.GetTestConfig()
	ledger := payments.NewLedger()
	svc := review.NewService(s, ledger, nil, review.Options{MaxGrantAmountCents: cfg.MaxGrantAmountCents})

	return testEnv{
		store:   s,
		ledger:  ledger,
		cfg:     cfg,
		grants:  NewGrantHandler(svc),
		applies: NewApplicationHandler(svc),
	}
}

// request builds a request as userID, with path values set the way the mux would
func request(method, path, userID string, body interface{}, pathValues map[string]string) *http.Request {
	req := testutil.MakeRequest(method, path, body, nil)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if userID != "" {
		req = req.WithContext(middleware.WithCaller(req.Context(), userID))
	}
	return req
}

func TestCreateGrant(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name: "valid grant",
			body: models.CreateGrantRequest{
				Name: "Seed Fund", AmountCents: 100000, Categories: []string{"biology"},
				Deadline: time.Now().Add(48 * time.Hour),
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       models.CreateGrantRequest{AmountCents: 100000, Deadline: time.Now().Add(time.Hour)},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "amount over the cap",
			body: models.CreateGrantRequest{
				Name: "Huge", AmountCents: env.cfg.MaxGrantAmountCents + 1, Deadline: time.Now().Add(time.Hour),
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.grants.CreateGrant(w, request("POST", "/grants", "owner", tt.body, nil))

			testutil.AssertStatus(t, w, tt.wantStatus)
			if tt.wantStatus == http.StatusCreated {
				var resp models.CreateGrantResponse
				testutil.AssertJSON(t, w, &resp)
				assert.NotEmpty(t, resp.GrantID)
			}
		})
	}
}

func TestListMyGrants(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateTestGrant(t, env.store, "owner", 1000)
	testutil.CreateTestGrant(t, env.store, "owner", 2000)
	testutil.CreateTestGrant(t, env.store, "other", 3000)

	w := httptest.NewRecorder()
	env.grants.ListMyGrants(w, request("GET", "/grants", "owner", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var grants []models.Grant
	testutil.AssertJSON(t, w, &grants)
	assert.Len(t, grants, 2)
}

func TestGetGrant(t *testing.T) {
	env := newTestEnv(t)
	grant := testutil.CreateTestGrant(t, env.store, "owner", 150000)

	t.Run("anonymous viewer", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.grants.GetGrant(w, request("GET", "/grants/"+grant.ID, "", nil, map[string]string{"id": grant.ID}))
		testutil.AssertStatus(t, w, http.StatusOK)

		var state models.GrantState
		testutil.AssertJSON(t, w, &state)
		assert.Equal(t, "$1,500.00", state.AmountDisplay)
		assert.False(t, state.ReadOnly)
	})

	t.Run("not found", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.grants.GetGrant(w, request("GET", "/grants/missing", "", nil, map[string]string{"id": "missing"}))
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestGetPreview(t *testing.T) {
	env := newTestEnv(t)
	grant := testutil.CreateTestGrant(t, env.store, "owner", 1000)
	testutil.SubmitTestApplication(t, env.store, grant.ID, "a", nil, nil)

	w := httptest.NewRecorder()
	env.grants.GetPreview(w, request("GET", "/grants/"+grant.ID+"/preview", "", nil, map[string]string{"id": grant.ID}))
	testutil.AssertStatus(t, w, http.StatusOK)

	var preview models.GrantPreviewResponse
	testutil.AssertJSON(t, w, &preview)
	assert.Equal(t, 1, preview.ApplicationCount)
	assert.Equal(t, "$10.00", preview.AmountDisplay)
}

func TestDeleteGrant(t *testing.T) {
	env := newTestEnv(t)
	grant := testutil.CreateTestGrant(t, env.store, "owner", 1000)
	testutil.SubmitTestApplication(t, env.store, grant.ID, "a", nil, nil)
	path := map[string]string{"id": grant.ID}

	w := httptest.NewRecorder()
	env.grants.DeleteGrant(w, request("DELETE", "/grants/"+grant.ID, "intruder", nil, path))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = httptest.NewRecorder()
	env.grants.DeleteGrant(w, request("DELETE", "/grants/"+grant.ID, "owner", nil, path))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = httptest.NewRecorder()
	env.grants.DeleteGrant(w, request("DELETE", "/grants/"+grant.ID, "owner", nil, path))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestAddQuestion(t *testing.T) {
	env := newTestEnv(t)
	grant := testutil.CreateTestGrant(t, env.store, "owner", 1000)
	path := map[string]string{"id": grant.ID}

	w := httptest.NewRecorder()
	env.grants.AddQuestion(w, request("POST", "/grants/"+grant.ID+"/questions", "owner",
		models.AddQuestionRequest{Text: "Stage", Type: models.QuestionMultipleChoice, Options: []string{"idea", "prototype"}}, path))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var resp models.AddQuestionResponse
	testutil.AssertJSON(t, w, &resp)
	assert.NotEmpty(t, resp.QuestionID)

	testutil.SubmitTestApplication(t, env.store, grant.ID, "a", nil, map[string]string{resp.QuestionID: "idea"})

	w = httptest.NewRecorder()
	env.grants.AddQuestion(w, request("POST", "/grants/"+grant.ID+"/questions", "owner",
		models.AddQuestionRequest{Text: "Late", Type: models.QuestionShortAnswer}, path))
	testutil.AssertStatus(t, w, http.StatusPreconditionFailed)

	var errResp models.ErrorResponse
	testutil.AssertJSON(t, w, &errResp)
	assert.Equal(t, string(review.ReasonHasApplications), errResp.Reason)
}

func TestAward(t *testing.T) {
	tests := []struct {
		name       string
		caller     string
		withMethod bool
		body       models.AwardRequest
		wantStatus int
		wantReason review.Reason
	}{
		{"awarded", "owner", true, models.AwardRequest{AuthorizationConfirmed: true}, http.StatusOK, ""},
		{"not owner", "intruder", true, models.AwardRequest{AuthorizationConfirmed: true}, http.StatusForbidden, ""},
		{"not confirmed", "owner", true, models.AwardRequest{}, http.StatusPreconditionFailed, review.ReasonAuthorizationNotConfirmed},
		{"no payment method", "owner", false, models.AwardRequest{AuthorizationConfirmed: true}, http.StatusPreconditionFailed, review.ReasonNoPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.withMethod {
				env.ledger.SetPaymentMethod("owner", payments.Method{Brand: "visa", Last4: "4242"})
			}
			grant := testutil.CreateTestGrant(t, env.store, "owner", 50000)
			app := testutil.SubmitTestApplication(t, env.store, grant.ID, "winner", nil, nil)

			body := tt.body
			body.ApplicationID = app.ID
			w := httptest.NewRecorder()
			env.grants.Award(w, request("POST", "/grants/"+grant.ID+"/award", tt.caller, body, map[string]string{"id": grant.ID}))
			testutil.AssertStatus(t, w, tt.wantStatus)

			if tt.wantStatus == http.StatusOK {
				var state models.GrantState
				testutil.AssertJSON(t, w, &state)
				assert.True(t, state.ReadOnly)
				require.NotNil(t, state.Winner)
				assert.Equal(t, app.ID, state.Winner.ApplicationID)
			}
			if tt.wantReason != "" {
				var errResp models.ErrorResponse
				testutil.AssertJSON(t, w, &errResp)
				assert.Equal(t, string(tt.wantReason), errResp.Reason)
			}
		})
	}
}

func TestAward_MissingApplicationID(t *testing.T) {
	env := newTestEnv(t)
	grant := testutil.CreateTestGrant(t, env.store, "owner", 50000)

	w := httptest.NewRecorder()
	env.grants.Award(w, request("POST", "/grants/"+grant.ID+"/award", "owner",
		models.AwardRequest{AuthorizationConfirmed: true}, map[string]string{"id": grant.ID}))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestAward_PaymentServiceDown(t *testing.T) {
	env := newTestEnv(t)
	env.ledger.FailPaymentLookup = payments.ErrUnavailable
	grant := testutil.CreateTestGrant(t, env.store, "owner", 50000)
	app := testutil.SubmitTestApplication(t, env.store, grant.ID, "winner", nil, nil)

	w := httptest.NewRecorder()
	env.grants.Award(w, request("POST", "/grants/"+grant.ID+"/award", "owner",
		models.AwardRequest{ApplicationID: app.ID, AuthorizationConfirmed: true}, map[string]string{"id": grant.ID}))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
}
