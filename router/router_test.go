// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pollapp/pollapp-api/middleware"
	"github.com/pollapp/pollapp-api/models"
	"github.com/pollapp/pollapp-api/service"
	"github.com/pollapp/pollapp-api/store"
	"github.com/pollapp/pollapp-api/testutil"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()

	db := testutil.SetupTestDB(t)
	svc := service.New(store.NewSQLStore(db), store.NewSQLDemoStore(db))
	return NewRouter(svc, testutil.GetTestConfig())
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "pollapp API v1" {
		t.Errorf("Expected body 'pollapp API v1', got '%s'", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := middleware.WithMetrics(newTestRouter(t))

	// Generate labelled samples for a routed and an unrouted request.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/polls/nonexistent", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ballots", nil))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "pollapp_http_requests_total") {
		t.Error("Expected request counter in metrics output")
	}
	if !strings.Contains(body, `route="GET /polls/{id}"`) {
		t.Error("Expected route pattern label in metrics output")
	}
	if !strings.Contains(body, `route="unmatched"`) {
		t.Error("Expected unmatched label in metrics output")
	}
}

func TestRouteExistence(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/"},

		{"GET", "/polls"},
		{"POST", "/polls"},
		{"GET", "/polls/test-id"},
		{"PUT", "/polls/test-id"},
		{"DELETE", "/polls/test-id"},
		{"POST", "/polls/test-id/publish"},
		{"POST", "/polls/test-id/close"},

		{"POST", "/polls/test-id/votes"},
		{"GET", "/polls/test-id/my-votes"},

		{"POST", "/polls/test-id/demo-votes"},
		{"GET", "/polls/test-id/demo-votes"},
		{"DELETE", "/polls/test-id/demo-votes"},
		{"GET", "/polls/test-id/demo-votes/session"},

		{"GET", "/polls/test-id/voters/permissions"},
		{"GET", "/polls/test-id/voters"},

		{"GET", "/polls/test-id/comments"},
		{"POST", "/polls/test-id/comments"},
		{"PUT", "/profiles/me"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			// 400, 401, 404 are all valid responses depending on handler logic
			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"GET to votes endpoint", "GET", "/polls/test-id/votes", http.StatusMethodNotAllowed},
		{"PATCH a poll", "PATCH", "/polls/test-id", http.StatusMethodNotAllowed},
		{"unknown path", "GET", "/ballots", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestAuthenticatedRoute(t *testing.T) {
	mux := newTestRouter(t)
	cfg := testutil.GetTestConfig()

	t.Run("bearer token identifies the requester", func(t *testing.T) {
		body := models.CreatePollRequest{Title: "Lang?", Options: []string{"JS", "Py"}}
		req := testutil.MakeRequest("POST", "/polls", body, testutil.AuthHeaders(t, cfg, "owner"))
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusCreated)
		var poll models.PollDetails
		testutil.AssertJSON(t, w, &poll)
		if poll.CreatedBy != "owner" {
			t.Errorf("Expected createdBy 'owner', got '%s'", poll.CreatedBy)
		}
	})

	t.Run("missing token is anonymous", func(t *testing.T) {
		body := models.CreatePollRequest{Title: "Lang?", Options: []string{"JS", "Py"}}
		req := testutil.MakeRequest("POST", "/polls", body, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("forged token is rejected on public reads", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/polls", nil, map[string]string{"Authorization": "Bearer forged"})
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})
}

func TestPathParameterExtraction(t *testing.T) {
	mux := newTestRouter(t)
	cfg := testutil.GetTestConfig()

	req := testutil.MakeRequest("POST", "/polls",
		models.CreatePollRequest{Title: "Lang?", Options: []string{"JS", "Py"}},
		testutil.AuthHeaders(t, cfg, "owner"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.PollDetails
	testutil.AssertJSON(t, w, &created)

	req = httptest.NewRequest("GET", "/polls/"+created.ID, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var fetched models.PollDetails
	testutil.AssertJSON(t, w, &fetched)
	if fetched.ID != created.ID {
		t.Errorf("Expected poll %s, got %s", created.ID, fetched.ID)
	}
}
