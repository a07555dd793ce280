package basehiring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := New(context.Background(), zap.NewNop(), "test-token")
	client.HiringURL = srv.URL
	client.AccountURL = srv.URL

	return client, srv
}

func TestListOpeningsDecodesLooselyTypedPayload(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		if got := r.PostFormValue("access_token"); got != "test-token" {
			t.Errorf("unexpected token %q", got)
		}

		// The ids and statuses arrive as numbers on some tenants.
		w.Write([]byte(`{"openings": [
			{"id": 101, "name": "Backend Engineer", "status": 10, "content": "<p>Go services</p>"},
			{"id": "205", "name": "Data Analyst", "status": "20", "content": ""}
		]}`))
	})

	openings, err := client.ListOpenings("test-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if openings.Len() != 2 {
		t.Fatalf("expected 2 openings, got %d", openings.Len())
	}
	if openings.Items[0].ID != "101" || openings.Items[0].Status != "10" {
		t.Fatalf("weak typing not applied: %+v", openings.Items[0])
	}

	active := openings.Active()
	if len(active) != 1 || active[0].Name != "Backend Engineer" {
		t.Fatalf("unexpected active openings: %v", active)
	}
}

func TestListOpeningsConnectivityError(t *testing.T) {
	t.Parallel()

	client, srv := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv.Close()

	if _, err := client.ListOpenings("test-token"); err == nil {
		t.Fatal("expected a connectivity error")
	}
}

func TestGetCandidateNotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code": 0, "message": "no such candidate"}`))
	})

	_, err := client.GetCandidate("test-token", "999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCandidateSuccess(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code": 1, "candidate": {
			"id": "77", "name": "Nguyen Van A", "stage_name": "Offered",
			"cvs": ["https://files.example.com/cv.pdf"],
			"form": [{"id": "expected_salary", "value": "1500"}],
			"evaluations": [{"id": "e1", "username": "hr.lead", "content": "<p>Solid</p>",
				"opening_export": {"id": "101", "name": "Backend Engineer"}}]
		}}`))
	})

	candidate, err := client.GetCandidate("test-token", "77")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if candidate.Name != "Nguyen Van A" || candidate.StageName != "Offered" {
		t.Fatalf("unexpected candidate: %+v", candidate)
	}
	if len(candidate.Evaluations) != 1 || candidate.Evaluations[0].Opening.ID != "101" {
		t.Fatalf("evaluations not decoded: %+v", candidate.Evaluations)
	}

	flat := FlattenFields(candidate.Form)
	if flat["expected_salary"] != "1500" {
		t.Fatalf("unexpected flattened form: %v", flat)
	}
}

func TestGetOpeningStages(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"opening": {"id": "101", "name": "Backend Engineer",
			"content": "<p>JD</p>",
			"stats": {"stages": [{"name": "Screening"}, {"name": ""}, {"name": "Offered"}]}}}`))
	})

	detail, err := client.GetOpening("test-token", "101")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(detail.Stages) != 2 || detail.Stages[0].Name != "Screening" || detail.Stages[1].Name != "Offered" {
		t.Fatalf("unexpected stages: %+v", detail.Stages)
	}
}

func TestCandidatesStageHelpers(t *testing.T) {
	t.Parallel()

	cs := &Candidates{Items: []*Candidate{
		{ID: "1", Name: "A", StageName: "Screening"},
		{ID: "2", Name: "B", StageName: "Offered"},
		{ID: "3", Name: "C", StageName: "Screening"},
		{ID: "4", Name: "D"},
	}}

	names := cs.StageNames()
	if len(names) != 2 || names[0] != "Screening" || names[1] != "Offered" {
		t.Fatalf("unexpected stage names: %v", names)
	}

	offered := cs.FilterByStages([]string{"Offered", "Hired"})
	if offered.Len() != 1 || offered.Items[0].ID != "2" {
		t.Fatalf("unexpected filtered candidates: %+v", offered.Items)
	}

	all := cs.FilterByStages(nil)
	if all.Len() != 4 {
		t.Fatalf("empty allow list must keep everyone, got %d", all.Len())
	}
}

func TestCandidatesUpdatedSince(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cs := &Candidates{Items: []*Candidate{
		{ID: "old", LastUpdate: cutoff.Add(-time.Hour).Unix()},
		{ID: "fresh", LastUpdate: cutoff.Add(time.Hour).Unix()},
	}}

	recent := cs.UpdatedSince(cutoff)
	if recent.Len() != 1 || recent.Items[0].ID != "fresh" {
		t.Fatalf("unexpected recent candidates: %+v", recent.Items)
	}
}

func TestInterviewsFilterByLocalDate(t *testing.T) {
	t.Parallel()

	// 2025-06-01 23:30 UTC is already 2025-06-02 in Asia/Ho_Chi_Minh (UTC+7).
	late := time.Date(2025, 6, 1, 23, 30, 0, 0, time.UTC)
	is := &Interviews{Items: []*Interview{
		{ID: "boundary", Time: late.Unix()},
		{ID: "dateless"},
	}}

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	got := is.FilterByLocalDate(&day, &day)
	if got.Len() != 1 || got.Items[0].ID != "boundary" {
		t.Fatalf("expected the localized date to match, got %+v", got.Items)
	}

	previous := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := is.FilterByLocalDate(&previous, &previous); got.Len() != 0 {
		t.Fatalf("expected no interviews on the UTC date, got %+v", got.Items)
	}
}
