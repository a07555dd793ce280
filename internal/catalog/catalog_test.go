package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/cache"
)

type fakeAPI struct {
	openings     []*basehiring.Opening
	users        []*basehiring.User
	openingCalls int
	userCalls    int
	openingErr   error
	userErr      error
}

func (f *fakeAPI) ListOpenings(string) (*basehiring.Openings, error) {
	f.openingCalls++
	if f.openingErr != nil {
		return nil, f.openingErr
	}
	return &basehiring.Openings{Items: f.openings}, nil
}

func (f *fakeAPI) ListUsers(string) ([]*basehiring.User, error) {
	f.userCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.users, nil
}

func newCatalog(api *fakeAPI, accountToken string) *Catalog {
	store := cache.NewStore(5*time.Minute, zap.NewNop())
	return New(store, api, zap.NewNop(), "hiring-token", accountToken)
}

func TestOpeningsKeepsOnlyActive(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{openings: []*basehiring.Opening{
		{ID: "1", Name: "Backend Engineer", Status: basehiring.StatusActive},
		{ID: "2", Name: "Closed Role", Status: "20"},
		{ID: "3", Name: "Data Analyst", Status: basehiring.StatusActive},
	}}

	got, err := newCatalog(api, "").Openings(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("unexpected openings: %+v", got)
	}
}

func TestOpeningsServedFromCache(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{openings: []*basehiring.Opening{
		{ID: "1", Name: "Backend Engineer", Status: basehiring.StatusActive},
	}}
	c := newCatalog(api, "")
	ctx := context.Background()

	if _, err := c.Openings(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Openings(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if api.openingCalls != 1 {
		t.Fatalf("expected one upstream call, got %d", api.openingCalls)
	}
}

func TestJobDescriptionsDropShortBodies(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{openings: []*basehiring.Opening{
		{ID: "1", Name: "Backend Engineer", Status: basehiring.StatusActive,
			Content: "<p>Build and operate Go services for the hiring platform.</p>"},
		{ID: "2", Name: "No JD Role", Status: basehiring.StatusActive, Content: "<p>tbd</p>"},
		{ID: "3", Name: "Closed Role", Status: "20", Content: "<p>A long enough description here.</p>"},
	}}

	got, err := newCatalog(api, "").JobDescriptions(context.Background(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected job descriptions: %+v", got)
	}
	if got[0].Text != "Build and operate Go services for the hiring platform." {
		t.Fatalf("markup not stripped: %q", got[0].Text)
	}
}

func TestFindJobDescriptionRefreshesOnMiss(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	c := newCatalog(api, "")
	ctx := context.Background()

	// Warm the cache while the opening is still missing upstream.
	if _, err := c.JobDescriptions(ctx, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	api.openings = []*basehiring.Opening{
		{ID: "9", Name: "New Role", Status: basehiring.StatusActive,
			Content: "<p>A freshly published job description.</p>"},
	}

	jd, err := c.FindJobDescription(ctx, "9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jd == nil || jd.ID != "9" {
		t.Fatalf("expected the forced refresh to surface the new JD, got %+v", jd)
	}
	if api.openingCalls != 2 {
		t.Fatalf("expected exactly one forced refresh, got %d calls", api.openingCalls)
	}
}

func TestUsersAppliesOverrideAndDegradesOnFailure(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{users: []*basehiring.User{
		{Username: "hoang.tran", Name: "Hoang Tran", Title: "Head of Something"},
		{Username: "hr.lead", Name: "Le Thi B", Title: "HR Lead"},
		{Name: "No Username"},
	}}

	users := newCatalog(api, "account-token").Users(context.Background())
	if len(users) != 2 {
		t.Fatalf("unexpected directory size: %d", len(users))
	}
	if users["hoang.tran"].Title != "CEO" {
		t.Fatalf("expected CEO override, got %q", users["hoang.tran"].Title)
	}
	if users["hr.lead"].Title != "HR Lead" {
		t.Fatalf("unexpected title: %q", users["hr.lead"].Title)
	}

	failing := &fakeAPI{userErr: errors.New("account api down")}
	if got := newCatalog(failing, "account-token").Users(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty mapping on failure, got %v", got)
	}
}

func TestUsersWithoutCredential(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	if got := newCatalog(api, "").Users(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty mapping, got %v", got)
	}
	if api.userCalls != 0 {
		t.Fatal("must not call the account api without a credential")
	}
}
