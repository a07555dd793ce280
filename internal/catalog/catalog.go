// Package catalog owns the cacheable resource collections: active openings,
// their job descriptions and the account user directory. Each fetcher is a
// read-through wrapper around the cache store; shaping happens once per
// fetch, never per caller.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/cache"
	"github.com/tranvh/hiregate/internal/htmltext"
)

// A job description body shorter than this after markup stripping is treated
// as "no real JD" and dropped from the collection.
const minJDLength = 10

// ceoOverride forces one specific directory entry's title regardless of what
// the account API reports. Business rule carried over from the previous
// system.
var ceoOverride = struct{ name, title string }{name: "Hoang Tran", title: "CEO"}

type hiringAPI interface {
	ListOpenings(token string) (*basehiring.Openings, error)
	ListUsers(token string) ([]*basehiring.User, error)
}

// OpeningSummary is the {id, name} projection of an active opening, the pool
// shape the resolver consumes.
type OpeningSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JobDescription is an active opening whose rich-text body survived
// normalization.
type JobDescription struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"job_description"`
	HTML string `json:"html_content"`
}

// UserInfo is one directory entry, keyed by account username elsewhere.
type UserInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

type Catalog struct {
	store        *cache.Store
	api          hiringAPI
	logger       *zap.Logger
	hiringToken  string
	accountToken string
}

// New builds a catalog. accountToken may be empty; the user directory then
// degrades to an empty mapping instead of failing requests that render
// reviews.
func New(store *cache.Store, api hiringAPI, logger *zap.Logger, hiringToken, accountToken string) *Catalog {
	return &Catalog{
		store:        store,
		api:          api,
		logger:       logger,
		hiringToken:  hiringToken,
		accountToken: accountToken,
	}
}

// Openings returns the current snapshot of active openings.
func (c *Catalog) Openings(ctx context.Context, bypass bool) ([]*OpeningSummary, error) {
	return cache.GetOrFetch(ctx, c.store, cache.KindOpenings, bypass, func(context.Context) ([]*OpeningSummary, error) {
		listed, err := c.api.ListOpenings(c.hiringToken)
		if err != nil {
			return nil, err
		}

		active := listed.Active()
		summaries := make([]*OpeningSummary, 0, len(active))
		for _, opening := range active {
			summaries = append(summaries, &OpeningSummary{ID: opening.ID, Name: opening.Name})
		}

		c.logger.Debug("refreshed openings snapshot",
			zap.Int("total", listed.Len()),
			zap.Int("active", len(summaries)),
		)

		return summaries, nil
	})
}

// JobDescriptions returns the current snapshot of normalized JDs for active
// openings.
func (c *Catalog) JobDescriptions(ctx context.Context, bypass bool) ([]*JobDescription, error) {
	return cache.GetOrFetch(ctx, c.store, cache.KindJobDescriptions, bypass, func(context.Context) ([]*JobDescription, error) {
		listed, err := c.api.ListOpenings(c.hiringToken)
		if err != nil {
			return nil, err
		}

		jds := make([]*JobDescription, 0, listed.Len())
		for _, opening := range listed.Active() {
			text := htmltext.Strip(opening.Content)
			if len(text) < minJDLength {
				continue
			}
			jds = append(jds, &JobDescription{
				ID:   opening.ID,
				Name: opening.Name,
				Text: text,
				HTML: opening.Content,
			})
		}

		c.logger.Debug("refreshed job description snapshot", zap.Int("count", len(jds)))

		return jds, nil
	})
}

// FindJobDescription looks an opening's JD up in the cached snapshot and
// falls back to one forced refresh before giving up, since an opening freshly
// switched to active may not be in the snapshot yet. A missing JD is not an
// error.
func (c *Catalog) FindJobDescription(ctx context.Context, openingID string) (*JobDescription, error) {
	jds, err := c.JobDescriptions(ctx, false)
	if err != nil {
		return nil, err
	}
	if jd := findJD(jds, openingID); jd != nil {
		return jd, nil
	}

	jds, err = c.JobDescriptions(ctx, true)
	if err != nil {
		return nil, err
	}

	return findJD(jds, openingID), nil
}

func findJD(jds []*JobDescription, openingID string) *JobDescription {
	for _, jd := range jds {
		if jd.ID == openingID {
			return jd
		}
	}
	return nil
}

// Users returns the username-to-identity mapping used to render reviewer
// names. Failures degrade to an empty mapping: reviews still render, just
// without resolved names.
func (c *Catalog) Users(ctx context.Context) map[string]UserInfo {
	if c.accountToken == "" {
		return map[string]UserInfo{}
	}

	users, err := cache.GetOrFetch(ctx, c.store, cache.KindUsers, false, func(context.Context) (map[string]UserInfo, error) {
		listed, err := c.api.ListUsers(c.accountToken)
		if err != nil {
			return nil, err
		}

		directory := make(map[string]UserInfo, len(listed))
		for _, user := range listed {
			if user.Username == "" {
				continue
			}

			info := UserInfo{Name: user.Name, Title: user.Title}
			if user.Name == ceoOverride.name {
				info.Title = ceoOverride.title
			}
			directory[user.Username] = info
		}

		return directory, nil
	})
	if err != nil {
		c.logger.Warn("user directory unavailable, rendering reviews without names", zap.Error(err))
		return map[string]UserInfo{}
	}

	return users
}
