package basehiring

import (
	"fmt"
	"net/url"
)

const (
	openingListPath = "/opening/list"
	openingGetPath  = "/opening/get"
)

type Openings struct {
	Items []*Opening
}

type Opening struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Content string `json:"content"`
}

// Stage is one pipeline step of an opening.
type Stage struct {
	Name string `json:"name"`
}

// OpeningDetail is the full record behind a single opening, including its
// pipeline stages.
type OpeningDetail struct {
	ID      string
	Name    string
	Content string
	Stages  []Stage
}

// ListOpenings retrieves every opening visible to the credential, regardless
// of status. Filtering to active ones happens in the catalog.
func (c *Client) ListOpenings(token string) (*Openings, error) {
	body, err := c.postForm(c.HiringURL, openingListPath, nil, token)
	if err != nil {
		return nil, err
	}

	var openings []*Opening
	if err := decodeInto(body["openings"], &openings); err != nil {
		return nil, fmt.Errorf("decoding openings: %w", err)
	}

	return &Openings{Items: openings}, nil
}

// GetOpening retrieves a single opening with its pipeline stages. The stage
// list lives under opening.stats.stages in the upstream payload.
func (c *Client) GetOpening(token, id string) (*OpeningDetail, error) {
	params := url.Values{}
	params.Set("id", id)

	body, err := c.postForm(c.HiringURL, openingGetPath, params, token)
	if err != nil {
		return nil, err
	}

	raw, ok := body["opening"].(map[string]any)
	if !ok {
		return nil, ErrNotFound
	}

	var opening struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Content string `json:"content"`
		Stats   struct {
			Stages []Stage `json:"stages"`
		} `json:"stats"`
	}
	if err := decodeInto(raw, &opening); err != nil {
		return nil, fmt.Errorf("decoding opening %s: %w", id, err)
	}

	stages := make([]Stage, 0, len(opening.Stats.Stages))
	for _, stage := range opening.Stats.Stages {
		if stage.Name != "" {
			stages = append(stages, stage)
		}
	}

	return &OpeningDetail{
		ID:      opening.ID,
		Name:    opening.Name,
		Content: opening.Content,
		Stages:  stages,
	}, nil
}

func (o *Openings) Len() int {
	return len(o.Items)
}

// Active returns the openings whose upstream status marks them as hiring.
func (o *Openings) Active() []*Opening {
	active := make([]*Opening, 0, len(o.Items))
	for _, opening := range o.Items {
		if opening.Status == StatusActive {
			active = append(active, opening)
		}
	}
	return active
}

func (o *Openings) FindByID(id string) *Opening {
	for _, opening := range o.Items {
		if opening.ID == id {
			return opening
		}
	}
	return nil
}
