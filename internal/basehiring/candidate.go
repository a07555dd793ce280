package basehiring

import (
	"fmt"
	"net/url"
	"time"
)

const (
	candidateListPath     = "/candidate/list"
	candidateGetPath      = "/candidate/get"
	candidateMessagesPath = "/candidate/messages"

	// The API reports logical success as code 1 on single-entity endpoints.
	codeSuccess = 1
)

type Candidates struct {
	Items []*Candidate
}

type Candidate struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone"`
	Gender      string        `json:"gender"`
	GenderText  string        `json:"gender_text"`
	Title       string        `json:"title"`
	Source      string        `json:"source"`
	DOB         string        `json:"dob"`
	Address     string        `json:"address"`
	SSN         string        `json:"ssn"`
	StageID     string        `json:"stage_id"`
	StageName   string        `json:"stage_name"`
	Status      string        `json:"status"`
	LastUpdate  int64         `json:"last_update"`
	CVs         []string      `json:"cvs"`
	Form        []FormField   `json:"form"`
	Fields      []FormField   `json:"fields"`
	Evaluations []*Evaluation `json:"evaluations"`
}

// FormField is one entry of the flattenable {id, value} lists the API uses
// for custom fields.
type FormField struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

type Evaluation struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Content  string `json:"content"`
	Opening  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"opening_export"`
}

// Message is one entry of a candidate's message thread, newest first.
type Message struct {
	ID            string        `json:"id"`
	Content       string        `json:"content"`
	HasAttachment int           `json:"has_attachment"`
	Attachments   []*Attachment `json:"attachments"`
}

type Attachment struct {
	Name string `json:"name"`
	Src  string `json:"src"`
	URL  string `json:"url"`
	Org  string `json:"org"`
}

// FileURL returns the first usable download location of the attachment.
func (a *Attachment) FileURL() string {
	for _, u := range []string{a.Src, a.URL, a.Org} {
		if u != "" {
			return u
		}
	}
	return ""
}

// ListCandidates retrieves the candidates of one opening, optionally bounded
// by application date. This collection is large and mutable, so it is never
// cached.
func (c *Client) ListCandidates(token, openingID string, startDate, endDate *time.Time) (*Candidates, error) {
	params := url.Values{}
	params.Set("opening_id", openingID)
	if startDate != nil {
		params.Set("start_date", startDate.Format("2006-01-02"))
	}
	if endDate != nil {
		params.Set("end_date", endDate.Format("2006-01-02"))
	}

	body, err := c.postForm(c.HiringURL, candidateListPath, params, token)
	if err != nil {
		return nil, err
	}

	var candidates []*Candidate
	if err := decodeInto(body["candidates"], &candidates); err != nil {
		return nil, fmt.Errorf("decoding candidates: %w", err)
	}

	return &Candidates{Items: candidates}, nil
}

// GetCandidate retrieves a single candidate record. A well-formed response
// without a candidate maps to ErrNotFound.
func (c *Client) GetCandidate(token, id string) (*Candidate, error) {
	params := url.Values{}
	params.Set("id", id)

	body, err := c.postForm(c.HiringURL, candidateGetPath, params, token)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Code      int        `json:"code"`
		Message   string     `json:"message"`
		Candidate *Candidate `json:"candidate"`
	}
	if err := decodeInto(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding candidate %s: %w", id, err)
	}

	if envelope.Code != codeSuccess || envelope.Candidate == nil {
		if envelope.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, envelope.Message)
		}
		return nil, ErrNotFound
	}

	return envelope.Candidate, nil
}

// ListMessages retrieves a candidate's message thread, newest first.
func (c *Client) ListMessages(token, candidateID string) ([]*Message, error) {
	params := url.Values{}
	params.Set("id", candidateID)

	body, err := c.postForm(c.HiringURL, candidateMessagesPath, params, token)
	if err != nil {
		return nil, err
	}

	var messages []*Message
	if err := decodeInto(body["messages"], &messages); err != nil {
		return nil, fmt.Errorf("decoding messages: %w", err)
	}

	return messages, nil
}

func (cs *Candidates) Len() int {
	return len(cs.Items)
}

// StageNames returns the distinct pipeline stage names observed among the
// candidates, in first-seen order.
func (cs *Candidates) StageNames() []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, candidate := range cs.Items {
		if candidate.StageName == "" || seen[candidate.StageName] {
			continue
		}
		seen[candidate.StageName] = true
		names = append(names, candidate.StageName)
	}
	return names
}

// FilterByStages returns the candidates whose stage name is in the allow
// list. An empty allow list keeps everyone.
func (cs *Candidates) FilterByStages(stages []string) *Candidates {
	if len(stages) == 0 {
		return cs
	}

	allowed := make(map[string]bool, len(stages))
	for _, stage := range stages {
		allowed[stage] = true
	}

	kept := make([]*Candidate, 0, len(cs.Items))
	for _, candidate := range cs.Items {
		if candidate.StageName != "" && allowed[candidate.StageName] {
			kept = append(kept, candidate)
		}
	}

	return &Candidates{Items: kept}
}

// UpdatedSince returns the candidates whose last upstream update is not older
// than the cutoff.
func (cs *Candidates) UpdatedSince(cutoff time.Time) *Candidates {
	kept := make([]*Candidate, 0, len(cs.Items))
	for _, candidate := range cs.Items {
		if candidate.LastUpdate >= cutoff.Unix() {
			kept = append(kept, candidate)
		}
	}
	return &Candidates{Items: kept}
}

// FlattenFields converts an {id, value} list into a plain map.
func FlattenFields(fields []FormField) map[string]any {
	flat := make(map[string]any, len(fields))
	for _, field := range fields {
		if field.ID != "" {
			flat[field.ID] = field.Value
		}
	}
	return flat
}
