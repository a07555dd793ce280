package basehiring

import (
	"fmt"
	"time"
)

const interviewListPath = "/interview/list"

// localTZ is the timezone interview times are presented in. The upstream
// stores epoch seconds; consumers filter by local calendar date.
const localTZ = "Asia/Ho_Chi_Minh"

type Interviews struct {
	Items []*Interview
}

type Interview struct {
	ID            string `json:"id"`
	CandidateID   string `json:"candidate_id"`
	CandidateName string `json:"candidate_name"`
	OpeningID     string `json:"opening_id"`
	OpeningName   string `json:"opening_name"`
	Time          int64  `json:"time"`
}

// LocalTime returns the interview moment in the presentation timezone, and
// false when the upstream record carries no usable timestamp.
func (i *Interview) LocalTime() (time.Time, bool) {
	if i.Time <= 0 {
		return time.Time{}, false
	}

	loc, err := time.LoadLocation(localTZ)
	if err != nil {
		return time.Unix(i.Time, 0).UTC(), true
	}

	return time.Unix(i.Time, 0).In(loc), true
}

// ListInterviews retrieves the full interview schedule. Date filtering is
// done by the caller on localized dates, not by the upstream API.
func (c *Client) ListInterviews(token string) (*Interviews, error) {
	body, err := c.postForm(c.HiringURL, interviewListPath, nil, token)
	if err != nil {
		return nil, err
	}

	var interviews []*Interview
	if err := decodeInto(body["interviews"], &interviews); err != nil {
		return nil, fmt.Errorf("decoding interviews: %w", err)
	}

	return &Interviews{Items: interviews}, nil
}

func (is *Interviews) Len() int {
	return len(is.Items)
}

// FilterByOpening keeps interviews belonging to the given opening.
func (is *Interviews) FilterByOpening(openingID string) *Interviews {
	if openingID == "" {
		return is
	}

	kept := make([]*Interview, 0, len(is.Items))
	for _, interview := range is.Items {
		if interview.OpeningID == openingID {
			kept = append(kept, interview)
		}
	}
	return &Interviews{Items: kept}
}

// FilterByLocalDate keeps interviews whose localized date falls inside the
// given bounds. Records without a timestamp are dropped whenever any bound is
// set. A nil bound is open-ended.
func (is *Interviews) FilterByLocalDate(start, end *time.Time) *Interviews {
	if start == nil && end == nil {
		return is
	}

	kept := make([]*Interview, 0, len(is.Items))
	for _, interview := range is.Items {
		local, ok := interview.LocalTime()
		if !ok {
			continue
		}

		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		if start != nil && day.Before(dateOnly(*start)) {
			continue
		}
		if end != nil && day.After(dateOnly(*end)) {
			continue
		}
		kept = append(kept, interview)
	}

	return &Interviews{Items: kept}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
