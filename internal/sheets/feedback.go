package sheets

import (
	"strings"
	"time"
)

// timeFormats covers the layouts observed in the sheet's Time column. The
// column is filled by hand, so several conventions coexist.
var timeFormats = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// RecordedAt parses the free-form Time column. The second return value is
// false when the cell is empty or matches no known layout.
func (r *TestRecord) RecordedAt() (time.Time, bool) {
	value := strings.TrimSpace(r.Time)
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// IsFeedback reports whether the record is a feedback submission rather than
// an assessment test, by the sheet's naming convention.
func (r *TestRecord) IsFeedback() bool {
	return strings.Contains(strings.ToLower(r.TestName), "feedback")
}

// FilterFeedback keeps feedback records submitted on or after the optional
// date. Records without a parseable time are dropped when a date is set.
func FilterFeedback(records []*TestRecord, since *time.Time) []*TestRecord {
	kept := make([]*TestRecord, 0, len(records))
	for _, record := range records {
		if !record.IsFeedback() {
			continue
		}
		if since != nil {
			at, ok := record.RecordedAt()
			if !ok || at.Before(*since) {
				continue
			}
		}
		kept = append(kept, record)
	}
	return kept
}
