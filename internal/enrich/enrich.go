// Package enrich assembles the outward candidate view. The raw upstream
// record carries evaluation HTML, reviewer usernames, an {id, value} form
// list and CV file URLs; enrichment resolves all of that into the shape the
// API consumers expect.
package enrich

import (
	"context"

	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/catalog"
	"github.com/tranvh/hiregate/internal/docparse"
	"github.com/tranvh/hiregate/internal/htmltext"
	"github.com/tranvh/hiregate/internal/sheets"
)

// Review is one evaluation with the reviewer resolved to a real identity.
type Review struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// View is the enriched candidate record served to consumers. Review keeps
// the plain-text summary of the first evaluation for older clients; Reviews
// carries the full list.
type View struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Email       string               `json:"email"`
	Phone       string               `json:"phone"`
	Gender      string               `json:"gender"`
	CVURL       string               `json:"cv_url,omitempty"`
	CVText      string               `json:"cv_text,omitempty"`
	Review      string               `json:"review,omitempty"`
	Reviews     []Review             `json:"reviews"`
	FormData    map[string]any       `json:"form_data"`
	OpeningID   string               `json:"opening_id,omitempty"`
	StageID     string               `json:"stage_id,omitempty"`
	StageName   string               `json:"stage_name,omitempty"`
	TestResults []*sheets.TestRecord `json:"test_results"`
}

type testReader interface {
	Configured() bool
	ReadByCandidate(ctx context.Context, candidateID string) ([]*sheets.TestRecord, error)
}

type fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Enricher resolves reviewer identities, extracts CV text and attaches
// sheet-backed test results to candidate records.
type Enricher struct {
	tests      testReader
	downloader fetcher
	extractor  docparse.Extractor
	logger     *zap.Logger
}

func New(tests testReader, downloader fetcher, extractor docparse.Extractor, logger *zap.Logger) *Enricher {
	return &Enricher{
		tests:      tests,
		downloader: downloader,
		extractor:  extractor,
		logger:     logger,
	}
}

// Candidate builds the enriched view of one candidate. users comes from the
// account directory; an empty map leaves reviewer names as raw usernames.
// Every enrichment input is best-effort: a failed CV download or sheet read
// degrades that field, never the whole view.
func (e *Enricher) Candidate(ctx context.Context, c *basehiring.Candidate, users map[string]catalog.UserInfo, openingID string) *View {
	view := &View{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Gender:    c.Gender,
		Reviews:   Reviews(c.Evaluations, users),
		Review:    Summary(c.Evaluations),
		FormData:  basehiring.FlattenFields(c.Form),
		OpeningID: openingID,
		StageID:   c.StageID,
		StageName: c.StageName,
	}
	if len(view.FormData) == 0 {
		view.FormData = basehiring.FlattenFields(c.Fields)
	}

	if len(c.CVs) > 0 {
		view.CVURL = c.CVs[0]
		view.CVText = e.cvText(ctx, view.CVURL)
	}

	view.TestResults = e.testResults(ctx, c.ID)
	return view
}

// Reviews resolves each evaluation into a Review. Unknown usernames stay as
// themselves; a missing username becomes "N/A".
func Reviews(evaluations []*basehiring.Evaluation, users map[string]catalog.UserInfo) []Review {
	reviews := make([]Review, 0, len(evaluations))
	for _, eval := range evaluations {
		if eval.Content == "" {
			continue
		}

		name := eval.Username
		title := ""
		if info, ok := users[eval.Username]; ok {
			name = info.Name
			title = info.Title
		}
		if name == "" {
			name = "N/A"
		}

		reviews = append(reviews, Review{
			ID:      eval.ID,
			Name:    name,
			Title:   title,
			Content: htmltext.Strip(eval.Content),
		})
	}
	return reviews
}

// Summary returns the plain text of the first evaluation, the legacy single
// review field.
func Summary(evaluations []*basehiring.Evaluation) string {
	if len(evaluations) == 0 {
		return ""
	}
	return htmltext.Strip(evaluations[0].Content)
}

func (e *Enricher) cvText(ctx context.Context, url string) string {
	kind := docparse.DetectKind(url, "")
	if kind == docparse.KindUnknown {
		kind = docparse.KindPDF
	}

	data, err := e.downloader.Fetch(ctx, url)
	if err != nil {
		e.logger.Debug("cv download failed", zap.String("url", url), zap.Error(err))
		return ""
	}

	text, err := e.extractor.Extract(data, kind)
	if err != nil {
		e.logger.Debug("cv extraction failed", zap.String("url", url), zap.Error(err))
		return ""
	}
	return text
}

func (e *Enricher) testResults(ctx context.Context, candidateID string) []*sheets.TestRecord {
	if !e.tests.Configured() {
		return nil
	}

	records, err := e.tests.ReadByCandidate(ctx, candidateID)
	if err != nil {
		e.logger.Warn("test record read failed",
			zap.String("candidate_id", candidateID), zap.Error(err))
		return nil
	}
	return records
}
