package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tranvh/hiregate/internal/basehiring"
	"github.com/tranvh/hiregate/internal/cache"
	"github.com/tranvh/hiregate/internal/enrich"
	"github.com/tranvh/hiregate/internal/filtering"
	"github.com/tranvh/hiregate/internal/sheets"
)

const dateLayout = "2006-01-02"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	snapshots := map[string]any{}
	for _, kind := range []cache.Kind{cache.KindOpenings, cache.KindJobDescriptions, cache.KindUsers} {
		if age, ok := s.store.Age(kind); ok {
			snapshots[string(kind)] = map[string]any{"age_seconds": int(age.Seconds())}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "hiregate",
		"cache": map[string]any{
			"ttl_seconds": int(s.store.TTL().Seconds()),
			"snapshots":   snapshots,
		},
		"endpoints": map[string]string{
			"openings":        "/api/openings",
			"job_description": "/api/opening/job-description",
			"candidates":      "/api/opening/{opening}/candidates",
			"interviews":      "/api/interviews",
			"candidate":       "/api/candidate",
			"offer_letter":    "/api/offer-letter",
			"feedback":        "/api/feedback",
			"metrics":         "/metrics",
		},
	})
}

// handleOpenings lists every active opening. The optional refresh flag
// bypasses the cached snapshot.
func (s *Server) handleOpenings(w http.ResponseWriter, r *http.Request) {
	bypass := r.URL.Query().Get("refresh") == "true"

	openings, err := s.catalog.Openings(r.Context(), bypass)
	if err != nil {
		s.writeInternal(w, err, "loading openings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"total_openings": len(openings),
		"openings":       openings,
	})
}

// handleJobDescription returns the JD of one resolved opening, or the full
// active-openings list when no query is given or nothing resolves. The list
// fallback is deliberate: consumers use it to discover what they can ask
// for.
func (s *Server) handleJobDescription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("opening_name_or_id"))

	openings, err := s.catalog.Openings(ctx, false)
	if err != nil {
		s.writeInternal(w, err, "loading openings")
		return
	}

	if query == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"total_openings": len(openings),
			"openings":       openings,
		})
		return
	}

	result, err := s.resolver.Opening(ctx, query)
	if err != nil {
		s.writeInternal(w, err, "resolving opening")
		return
	}

	if !result.Matched() {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":          true,
			"query":            query,
			"message":          fmt.Sprintf("no opening matched %q, returning all active openings", query),
			"similarity_score": result.Score,
			"total_openings":   len(openings),
			"openings":         openings,
		})
		return
	}

	jd, err := s.catalog.FindJobDescription(ctx, result.ID)
	if err != nil {
		s.writeInternal(w, err, "loading job description")
		return
	}

	if jd == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":          true,
			"query":            query,
			"opening_id":       result.ID,
			"opening_name":     result.MatchedName,
			"similarity_score": result.Score,
			"message":          fmt.Sprintf("opening %q has no job description, returning all active openings", result.MatchedName),
			"total_openings":   len(openings),
			"openings":         openings,
		})
		return
	}

	var stages []string
	if detail, err := s.api.GetOpening(s.token, result.ID); err != nil {
		s.logger.Warn("loading opening stages failed", zap.String("opening_id", result.ID), zap.Error(err))
	} else {
		for _, stage := range detail.Stages {
			stages = append(stages, stage.Name)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"query":            query,
		"opening_id":       result.ID,
		"opening_name":     result.MatchedName,
		"similarity_score": result.Score,
		"job_description":  jd.Text,
		"stages":           stages,
	})
}

func (s *Server) handleCandidatesByOpening(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := chi.URLParam(r, "opening")

	start, err := parseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		return
	}
	if start != nil && end != nil && start.After(*end) {
		writeError(w, http.StatusBadRequest, "end_date must not precede start_date")
		return
	}

	result, err := s.resolver.Opening(ctx, query)
	if err != nil {
		s.writeInternal(w, err, "resolving opening")
		return
	}
	if !result.Matched() {
		writeResolutionMiss(w, fmt.Sprintf("no opening matched %q", query), result.Score)
		return
	}

	candidates, err := s.api.ListCandidates(s.token, result.ID, start, end)
	if err != nil {
		s.writeInternal(w, err, "listing candidates")
		return
	}

	stageQuery := strings.TrimSpace(r.URL.Query().Get("stage_name"))
	stageFilter := filtering.NewStage(s.resolver, stageQuery)
	pool, err := filtering.Run(s.logger, []filtering.Filter{
		stageFilter,
		filtering.NewRecentActivity(s.cfg.Recent),
	}, candidates)
	if err != nil {
		s.writeInternal(w, err, "filtering candidates")
		return
	}

	users := s.catalog.Users(ctx)
	views := make([]*enrich.View, 0, pool.Len())
	for _, candidate := range pool.Items {
		views = append(views, s.enricher.Candidate(ctx, candidate, users, result.ID))
	}

	jdText := ""
	if jd, err := s.catalog.FindJobDescription(ctx, result.ID); err != nil {
		s.logger.Warn("loading job description failed", zap.String("opening_id", result.ID), zap.Error(err))
	} else if jd != nil {
		jdText = jd.Text
	}

	resp := map[string]any{
		"success":          true,
		"query":            query,
		"opening_id":       result.ID,
		"opening_name":     result.MatchedName,
		"similarity_score": result.Score,
		"job_description":  jdText,
		"total_candidates": len(views),
		"candidates":       views,
	}
	if stageQuery != "" {
		stageMatch := stageFilter.Match()
		resp["stage_filter"] = map[string]any{
			"query":    stageQuery,
			"matched":  stageMatch.Stages,
			"degraded": stageMatch.Degraded,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInterviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := strings.TrimSpace(r.URL.Query().Get("opening_name_or_id"))

	var start, end *time.Time
	day, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if day != nil {
		start, end = day, day
	} else {
		if start, err = parseDate(r.URL.Query().Get("start_date")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
			return
		}
		if end, err = parseDate(r.URL.Query().Get("end_date")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
			return
		}
	}

	// An unresolved opening phrase does not fail the request; the schedule
	// comes back unfiltered so the caller still sees something useful.
	openingID := ""
	var score *float64
	if query != "" {
		result, err := s.resolver.Opening(ctx, query)
		if err != nil {
			s.writeInternal(w, err, "resolving opening")
			return
		}
		score = &result.Score
		if result.Matched() {
			openingID = result.ID
		}
	}

	interviews, err := s.api.ListInterviews(s.token)
	if err != nil {
		s.writeInternal(w, err, "listing interviews")
		return
	}

	filtered := interviews.FilterByOpening(openingID).FilterByLocalDate(start, end)

	items := make([]map[string]any, 0, filtered.Len())
	for _, interview := range filtered.Items {
		item := map[string]any{
			"id":             interview.ID,
			"candidate_id":   interview.CandidateID,
			"candidate_name": interview.CandidateName,
			"opening_id":     interview.OpeningID,
			"opening_name":   interview.OpeningName,
		}
		if local, ok := interview.LocalTime(); ok {
			item["time"] = local.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	resp := map[string]any{
		"success":          true,
		"query":            query,
		"total_interviews": len(items),
		"interviews":       items,
	}
	if score != nil {
		resp["similarity_score"] = *score
	}

	writeJSON(w, http.StatusOK, resp)
}

// resolveCandidateID turns the id / opening+name query combination into one
// candidate id. Extra response fields describing the fuzzy steps are
// accumulated into extras.
func (s *Server) resolveCandidateID(r *http.Request, stageAllowList []string, extras map[string]any) (string, int, error) {
	ctx := r.Context()

	if id := strings.TrimSpace(r.URL.Query().Get("candidate_id")); id != "" {
		return id, 0, nil
	}

	openingQuery := strings.TrimSpace(r.URL.Query().Get("opening_name_or_id"))
	name := strings.TrimSpace(r.URL.Query().Get("candidate_name"))
	if openingQuery == "" || name == "" {
		return "", http.StatusBadRequest, errors.New("provide candidate_id, or both opening_name_or_id and candidate_name")
	}

	opening, err := s.resolver.Opening(ctx, openingQuery)
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	if !opening.Matched() {
		extras["best_score"] = opening.Score
		return "", http.StatusNotFound, fmt.Errorf("no opening matched %q", openingQuery)
	}

	extras["opening_id"] = opening.ID
	extras["opening_name"] = opening.MatchedName
	extras["opening_similarity_score"] = opening.Score

	candidate, err := s.resolver.CandidateInOpening(ctx, opening.ID, name, stageAllowList)
	if err != nil {
		return "", http.StatusInternalServerError, err
	}
	if !candidate.Matched() {
		extras["best_score"] = candidate.Score
		return "", http.StatusNotFound, fmt.Errorf("no candidate matched %q in opening %q", name, opening.MatchedName)
	}

	extras["candidate_similarity_score"] = candidate.Score
	return candidate.ID, 0, nil
}

func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	extras := map[string]any{}
	candidateID, status, err := s.resolveCandidateID(r, nil, extras)
	if err != nil {
		if status == http.StatusInternalServerError {
			s.writeInternal(w, err, "resolving candidate")
			return
		}
		if score, ok := extras["best_score"].(float64); ok {
			writeResolutionMiss(w, err.Error(), score)
			return
		}
		writeError(w, status, err.Error())
		return
	}

	candidate, err := s.api.GetCandidate(s.token, candidateID)
	if err != nil {
		if errors.Is(err, basehiring.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("candidate %q not found", candidateID))
			return
		}
		s.writeInternal(w, err, "loading candidate")
		return
	}

	openingID, _ := extras["opening_id"].(string)
	if openingID == "" && len(candidate.Evaluations) > 0 {
		openingID = candidate.Evaluations[0].Opening.ID
	}

	view := s.enricher.Candidate(ctx, candidate, s.catalog.Users(ctx), openingID)

	resp := map[string]any{
		"success":           true,
		"candidate_id":      candidateID,
		"candidate_details": view,
	}
	if openingID != "" {
		if jd, err := s.catalog.FindJobDescription(ctx, openingID); err != nil {
			s.logger.Warn("loading job description failed", zap.String("opening_id", openingID), zap.Error(err))
		} else if jd != nil {
			resp["job_description"] = jd.Text
		}
	}
	for k, v := range extras {
		resp[k] = v
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOfferLetter(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	extras := map[string]any{}
	candidateID, status, err := s.resolveCandidateID(r, offerStages, extras)
	if err != nil {
		if status == http.StatusInternalServerError {
			s.writeInternal(w, err, "resolving candidate")
			return
		}
		if score, ok := extras["best_score"].(float64); ok {
			writeResolutionMiss(w, err.Error(), score)
			return
		}
		writeError(w, status, err.Error())
		return
	}

	candidate, err := s.api.GetCandidate(s.token, candidateID)
	if err != nil {
		if errors.Is(err, basehiring.ErrNotFound) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("candidate %q not found", candidateID))
			return
		}
		s.writeInternal(w, err, "loading candidate")
		return
	}

	letter, err := s.letters.Find(ctx, candidateID)
	if err != nil {
		s.writeInternal(w, err, "scanning candidate messages")
		return
	}
	if letter == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no offer letter found for candidate %q", candidateID))
		return
	}

	position := candidate.Title
	if len(candidate.Evaluations) > 0 && candidate.Evaluations[0].Opening.Name != "" {
		position = candidate.Evaluations[0].Opening.Name
	}

	resp := map[string]any{
		"success":          true,
		"candidate_id":     candidateID,
		"candidate_name":   candidate.Name,
		"applied_position": position,
		"offer_letter":     letter,
	}
	for k, v := range extras {
		resp[k] = v
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !s.sheet.Configured() {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "feedback source is not configured",
			"records": []*sheets.TestRecord{},
		})
		return
	}

	since, err := parseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}

	records, err := s.sheet.ReadAll(ctx)
	if err != nil {
		s.writeInternal(w, err, "reading feedback records")
		return
	}

	feedback := sheets.FilterFeedback(records, since)

	resp := map[string]any{"success": true}

	jobQuery := strings.TrimSpace(r.URL.Query().Get("job_description"))
	if jobQuery != "" {
		result := s.resolver.SheetPosition(feedback, jobQuery)
		if result.Matched() {
			kept := make([]*sheets.TestRecord, 0, len(feedback))
			for _, record := range feedback {
				if record.Position == result.ID {
					kept = append(kept, record)
				}
			}
			feedback = kept
			resp["position_filter"] = map[string]any{
				"query":            jobQuery,
				"matched":          result.ID,
				"similarity_score": result.Score,
			}
		} else {
			resp["position_filter"] = map[string]any{
				"query":    jobQuery,
				"degraded": true,
			}
		}
	}

	if len(feedback) == 0 {
		resp["success"] = false
		resp["message"] = "no feedback records matched the filters"
	}

	resp["total_records"] = len(feedback)
	resp["records"] = feedback

	writeJSON(w, http.StatusOK, resp)
}

func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
