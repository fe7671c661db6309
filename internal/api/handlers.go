package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spigell/joblo/internal/ai"
	"github.com/spigell/joblo/internal/filtering"
	"github.com/spigell/joblo/internal/jobs"
	"github.com/spigell/joblo/internal/recommend"
	"github.com/spigell/joblo/internal/resume"
)

const defaultListLimit = 50

// profileRequest carries a parsed profile, raw résumé text, or both.
type profileRequest struct {
	Profile    *resume.Profile `json:"profile,omitempty"`
	ResumeText string          `json:"resume_text,omitempty"`
}

type scoreRequest struct {
	profileRequest
	Limit int  `json:"limit,omitempty"`
	AI    bool `json:"ai,omitempty"`
}

type betterRequest struct {
	profileRequest
	N int `json:"n,omitempty"`
}

type scoredJob struct {
	recommend.TopMatch
	AI *ai.FitAssessment `json:"ai,omitempty"`
}

type jobList struct {
	Total int         `json:"total"`
	Jobs  []*jobs.Job `json:"jobs"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, filtering.Describe(s.filters))
}

// listJobs supports the dashboard search: q matches title, company or skills,
// source and location narrow further.
func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	all, err := s.source.All(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	query := r.URL.Query()
	q := strings.ToLower(strings.TrimSpace(query.Get("q")))
	location := strings.ToLower(strings.TrimSpace(query.Get("location")))
	source := strings.TrimSpace(query.Get("source"))
	limit := intParam(query.Get("limit"), defaultListLimit)

	all.Keep(func(job *jobs.Job) bool {
		if source != "" && job.Source != jobs.ParsePlatform(source) {
			return false
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			return false
		}
		if q == "" {
			return true
		}
		haystack := strings.ToLower(job.Title + " " + job.Company + " " + strings.Join(job.Skills, " "))
		return strings.Contains(haystack, q)
	})

	out := jobList{Total: all.Len(), Jobs: all.Items}
	if len(out.Jobs) > limit {
		out.Jobs = out.Jobs[:limit]
	}
	if out.Jobs == nil {
		out.Jobs = []*jobs.Job{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.source.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) similarJobs(w http.ResponseWriter, r *http.Request) {
	n := intParam(r.URL.Query().Get("n"), recommend.DefaultCount)

	similar, err := s.recommender.SimilarJobs(r.Context(), chi.URLParam(r, "id"), n)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, similar)
}

func (s *Server) betterMatches(w http.ResponseWriter, r *http.Request) {
	var req betterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := s.profileFrom(req.profileRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	better, err := s.recommender.BetterMatches(r.Context(), chi.URLParam(r, "id"), profile, req.N)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, better)
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := s.profileFrom(req.profileRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := s.recommender.TopMatchesForProfile(r.Context(), profile, req.Limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.jobsScored.Add(float64(len(matches)))

	out := make([]scoredJob, 0, len(matches))
	for _, m := range matches {
		scored := scoredJob{TopMatch: m}
		if req.AI && s.matcher != nil {
			scored.AI = s.secondOpinion(r, profile, m.Job)
		}
		out = append(out, scored)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) secondOpinion(r *http.Request, profile *resume.Profile, job *jobs.Job) *ai.FitAssessment {
	assessment, err := s.matcher.Evaluate(r.Context(), profile, job)
	if err != nil {
		s.metrics.aiAssessments.WithLabelValues("error").Inc()
		s.logger.Warn("AI evaluation failed", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	verdict := "unfit"
	if assessment.Fit {
		verdict = "fit"
	}
	s.metrics.aiAssessments.WithLabelValues(verdict).Inc()
	return assessment
}

// extract accepts a multipart upload in the "resume" field or a JSON body
// with resume_text.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.extractUpload(w, r)
		return
	}

	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		writeError(w, http.StatusBadRequest, "resume_text is required")
		return
	}

	s.metrics.resumesExtracted.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, s.parser.ExtractText(req.ResumeText))
}

func (s *Server) extractUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("parsing upload: %v", err))
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()

	// the extension picks the text extractor, so keep it on the temp copy
	tmp, err := os.CreateTemp("", "resume_*"+strings.ToLower(filepath.Ext(header.Filename)))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.fail(w, r, err)
		return
	}
	if err := tmp.Close(); err != nil {
		s.fail(w, r, err)
		return
	}

	profile, err := s.parser.ExtractFile(tmp.Name())
	if err != nil {
		s.metrics.resumesExtracted.WithLabelValues("error").Inc()
		s.fail(w, r, err)
		return
	}

	s.metrics.resumesExtracted.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) profileFrom(req profileRequest) (*resume.Profile, error) {
	switch {
	case req.Profile != nil:
		// similarity needs the résumé text, which a profile may carry in either field
		if strings.TrimSpace(req.Profile.RawText) == "" {
			req.Profile.RawText = req.ResumeText
		}
		return req.Profile, nil
	case strings.TrimSpace(req.ResumeText) != "":
		return s.parser.ExtractText(req.ResumeText), nil
	default:
		return nil, errors.New("profile or resume_text is required")
	}
}

// fail maps domain errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, resume.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, resume.ErrExtraction), errors.Is(err, fs.ErrNotExist):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
