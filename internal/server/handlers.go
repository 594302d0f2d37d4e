package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/pubplot/pkg/buildinfo"
	"github.com/matzehuels/pubplot/pkg/cache"
	"github.com/matzehuels/pubplot/pkg/chart"
	"github.com/matzehuels/pubplot/pkg/config"
	"github.com/matzehuels/pubplot/pkg/dataset"
	"github.com/matzehuels/pubplot/pkg/errors"
	"github.com/matzehuels/pubplot/pkg/pipeline"
	"github.com/matzehuels/pubplot/pkg/render"
)

// chartRequest is the body of /v1/validate and /v1/render. Data holds a
// JSON data document; it is decoded in order so group order survives.
type chartRequest struct {
	Chart  string           `json:"chart"`
	Data   json.RawMessage  `json:"data"`
	Config config.Overrides `json:"config"`
	Strict bool             `json:"strict"`
}

type errorBody struct {
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Failures []errors.Failure `json:"failures,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	}
	if sp, ok := s.runner.Cache.(cache.StatsProvider); ok {
		body["cache"] = sp.Stats()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCharts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"charts":  chart.Names(),
		"default": pipeline.DefaultChart,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, false)
	if !ok {
		return
	}
	rep, err := s.runner.Check(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if !rep.Valid() {
		writeError(w, http.StatusUnprocessableEntity, string(firstCode(rep)), "validation failed", rep.Failures())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":    true,
		"chart":    rep.Chart,
		"warnings": rep.Warnings,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r, true)
	if !ok {
		return
	}
	if f := strings.ToLower(r.URL.Query().Get("format")); f != "" {
		req.Formats = []string{f}
	}
	req.Refresh = r.URL.Query().Get("refresh") == "true"

	res, err := s.runner.Execute(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}

	var format string
	var data []byte
	for f, a := range res.Artifacts {
		format, data = f, a
	}
	h := w.Header()
	h.Set("Content-Type", render.ContentType(format))
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("X-Pubplot-Chart", res.Chart)
	h.Set("X-Pubplot-Config", res.ConfigFingerprint)
	h.Set("X-Pubplot-Cache", cacheStatus(res.CacheHit))
	for _, wn := range res.Warnings {
		h.Add("X-Pubplot-Warning", wn.String())
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decode reads a chartRequest. It writes the error response itself and
// reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, requireData bool) (pipeline.Request, bool) {
	var body chartRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", err.Error(), nil)
		} else {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error(), nil)
		}
		return pipeline.Request{}, false
	}

	req := pipeline.Request{Chart: body.Chart, Overrides: body.Config, Strict: body.Strict}
	if len(body.Data) > 0 {
		doc, err := dataset.Decode(body.Data)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return pipeline.Request{}, false
		}
		req.Document = doc
	} else if requireData {
		writeError(w, http.StatusUnprocessableEntity, string(errors.ErrCodeDataValidation), "validation failed",
			[]errors.Failure{{Path: "data", Reason: "required"}})
		return pipeline.Request{}, false
	}
	return req, true
}

// fail writes err with the status for its code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeError(w, status, string(code), errors.UserMessage(err), errors.FailuresOf(err))
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeDataValidation),
		errors.Is(err, errors.ErrCodeConfigValidation),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func firstCode(rep *pipeline.Report) errors.Code {
	if len(rep.DataFailures) > 0 {
		return errors.ErrCodeDataValidation
	}
	return errors.ErrCodeConfigValidation
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, failures []errors.Failure) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message, Failures: failures}})
}
