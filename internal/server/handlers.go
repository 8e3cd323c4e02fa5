package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/KaramelBytes/tabsight/internal/ai"
	"github.com/KaramelBytes/tabsight/internal/analysis"
	"github.com/KaramelBytes/tabsight/internal/dataset"
	"github.com/KaramelBytes/tabsight/internal/plot"
	"github.com/KaramelBytes/tabsight/internal/preprocess"
	"go.uber.org/zap"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// decodeDataset reads a column-oriented dataset body and answers 400/413
// itself when it cannot.
func (s *Server) decodeDataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := dataset.DecodeJSON(r.Body)
	switch {
	case err == nil:
		return ds, true
	case tooLarge(err):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, dataset.ErrNotObject):
		writeError(w, http.StatusBadRequest, "request body must be a JSON object of columns")
	default:
		writeError(w, http.StatusBadRequest, "invalid JSON body")
	}
	return nil, false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart "file" (csv, tsv, xlsx or json) and returns
// it as a column-oriented dataset. Optional form fields: delimiter, sheet.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "missing multipart field \"file\"")
		return
	}
	defer file.Close()

	opt := dataset.LoadOptions{SheetName: r.FormValue("sheet")}
	if d := r.FormValue("delimiter"); d != "" {
		sep, ok := dataset.ParseDelimiter(d)
		if !ok {
			writeError(w, http.StatusBadRequest, "delimiter must be one of , ; tab |")
			return
		}
		opt.Delimiter = sep
	}
	ds, err := dataset.Load(file, header.Filename, opt)
	if err != nil {
		if errors.Is(err, dataset.ErrUnsupported) {
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("Dataset uploaded",
		zap.String("file", header.Filename),
		zap.Int("columns", ds.Len()),
		zap.Int("rows", ds.RowCount()))
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.decodeDataset(w, r)
	if !ok {
		return
	}
	opt := analysis.Options{PreviewRows: s.cfg.PreviewRows, Coercion: s.cfg.Coercion}
	if v := r.URL.Query().Get("previewRows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "previewRows must be a non-negative integer")
			return
		}
		opt.PreviewRows = n
	}
	writeJSON(w, http.StatusOK, analysis.Summarize(ds, opt))
}

func (s *Server) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.decodeDataset(w, r)
	if !ok {
		return
	}
	res, err := preprocess.Apply(ds, preprocess.Options{Coercion: s.cfg.Coercion, Logger: s.logger})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePlot returns a scatter figure for ?x=&y=, or a line figure of every
// numeric column for ?all=1.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, y := q.Get("x"), q.Get("y")
	all, _ := strconv.ParseBool(q.Get("all"))
	ds, ok := s.decodeDataset(w, r)
	if !ok {
		return
	}
	if all && x == "" && y == "" {
		writeJSON(w, http.StatusOK, plot.Lines(ds, s.cfg.Coercion))
		return
	}
	writeJSON(w, http.StatusOK, plot.Scatter(ds, x, y, s.cfg.Coercion))
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	if s.cfg.Runtime == nil {
		writeError(w, http.StatusInternalServerError, "API key is not configured")
		return
	}
	payload, err := ai.ParseSummaryPayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	ctx := r.Context()
	if s.cfg.SummaryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SummaryTimeout)
		defer cancel()
	}
	opts := s.cfg.Summary
	opts.OnDelta = nil
	summary, err := ai.Summarize(ctx, s.cfg.Runtime, opts, payload)
	if err != nil {
		s.logger.Error("Summary generation failed",
			zap.String("requestId", RequestID(r.Context())),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}
