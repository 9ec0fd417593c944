package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/defectlens-cli/internal/config"
	"github.com/KaramelBytes/defectlens-cli/internal/defects"
	"github.com/KaramelBytes/defectlens-cli/internal/montecarlo"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	ds, err := s.readDataset(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opt := s.cfg.Analysis
	if v := r.URL.Query().Get("bins"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(w, r, badRequest("bins must be a positive integer"))
			return
		}
		opt.Bins = n
	}
	rep := s.cfg.Cache.Analyze(ds, opt)
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, rep.Markdown())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.simulationConfig(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ds, err := s.readDataset(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sim, err := montecarlo.New(cfg)
	if err != nil {
		s.fail(w, r, badRequest(err.Error()))
		return
	}
	sim.WithLogger(s.log.WithField("request_id", middleware.GetReqID(r.Context())))
	costs := ds.Costs()
	if len(costs) == 0 {
		s.fail(w, r, montecarlo.ErrInsufficientData)
		return
	}
	run := sim.NewRunReport(ds.Name, costs)
	w.Header().Set("X-Run-Id", run.RunID)

	if stream, _ := strconv.ParseBool(r.URL.Query().Get("stream")); stream {
		s.streamSimulation(w, r, sim, run, costs)
		return
	}
	res, err := sim.Run(r.Context(), costs, nil)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run.Complete(res))
}

// streamSimulation emits "progress" events while the run is in flight and
// finishes with a single "result" or "error" event.
func (s *Server) streamSimulation(w http.ResponseWriter, r *http.Request, sim *montecarlo.Simulator, run *montecarlo.RunReport, costs []float64) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.fail(w, r, errors.New("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	task := sim.Start(r.Context(), costs)
	for pct := range task.Progress() {
		if err := writeEvent(w, "progress", map[string]int{"percent": pct}); err != nil {
			task.Cancel()
			break
		}
		flusher.Flush()
	}
	res, err := task.Wait()
	if err != nil {
		s.log.WithError(err).WithField("run_id", run.RunID).Warn("simulation failed")
		_ = writeEvent(w, "error", map[string]string{"error": err.Error()})
	} else {
		_ = writeEvent(w, "result", run.Complete(res))
	}
	flusher.Flush()
}

func (s *Server) simulationConfig(r *http.Request) (montecarlo.Config, error) {
	cfg := s.cfg.Simulation
	q := r.URL.Query()
	if v := q.Get("simulations"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > montecarlo.MaxSimulations {
			return cfg, badRequest(fmt.Sprintf("simulations must be an integer between 1 and %d", montecarlo.MaxSimulations))
		}
		cfg.Simulations = n
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, badRequest("seed must be an unsigned integer")
		}
		cfg.Seed = n
	}
	if v := q.Get("scenarios"); v != "" {
		sc, err := config.ParseScenarios(v)
		if err != nil {
			return cfg, badRequest(err.Error())
		}
		cfg.Scenarios = sc
	}
	return cfg, nil
}

// readDataset accepts a multipart "file" field or a raw CSV/XLSX body.
func (s *Server) readDataset(w http.ResponseWriter, r *http.Request) (*defects.Dataset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	q := r.URL.Query()
	opt := defects.Options{Sheet: q.Get("sheet")}
	if d := q.Get("delimiter"); d != "" {
		delim, err := parseDelimiter(d)
		if err != nil {
			return nil, err
		}
		opt.Delimiter = delim
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, badRequest("multipart request needs a \"file\" field")
		}
		defer file.Close()
		name := filepath.Base(header.Filename)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".xlsx", ".xlsm":
			return defects.ReadXLSX(file, name, opt)
		case ".tsv":
			if opt.Delimiter == 0 {
				opt.Delimiter = '\t'
			}
		}
		return defects.ReadCSV(file, name, opt)
	}

	name := q.Get("name")
	if name == "" {
		name = "upload"
	}
	if mediaType == xlsxMIME {
		return defects.ReadXLSX(r.Body, name, opt)
	}
	return defects.ReadCSV(r.Body, name, opt)
}

// parseDelimiter accepts a single field separator rune that csv.Reader allows.
func parseDelimiter(d string) (rune, error) {
	if d == `\t` || d == "tab" {
		return '\t', nil
	}
	rs := []rune(d)
	if len(rs) != 1 || rs[0] == '"' || rs[0] == '\r' || rs[0] == '\n' || rs[0] == utf8.RuneError {
		return 0, badRequest(fmt.Sprintf("unsupported delimiter %q", d))
	}
	return rs[0], nil
}

type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func badRequest(msg string) error { return &httpError{status: http.StatusBadRequest, msg: msg} }

func statusFor(err error) int {
	var he *httpError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, montecarlo.ErrInsufficientData), errors.Is(err, defects.ErrNoRecords):
		return http.StatusUnprocessableEntity
	case errors.Is(err, defects.ErrMissingHeaders):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	entry := s.log.WithFields(logrus.Fields{
		"path":       r.URL.Path,
		"status":     status,
		"request_id": middleware.GetReqID(r.Context()),
	}).WithError(err)
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeEvent(w io.Writer, event string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, b)
	return err
}
