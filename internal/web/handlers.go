package web

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cleared-dev/stmtconv/internal/buildinfo"
	"github.com/cleared-dev/stmtconv/internal/convert"
	"github.com/cleared-dev/stmtconv/internal/export"
)

// maxMemory is the multipart part size kept in memory before spilling to disk.
const maxMemory = 8 << 20

// uploadError is a client-side problem with the submitted form.
type uploadError struct {
	status int
	msg    string
}

func (e *uploadError) Error() string { return e.msg }

type layoutView struct {
	Name        string
	Description string
}

type indexView struct {
	Layouts     []layoutView
	MaxUploadMB int
	Error       string
}

type resultView struct {
	FileName    string
	Layout      string
	Pages       int
	Rows        []export.Row
	Skipped     int
	Issues      []string
	DownloadURL template.URL
}

func (s *Server) layoutViews() []layoutView {
	var out []layoutView
	for _, l := range s.svc.Extractor().Layouts().All() {
		out = append(out, layoutView{Name: l.Name(), Description: l.Description()})
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("rendering template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) renderIndex(w http.ResponseWriter, status int, errMsg string) {
	s.render(w, status, "index.html", indexView{
		Layouts:     s.layoutViews(),
		MaxUploadMB: s.cfg.MaxUploadMB,
		Error:       errMsg,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, http.StatusOK, "")
}

// handleConvertPage converts an uploaded statement and shows the rows with a
// CSV download link.
func (s *Server) handleConvertPage(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readUpload(w, r)
	if err != nil {
		var uerr *uploadError
		if errors.As(err, &uerr) {
			s.renderIndex(w, uerr.status, uerr.msg)
			return
		}
		s.renderIndex(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}

	year, err := parseYear(r.FormValue("year"))
	if err != nil {
		s.renderIndex(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.convert(r, data, convert.Request{
		Name:   name,
		Format: export.CSV,
		Layout: r.FormValue("layout"),
		Year:   year,
	})
	if err != nil {
		status, msg := s.convertFailure(err)
		s.renderIndex(w, status, msg)
		return
	}

	view := resultView{
		FileName:    name,
		Layout:      res.Statement.Layout,
		Pages:       res.Statement.Pages,
		Rows:        export.Rows(res.Statement.Transactions),
		Skipped:     res.Statement.Skipped,
		DownloadURL: template.URL("data:text/csv;base64," + base64.StdEncoding.EncodeToString(res.Data)),
	}
	for _, issue := range res.Issues {
		view.Issues = append(view.Issues, issue.Error())
	}
	s.render(w, http.StatusOK, "result.html", view)
}

// handleConvertAPI returns the converted file as an attachment.
func (s *Server) handleConvertAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := export.CSV
	if v := q.Get("format"); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = f
	}
	year, err := parseYear(q.Get("year"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, name, err := s.readUpload(w, r)
	if err != nil {
		var uerr *uploadError
		if errors.As(err, &uerr) {
			WriteError(w, uerr.status, uerr.msg)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}

	res, err := s.convert(r, data, convert.Request{
		Name:   name,
		Format: format,
		Layout: q.Get("layout"),
		Year:   year,
	})
	if err != nil {
		status, msg := s.convertFailure(err)
		WriteError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, outputName(name, format)))
	w.Header().Set("X-Transaction-Count", strconv.Itoa(len(res.Statement.Transactions)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.layoutViews())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}

// parseYear reads an optional year field. Empty means infer it.
func parseYear(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(v)
	if err != nil || y < 1900 || y > 2999 {
		return 0, fmt.Errorf("invalid year %q", v)
	}
	return y, nil
}

// readUpload returns the bytes and base name of the multipart "file" field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	limit := s.cfg.MaxUploadBytes()
	tooLarge := &uploadError{
		status: http.StatusRequestEntityTooLarge,
		msg:    fmt.Sprintf("File too large (limit %d MB)", s.cfg.MaxUploadMB),
	}
	if r.ContentLength > limit {
		return nil, "", tooLarge
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, "", tooLarge
		}
		s.logger.Warn("failed to parse multipart form", "request_id", RequestID(r.Context()), "error", err)
		return nil, "", &uploadError{status: http.StatusBadRequest, msg: "Invalid upload form"}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &uploadError{status: http.StatusBadRequest, msg: "Missing file field"}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, "", &uploadError{status: http.StatusBadRequest, msg: "Uploaded file is empty"}
	}
	name := filepath.Base(header.Filename)
	s.logger.Info("received file upload", "request_id", RequestID(r.Context()), "filename", name, "size_bytes", len(data))
	return data, name, nil
}

func (s *Server) convert(r *http.Request, data []byte, req convert.Request) (*convert.Result, error) {
	res, err := s.svc.Convert(r.Context(), bytes.NewReader(data), req)
	if err != nil {
		outcome := "error"
		if convert.IsParseError(err) {
			outcome = "rejected"
		}
		s.metrics.Conversions.WithLabelValues(string(req.Format), outcome).Inc()
		return nil, err
	}
	s.metrics.Conversions.WithLabelValues(string(req.Format), "ok").Inc()
	s.metrics.Rows.Add(float64(len(res.Statement.Transactions)))
	s.metrics.Duration.Observe(res.Elapsed.Seconds())
	return res, nil
}

// convertFailure maps a conversion error to a status and a user-facing message.
func (s *Server) convertFailure(err error) (int, string) {
	if convert.IsParseError(err) {
		return http.StatusUnprocessableEntity, err.Error()
	}
	s.logger.Error("conversion failed", "error", err)
	return http.StatusInternalServerError, "Conversion failed"
}

// outputName turns "jan 2024.pdf" into "jan 2024.csv".
func outputName(upload string, f export.Format) string {
	base := strings.TrimSuffix(upload, filepath.Ext(upload))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "" {
		base = "statement"
	}
	return base + f.Extension()
}
