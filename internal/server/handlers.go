package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/paramspace/pkg/observability"
	"github.com/Sumatoshi-tech/paramspace/pkg/paramspace"
	"github.com/Sumatoshi-tech/paramspace/pkg/render"
)

const (
	defaultPageLimit = 100
	maxPageLimit     = 10_000
	maxRequestBytes  = 1 << 20
)

var (
	errBadQuery   = errors.New("bad query parameter")
	errBadRequest = errors.New("bad request body")
)

// RowResponse is one row with its hydrated configuration and, when
// requested, the object constructed from it.
type RowResponse struct {
	render.Entry

	Object any `json:"object,omitempty"`
}

// LookupRequest names a row either by its string form or by its hydrated
// configuration. Exactly one field must be set.
type LookupRequest struct {
	Row    string         `json:"row,omitempty"`
	Config map[string]any `json:"config,omitempty"`
}

// ErrorResponse is the body of every non-2xx answer from the v1 API.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSpace(rw http.ResponseWriter, hr *http.Request) {
	writeJSON(rw, hr, http.StatusOK, render.SummaryOf(s.name, s.space))
}

func (s *Server) handleRows(rw http.ResponseWriter, hr *http.Request) {
	query := hr.URL.Query()

	offset, err := intParam(query.Get("offset"), 0)
	if err != nil {
		s.writeError(rw, hr, err)

		return
	}

	limit, err := intParam(query.Get("limit"), defaultPageLimit)
	if err != nil {
		s.writeError(rw, hr, err)

		return
	}

	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	hydrate, err := boolParam(query.Get("hydrate"))
	if err != nil {
		s.writeError(rw, hr, err)

		return
	}

	page, err := render.PageOf(s.space, offset, limit, hydrate)
	if hydrate {
		s.metrics.RecordHydration(hr.Context(), observability.OpHydrate, err)
	}

	if err != nil {
		s.writeError(rw, hr, err)

		return
	}

	writeJSON(rw, hr, http.StatusOK, page)
}

func (s *Server) handleRow(rw http.ResponseWriter, hr *http.Request) {
	index, err := strconv.Atoi(hr.PathValue("index"))
	if err != nil {
		s.writeError(rw, hr, fmt.Errorf("%w: index %q", errBadQuery, hr.PathValue("index")))

		return
	}

	construct, err := boolParam(hr.URL.Query().Get("construct"))
	if err != nil {
		s.writeError(rw, hr, err)

		return
	}

	ctx, span := s.tracer.Start(hr.Context(), "paramspace.row")
	defer span.End()

	span.SetAttributes(attribute.Int("row.index", index), attribute.Bool("row.construct", construct))

	resp, err := s.rowResponse(index, construct)

	op := observability.OpHydrate
	if construct {
		op = observability.OpConstruct
	}

	s.metrics.RecordHydration(ctx, op, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(rw, hr, err)

		return
	}

	writeJSON(rw, hr, http.StatusOK, resp)
}

// rowResponse hydrates, and optionally constructs, the row at index. Results
// are cached when the server has a row cache.
func (s *Server) rowResponse(index int, construct bool) (RowResponse, error) {
	if s.cache == nil {
		return s.buildRowResponse(index, construct)
	}

	return s.cache.GetOrCompute(rowKey{index: index, construct: construct}, func() (RowResponse, error) {
		return s.buildRowResponse(index, construct)
	})
}

func (s *Server) buildRowResponse(index int, construct bool) (RowResponse, error) {
	row, err := s.space.Row(index)
	if err != nil {
		return RowResponse{}, err
	}

	cfg, err := s.space.HydrateRow(row)
	if err != nil {
		return RowResponse{}, err
	}

	resp := RowResponse{Entry: render.Entry{Index: index, Row: row.String(), Config: cfg}}

	if construct {
		obj, constructErr := s.space.ConstructRow(row)
		if constructErr != nil {
			return RowResponse{}, constructErr
		}

		resp.Object = obj
	}

	return resp, nil
}

func (s *Server) handleLookup(rw http.ResponseWriter, hr *http.Request) {
	var req LookupRequest

	dec := json.NewDecoder(http.MaxBytesReader(rw, hr.Body, maxRequestBytes))
	dec.UseNumber()

	err := dec.Decode(&req)
	if err != nil {
		s.writeError(rw, hr, fmt.Errorf("%w: %w", errBadRequest, err))

		return
	}

	ctx, span := s.tracer.Start(hr.Context(), "paramspace.lookup")
	defer span.End()

	entry, err := s.lookup(req)
	s.metrics.RecordHydration(ctx, observability.OpLookup, err)

	if err != nil {
		span.RecordError(err)
		s.writeError(rw, hr, err)

		return
	}

	span.SetAttributes(attribute.Int("row.index", entry.Index))
	writeJSON(rw, hr, http.StatusOK, entry)
}

func (s *Server) lookup(req LookupRequest) (render.Entry, error) {
	var (
		row paramspace.Row
		err error
	)

	switch {
	case req.Row != "" && req.Config != nil:
		return render.Entry{}, fmt.Errorf("%w: set row or config, not both", errBadRequest)
	case req.Row != "":
		row, err = paramspace.ParseRow(req.Row)
	case req.Config != nil:
		row, err = s.space.Encode(req.Config)
	default:
		return render.Entry{}, fmt.Errorf("%w: row or config is required", errBadRequest)
	}

	if err != nil {
		return render.Entry{}, err
	}

	index, err := s.space.IndexOf(row)
	if err != nil {
		return render.Entry{}, err
	}

	return render.Entry{Index: index, Row: row.String()}, nil
}

func (s *Server) writeError(rw http.ResponseWriter, hr *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.ErrorContext(hr.Context(), "request failed", "path", hr.URL.Path, "error", err)
	} else {
		s.logger.DebugContext(hr.Context(), "request rejected", "path", hr.URL.Path, "status", code, "error", err)
	}

	writeJSON(rw, hr, code, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, paramspace.ErrNotFound), errors.Is(err, paramspace.ErrOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, errBadQuery), errors.Is(err, errBadRequest), errors.Is(err, paramspace.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, paramspace.ErrClassResolution):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(rw http.ResponseWriter, hr *http.Request, code int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		trace.SpanFromContext(hr.Context()).RecordError(encodeErr)
	}
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errBadQuery, raw)
	}

	return n, nil
}

func boolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a boolean", errBadQuery, raw)
	}

	return b, nil
}
