package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/rdl/pkg/checker"
	"mercator-hq/rdl/pkg/config"
	"mercator-hq/rdl/pkg/history"
)

type handlers struct {
	checker      *checker.Checker
	history      history.Storage
	query        config.QueryConfig
	maxBodyBytes int64
	logger       *slog.Logger
}

func (h *handlers) parse(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, checker.Request{ParseOnly: true})
}

func (h *handlers) check(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, checker.Request{Schema: r.PathValue("schema")})
}

func (h *handlers) run(w http.ResponseWriter, r *http.Request, req checker.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "io", "document exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "io", "failed to read body")
		return
	}
	if body == nil {
		body = []byte{}
	}

	req.Document = r.URL.Query().Get("name")
	if req.Document == "" {
		req.Document = "<http>"
	}
	req.Content = body
	req.Source = checker.SourceHTTP

	res, err := h.checker.Check(r.Context(), req)
	switch {
	case errors.Is(err, checker.ErrUnknownSchema):
		writeError(w, http.StatusNotFound, "unknown_schema", err.Error())
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
		return
	}

	code := http.StatusOK
	if !res.Valid {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, NewCheckResponse(res))
}

func (h *handlers) schemas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListSchemas(h.checker.Registry()))
}

// listHistory answers GET /v1/history. Filters: document, schema, source,
// error_kind, valid, since, until (RFC 3339), limit, offset, sort, order.
func (h *handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	q, err := parseHistoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	q.ApplyDefaults(h.query.DefaultLimit)
	if err := q.Validate(h.query.MaxLimit); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	records, err := h.history.Query(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "storage", "history query failed")
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
}

func parseHistoryQuery(r *http.Request) (*history.Query, error) {
	v := r.URL.Query()
	q := &history.Query{
		Document:  v.Get("document"),
		Schema:    v.Get("schema"),
		Source:    v.Get("source"),
		ErrorKind: v.Get("error_kind"),
		SortBy:    v.Get("sort"),
		SortOrder: v.Get("order"),
	}
	if s := v.Get("valid"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, errors.New("valid must be true or false")
		}
		q.Valid = history.Bool(b)
	}
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		if s := v.Get(name); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, errors.New(name + " must be an integer")
			}
			*dst = n
		}
	}
	for name, dst := range map[string]**time.Time{"since": &q.StartTime, "until": &q.EndTime} {
		if s := v.Get(name); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, errors.New(name + " must be an RFC 3339 time")
			}
			*dst = &t
		}
	}
	return q, nil
}
