package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"dtb/datatable"
	"dtb/internal/options"
)

// Handler serves draw requests for one table. Requests run concurrently
// against a snapshot of the table's settings; Reload swaps the rows under
// a write lock.
type Handler struct {
	mu        sync.RWMutex
	table     *datatable.Table
	log       *datatable.Logger
	maxLength int
	metrics   *Metrics
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request logger. The table's logger is used otherwise.
func WithLogger(l *datatable.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithMaxLength caps the page size a client may ask for, including a
// request for every row. Zero leaves it uncapped.
func WithMaxLength(n int) Option {
	return func(h *Handler) { h.maxLength = max(n, 0) }
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// New returns a handler over table.
func New(table *datatable.Table, opts ...Option) *Handler {
	h := &Handler{table: table, log: table.Logger()}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Reload replaces the table's rows with those of ds.
func (h *Handler) Reload(ctx context.Context, ds datatable.DataSource) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := h.table.Load(ctx, ds)
	h.metrics.observeReload(h.table.Store().Len(), err)
	return err
}

// Response is the body of a draw reply, keyed by the modern names.
type Response struct {
	Draw            int        `json:"draw"`
	RecordsTotal    int        `json:"recordsTotal"`
	RecordsFiltered int        `json:"recordsFiltered"`
	Data            [][]string `json:"data"`
	Error           string     `json:"error,omitempty"`
}

// Draw answers one request.
func (h *Handler) Draw(req *Request) Response {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := h.table.Settings().Clone()
	req.apply(s)
	if h.maxLength > 0 && (s.Length == datatable.ShowAll || s.Length > h.maxLength) {
		s.Length = h.maxLength
	}
	// The client paginates by position, so paging is always on.
	s.Features.Paging = s.Length != datatable.ShowAll

	v := datatable.Compute(h.table.Store(), s, h.log)
	store := h.table.Store()
	ncols := len(store.Columns())
	data := make([][]string, len(v.Page))
	for i, r := range v.Page {
		row := make([]string, ncols)
		for c := range ncols {
			row[c] = store.DisplayString(r, c)
		}
		data[i] = row
	}
	return Response{
		Draw:            req.Draw,
		RecordsTotal:    v.Total,
		RecordsFiltered: len(v.Filtered),
		Data:            data,
	}
}

// ServeHTTP implements http.Handler for GET and POST form requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, false, err)
		return
	}

	h.mu.RLock()
	ncols := len(h.table.Columns())
	h.mu.RUnlock()

	req, err := ParseRequest(r.Form, ncols)
	if err != nil {
		_, legacy := r.Form["sEcho"]
		h.fail(w, r, legacy, err)
		return
	}

	resp := h.Draw(req)
	h.write(w, http.StatusOK, req.Legacy, resp)
	h.metrics.observeRequest(req.Legacy, http.StatusOK, time.Since(start))
	h.log.DebugContext(r.Context(), "draw served",
		"draw", resp.Draw,
		"filtered", resp.RecordsFiltered,
		"total", resp.RecordsTotal,
		"legacy", req.Legacy,
		"duration", time.Since(start))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, legacy bool, err error) {
	h.log.WarnContext(r.Context(), "bad draw request", "error", err)
	h.write(w, http.StatusBadRequest, legacy, Response{Data: [][]string{}, Error: err.Error()})
	h.metrics.observeRequest(legacy, http.StatusBadRequest, 0)
}

func (h *Handler) write(w http.ResponseWriter, status int, legacy bool, resp Response) {
	var body any = resp
	if legacy {
		body = legacyBody(resp)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("failed to write response", "error", err)
	}
}

// legacyBody renames the reply keys through the legacy alias table.
func legacyBody(resp Response) map[string]any {
	modern := map[string]any{
		"draw":            resp.Draw,
		"recordsTotal":    resp.RecordsTotal,
		"recordsFiltered": resp.RecordsFiltered,
		"data":            resp.Data,
	}
	if resp.Error != "" {
		modern["error"] = resp.Error
	}
	out := make(map[string]any, len(modern))
	for k, v := range modern {
		if legacy, ok := options.ToLegacy(options.GroupResponse, k); ok {
			k = legacy
		}
		out[k] = v
	}
	return out
}
