package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtb/datatable"
)

func cityTable(t *testing.T) *datatable.Table {
	t.Helper()
	cfg := datatable.DefaultConfig()
	cfg.Order = nil
	ds := datatable.FromRecords([]string{"city", "pop"}, [][]string{
		{"Oslo", "709000"},
		{"Bergen", "291000"},
		{"Trondheim", "212000"},
		{"Stavanger", "146000"},
		{"Tromso", "77000"},
	})
	tbl, err := datatable.Open(context.Background(), cfg, ds)
	require.NoError(t, err)
	return tbl
}

func get(t *testing.T, h http.Handler, query string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data?"+query, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func column(body map[string]any, key string, col int) []string {
	var out []string
	for _, row := range body[key].([]any) {
		out = append(out, row.([]any)[col].(string))
	}
	return out
}

func TestModernRequest(t *testing.T) {
	h := New(cityTable(t))
	q := url.Values{
		"draw":             {"3"},
		"start":            {"0"},
		"length":           {"2"},
		"search[value]":    {"o"},
		"search[regex]":    {"false"},
		"order[0][column]": {"1"},
		"order[0][dir]":    {"desc"},
	}
	code, body := get(t, h, q.Encode())
	require.Equal(t, http.StatusOK, code)

	assert.EqualValues(t, 3, body["draw"])
	assert.EqualValues(t, 5, body["recordsTotal"])
	assert.EqualValues(t, 3, body["recordsFiltered"])
	assert.Equal(t, []string{"Oslo", "Trondheim"}, column(body, "data", 0))
	assert.NotContains(t, body, "sEcho")
}

func TestLegacyRequest(t *testing.T) {
	h := New(cityTable(t))
	q := url.Values{
		"sEcho":          {"7"},
		"iDisplayStart":  {"2"},
		"iDisplayLength": {"2"},
		"sSearch":        {""},
		"iSortingCols":   {"1"},
		"iSortCol_0":     {"0"},
		"sSortDir_0":     {"asc"},
	}
	code, body := get(t, h, q.Encode())
	require.Equal(t, http.StatusOK, code)

	assert.EqualValues(t, 7, body["sEcho"])
	assert.EqualValues(t, 5, body["iTotalRecords"])
	assert.EqualValues(t, 5, body["iTotalDisplayRecords"])
	assert.Equal(t, []string{"Stavanger", "Tromso"}, column(body, "aaData", 0))
	assert.NotContains(t, body, "draw")
}

func TestColumnSearch(t *testing.T) {
	h := New(cityTable(t))

	_, body := get(t, h, url.Values{"draw": {"1"}, "columns[0][search][value]": {"tr"}}.Encode())
	assert.Equal(t, []string{"Trondheim", "Tromso"}, column(body, "data", 0))

	_, body = get(t, h, url.Values{"sEcho": {"1"}, "sSearch_0": {"berg"}}.Encode())
	assert.Equal(t, []string{"Bergen"}, column(body, "aaData", 0))
}

func TestRequestDoesNotChangeTable(t *testing.T) {
	tbl := cityTable(t)
	h := New(tbl)
	get(t, h, url.Values{"draw": {"1"}, "search[value]": {"oslo"}, "start": {"0"}, "length": {"1"}}.Encode())

	assert.Equal(t, "", tbl.Settings().Search.Term)
	assert.Equal(t, 10, tbl.Settings().Length)
	assert.Equal(t, 5, len(tbl.Draw().Filtered))
}

func TestMaxLength(t *testing.T) {
	h := New(cityTable(t), WithMaxLength(3))
	_, body := get(t, h, url.Values{"draw": {"1"}, "length": {"-1"}}.Encode())
	assert.Len(t, body["data"], 3)
	assert.EqualValues(t, 5, body["recordsFiltered"])

	h = New(cityTable(t))
	_, body = get(t, h, url.Values{"draw": {"1"}, "length": {"-1"}}.Encode())
	assert.Len(t, body["data"], 5)
}

func TestBadRequests(t *testing.T) {
	h := New(cityTable(t))

	code, body := get(t, h, "draw=1&start=abc")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "invalid start")

	code, body = get(t, h, "sEcho=1&iSortingCols=x")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "sError")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/data", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPostForm(t *testing.T) {
	h := New(cityTable(t))
	form := url.Values{"draw": {"2"}, "search[value]": {"bergen"}}
	req := httptest.NewRequest(http.MethodPost, "/data", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Draw)
	assert.Equal(t, [][]string{{"Bergen", "291000"}}, resp.Data)
}

func TestReloadAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	h := New(cityTable(t), WithMetrics(m))

	get(t, h, "draw=1")
	get(t, h, "sEcho=1")
	get(t, h, "draw=1&length=x")
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("modern", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("legacy", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.requests.WithLabelValues("modern", "400")), 0)

	require.NoError(t, h.Reload(context.Background(), datatable.FromRecords([]string{"city", "pop"}, [][]string{{"Alta", "21000"}})))
	_, body := get(t, h, "draw=2")
	assert.EqualValues(t, 1, body["recordsTotal"])
	assert.InDelta(t, 1, testutil.ToFloat64(m.rows), 0)

	assert.ErrorIs(t, h.Reload(context.Background(), nil), datatable.ErrNoDataSource)
	assert.InDelta(t, 1, testutil.ToFloat64(m.reloads.WithLabelValues("error")), 0)

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestParseRequestDefaults(t *testing.T) {
	req, err := ParseRequest(url.Values{}, 2)
	require.NoError(t, err)
	assert.False(t, req.Legacy)
	assert.Nil(t, req.Search)
	assert.Nil(t, req.Order)

	s := &datatable.Settings{Start: 10, Length: 25, ColumnSearch: make([]datatable.Search, 2)}
	req.apply(s)
	assert.Equal(t, 10, s.Start)
	assert.Equal(t, 25, s.Length)

	// Sort entries naming unknown columns are dropped.
	req, err = ParseRequest(url.Values{"order[0][column]": {"9"}, "order[1][column]": {"1"}}, 2)
	require.NoError(t, err)
	assert.Equal(t, datatable.SortSpec{{Column: 1, Direction: datatable.SortAscending}}, req.Order)
}

func TestLegacySortCountBounded(t *testing.T) {
	form, err := url.ParseQuery("sEcho=1&iSortingCols=2000000000&iSortCol_0=1&sSortDir_0=desc")
	require.NoError(t, err)

	start := time.Now()
	req, err := ParseRequest(form, 2)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, req.Legacy)
	assert.Equal(t, datatable.SortSpec{{Column: 1, Direction: datatable.SortDescending}}, req.Order)
}
