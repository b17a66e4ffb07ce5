package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtb/datatable"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseTableName(t *testing.T) {
	tbl, err := parseTableName("s.default.trips")
	require.NoError(t, err)
	assert.Equal(t, "s", tbl.Share)
	assert.Equal(t, "default", tbl.Schema)
	assert.Equal(t, "trips", tbl.Name)

	for _, bad := range []string{"", "a.b", "a..c", "a.b.c.d"} {
		_, err := parseTableName(bad)
		assert.Error(t, err, bad)
	}
}

func TestServeFromFiles(t *testing.T) {
	o := &serveOptions{
		config: writeFile(t, "table.yaml", "iDisplayLength: 2\naaSorting: [[1, desc]]\n"),
		data:   writeFile(t, "cities.csv", "city;pop\nOslo;709000\nBergen;291000\nAlta;21000\n"),
		path:   "/data",
	}
	log := datatable.NoopLogger()
	load, err := o.source(log)
	require.NoError(t, err)
	mux, _, err := o.newMux(context.Background(), log, load)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/data?draw=4", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Draw            int        `json:"draw"`
		RecordsFiltered int        `json:"recordsFiltered"`
		Data            [][]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 4, body.Draw)
	assert.Equal(t, 3, body.RecordsFiltered)
	// Page length and order come from the legacy option file.
	assert.Equal(t, [][]string{{"Oslo", "709000"}, {"Bergen", "291000"}}, body.Data)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dtb_rows 3")
}

func TestServeRejectsProfileWithoutTable(t *testing.T) {
	o := &serveOptions{
		data: writeFile(t, "p.share", `{"shareCredentialsVersion":1,"endpoint":"https://example.com","bearerToken":"x"}`),
	}
	load, err := o.source(datatable.NoopLogger())
	require.NoError(t, err)
	_, err = load(context.Background())
	assert.ErrorContains(t, err, "pass --table")
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"config", "data", "table", "addr", "path", "max-length", "refresh"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	cmd.SetArgs([]string{})
	cmd.SetOut(new(nopWriter))
	cmd.SetErr(new(nopWriter))
	assert.Error(t, cmd.Execute())
}

type nopWriter struct{}

func (*nopWriter) Write(p []byte) (int, error) { return len(p), nil }
