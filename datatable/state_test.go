package datatable

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	src := peopleTable(t, WithClock(clock))
	src.Search("a")
	require.NoError(t, src.SearchColumn(1, "25"))
	require.NoError(t, src.ToggleSort(1, false))
	src.SetPageLength(25)
	require.NoError(t, src.SetVisible(0, false))

	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))

	now = now.Add(time.Hour)
	dst := peopleTable(t, WithClock(clock))
	require.NoError(t, dst.LoadState(&buf))

	assert.Equal(t, "a", dst.Settings().Search.Term)
	assert.Equal(t, "25", dst.Settings().ColumnSearch[1].Term)
	assert.Equal(t, SortSpec{{Column: 1, Direction: SortAscending}}, dst.Settings().Order)
	assert.Equal(t, 25, dst.Settings().Length)
	assert.False(t, dst.Columns()[0].Visible)
	assert.Equal(t, src.Draw().Filtered, dst.Draw().Filtered)
}

func TestStateExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	src := peopleTable(t, WithClock(clock))
	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))
	saved := buf.String()

	now = now.Add(3 * time.Hour)
	dst := peopleTable(t, WithClock(clock))
	dst.Search("kept")
	assert.ErrorIs(t, dst.LoadState(strings.NewReader(saved)), ErrStateExpired)
	assert.Equal(t, "kept", dst.Settings().Search.Term)

	cfg := dst.Config()
	cfg.StateDuration = 0
	forever, err := New(cfg, WithClock(clock))
	require.NoError(t, err)
	assert.NoError(t, forever.LoadState(strings.NewReader(saved)))
}

func TestStateColumnMismatch(t *testing.T) {
	src := peopleTable(t)
	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))

	cfg := DefaultConfig()
	cfg.Columns = []ColumnOptions{{}}
	dst, err := New(cfg)
	require.NoError(t, err)
	assert.ErrorIs(t, dst.LoadState(&buf), ErrStateMismatch)

	assert.Error(t, dst.LoadState(strings.NewReader("{")))
}
