package datatable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessorGet(t *testing.T) {
	row := map[string]any{
		"name": "Ada",
		"contact": map[string]any{
			"emails": []any{"ada@example.org", "ada@math.org"},
		},
		"empty": nil,
	}

	tests := []struct {
		name   string
		a      Accessor
		row    any
		want   any
		wantOK bool
	}{
		{"Index", ByIndex(1), []any{"a", "b"}, "b", true},
		{"IndexStrings", ByIndex(0), []string{"x"}, "x", true},
		{"IndexOutOfRange", ByIndex(3), []any{"a"}, nil, false},
		{"IndexNil", ByIndex(0), []any{nil}, nil, false},
		{"Key", ByKeyPath("name"), row, "Ada", true},
		{"NestedSlice", ByKeyPath("contact.emails.1"), row, "ada@math.org", true},
		{"MissingKey", ByKeyPath("contact.phone"), row, nil, false},
		{"NilValue", ByKeyPath("empty"), row, nil, false},
		{"DottedKey", ByKey("a.b"), map[string]any{"a.b": 1}, 1, true},
		{"Func", ByFunc(func(r any) (any, bool) { return "fn", true }, nil), nil, "fn", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Get(tt.row)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessorSet(t *testing.T) {
	t.Run("IndexGrows", func(t *testing.T) {
		row, err := ByIndex(2).Set([]any{"a"}, "c")
		require.NoError(t, err)
		assert.Equal(t, []any{"a", nil, "c"}, row)
	})

	t.Run("PathCreatesMaps", func(t *testing.T) {
		row, err := ByKeyPath("a.b").Set(map[string]any{}, 5)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": 5}}, row)
	})

	t.Run("PathIntoSlice", func(t *testing.T) {
		row, err := ByKeyPath("tags.1").Set(map[string]any{"tags": []any{"x"}}, "y")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"tags": []any{"x", "y"}}, row)
	})

	t.Run("StringSliceKeepsStrings", func(t *testing.T) {
		row, err := ByIndex(1).Set([]string{"a", "b"}, "c")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, row)
	})

	t.Run("StringSliceWidens", func(t *testing.T) {
		row, err := ByIndex(1).Set([]string{"a", "b"}, 42)
		require.NoError(t, err)
		assert.Equal(t, []any{"a", 42}, row)
	})

	t.Run("StringMapWidens", func(t *testing.T) {
		row, err := ByKey("n").Set(map[string]string{"n": "x", "m": "y"}, 42)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"n": 42, "m": "y"}, row)
	})

	t.Run("StringMapNests", func(t *testing.T) {
		row, err := ByKeyPath("a.b").Set(map[string]string{"m": "y"}, 1)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": map[string]any{"b": 1}, "m": "y"}, row)
	})

	t.Run("ReadOnlyFunc", func(t *testing.T) {
		_, err := ByFunc(func(any) (any, bool) { return nil, false }, nil).Set(nil, 1)
		assert.ErrorIs(t, err, ErrReadOnlyAccessor)
	})

	t.Run("Unsupported", func(t *testing.T) {
		_, err := ByIndex(0).Set(42, 1)
		assert.ErrorIs(t, err, ErrUnsupportedRow)
	})
}

func TestAccessorFromOption(t *testing.T) {
	tests := []struct {
		in   any
		kind AccessorKind
		desc string
	}{
		{nil, AccessIndex, "index(4)"},
		{2, AccessIndex, "index(2)"},
		{float64(3), AccessIndex, "index(3)"},
		{"1", AccessIndex, "index(1)"},
		{"user.name", AccessKeyPath, "path(user.name)"},
	}

	for _, tt := range tests {
		a, err := AccessorFromOption(tt.in, 4)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, a.Kind())
		assert.Equal(t, tt.desc, a.String())
	}

	_, err := AccessorFromOption(true, 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
