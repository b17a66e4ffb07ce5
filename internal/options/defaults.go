package options

// Stock English strings the language fallback compares against.
const (
	DefaultEmptyTable     = "No data available in table"
	DefaultLoadingRecords = "Loading..."
	DefaultZeroRecords    = "No matching records found"
)

// DefaultStateDuration is the lifetime of saved state, in seconds.
const DefaultStateDuration = 7200

// Defaults returns a fresh canonical default tree. Callers may modify it.
func Defaults() Tree {
	return Tree{
		"paging":        true,
		"lengthChange":  true,
		"searching":     true,
		"ordering":      true,
		"info":          true,
		"processing":    false,
		"serverSide":    false,
		"stateSave":     false,
		"stateDuration": DefaultStateDuration,
		"pageLength":    10,
		"displayStart":  0,
		"lengthMenu":    []any{10, 25, 50, 100},
		"order":         []any{[]any{0, "asc"}},
		"locale":        "und",
		"search": Tree{
			"search":          "",
			"regex":           false,
			"smart":           true,
			"caseInsensitive": true,
		},
		"searchCols": []any{},
		"column": Tree{
			"orderSequence": []any{"asc", "desc"},
			"orderable":     true,
			"searchable":    true,
			"visible":       true,
		},
		"columns":    []any{},
		"columnDefs": []any{},
		"language": Tree{
			"emptyTable":     DefaultEmptyTable,
			"info":           "Showing _START_ to _END_ of _TOTAL_ entries",
			"infoEmpty":      "Showing 0 to 0 of 0 entries",
			"infoFiltered":   "(filtered from _MAX_ total entries)",
			"infoPostFix":    "",
			"thousands":      ",",
			"lengthMenu":     "Show _MENU_ entries",
			"loadingRecords": DefaultLoadingRecords,
			"processing":     "Processing...",
			"search":         "Search:",
			"zeroRecords":    DefaultZeroRecords,
			"paginate": Tree{
				"first":    "First",
				"previous": "Previous",
				"next":     "Next",
				"last":     "Last",
			},
		},
	}
}
