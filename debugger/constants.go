package debugger

// TUI display update constants.
const (
	// DisplayUpdateFrequency is a step interval for TUI redraws during
	// continuous execution. Nothing reads it: the TUI redraws once after
	// each command.
	DisplayUpdateFrequency = 100
)

// Source-listing context constants.
const (
	// CodeContextLinesBefore and CodeContextLinesAfter are wider context
	// sizes for a full source view. Nothing reads them: both the "list"
	// command and the TUI source pane use the compact sizes below.
	CodeContextLinesBefore = 20

	CodeContextLinesAfter = 80

	// CodeContextLinesBeforeCompact is the number of lines to show before
	// the current line in the "list" command's compact view.
	CodeContextLinesBeforeCompact = 5

	// CodeContextLinesAfterCompact is the number of lines to show after
	// the current line in the "list" command's compact view.
	CodeContextLinesAfterCompact = 10
)

// Cell display constants.
const (
	// CellDisplayRows is the number of rows shown in the cell memory view.
	CellDisplayRows = 16

	// CellDisplayColumns is the number of slots shown per row in the cell
	// memory view.
	CellDisplayColumns = 16
)
