package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text user interface for the debugger, laid out the way a
// terminal debugger conventionally is: a source pane, a couple of state
// panes, an output log, and a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	VariablesView   *tview.TextView
	CellView        *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	Running bool
}

// NewTUI creates a new text user interface around dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.VariablesView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	t.VariablesView.SetBorder(true).SetTitle(" Watched Variables ")

	t.CellView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.CellView.SetBorder(true).SetTitle(" Cell ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.CellView, 0, 2, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.VariablesView, 0, 1, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		var trace []string
		var reason string
		if t.Debugger.StepMode == StepSingle {
			trace = t.Debugger.Step()
		} else {
			trace, reason = t.Debugger.Continue(maxContinueSteps)
		}
		for _, line := range trace {
			t.WriteOutput(line + "\n")
		}
		t.Debugger.Running = false
		t.Debugger.StepMode = StepNone
		if reason != "" {
			t.WriteOutput(fmt.Sprintf("[yellow]Stopped:[white] %s (line %d)\n", reason, t.Debugger.Emu.Counter()))
		}
	}

	t.RefreshAll()
}

// WriteOutput writes to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes all view panels.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateVariablesView()
	t.UpdateCellView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView updates the source code view.
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	if len(t.Debugger.Source) == 0 {
		t.SourceView.SetText("[yellow]No source code available[white]")
		return
	}

	line := t.Debugger.Emu.Counter()
	start := line - CodeContextLinesBeforeCompact
	if start < 0 {
		start = 0
	}
	end := line + CodeContextLinesAfterCompact + 1
	if end > len(t.Debugger.Source) {
		end = len(t.Debugger.Source)
	}

	var lines []string
	for i := start; i < end; i++ {
		marker := "  "
		color := "white"
		if i == line {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(i) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s %d: %s[white]", color, marker, i, t.Debugger.Source[i]))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateVariablesView shows each watchpoint's current value.
func (t *TUI) UpdateVariablesView() {
	t.VariablesView.Clear()

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) == 0 {
		t.VariablesView.SetText("[yellow]No watched variables[white]")
		return
	}

	var lines []string
	for _, wp := range wps {
		value := "unset"
		if wp.HasValue {
			value = fmt.Sprintf("%d", wp.LastValue)
		}
		lines = append(lines, fmt.Sprintf("%s = %s", wp.Expression, value))
	}

	t.VariablesView.SetText(strings.Join(lines, "\n"))
}

// UpdateCellView shows the cell's first few rows of slots as a grid, the way
// the teacher's memory hexdump view does for raw bytes.
func (t *TUI) UpdateCellView() {
	t.CellView.Clear()

	var lines []string
	for row := 0; row < CellDisplayRows; row++ {
		base := row * CellDisplayColumns
		line := fmt.Sprintf("%3d: ", base)
		var cells []string
		for col := 0; col < CellDisplayColumns; col++ {
			slot := base + col
			if value, ok := t.Debugger.Emu.GetMem(slot); ok {
				cells = append(cells, fmt.Sprintf("%6d", value))
			} else {
				cells = append(cells, "     _")
			}
		}
		line += strings.Join(cells, " ")
		lines = append(lines, line)
	}

	t.CellView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView updates the breakpoints and watchpoints view.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status := "enabled"
			color := "green"
			if !bp.Enabled {
				status = "disabled"
				color = "red"
			}

			line := fmt.Sprintf("  %d: [%s]%s[white] line %d", bp.ID, color, status, bp.Line)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)

			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			value := "unset"
			if wp.HasValue {
				value = fmt.Sprintf("%d", wp.LastValue)
			}
			lines = append(lines, fmt.Sprintf("  %d: watch %s = %s", wp.ID, wp.Expression, value))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]Routerbolt Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}

// LoadSource loads source code for display.
func (t *TUI) LoadSource(lines []string) {
	t.Debugger.LoadSource(lines)
	t.UpdateSourceView()
}
