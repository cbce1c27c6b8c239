package debugger

import (
	"testing"

	"github.com/calmofthestorm/routerbolt/emulator"
)

func mustEmulator(t *testing.T, cell *emulator.Cell, program string) *emulator.Emulator {
	t.Helper()
	emu, err := emulator.New(cell, program)
	if err != nil {
		t.Fatalf("emulator.New: %v", err)
	}
	return emu
}

func TestWatchpointManagerAddWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddWatchpoint("x")

	if wp == nil {
		t.Fatal("AddWatchpoint returned nil")
	}
	if wp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", wp.ID)
	}
	if wp.Expression != "x" {
		t.Errorf("Expression = %s, want x", wp.Expression)
	}
	if wp.IsCell {
		t.Error("Should not be a cell watchpoint")
	}
	if !wp.Enabled {
		t.Error("Watchpoint should be enabled by default")
	}
	if wp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", wp.HitCount)
	}
}

func TestWatchpointManagerAddCellWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()

	wp := wm.AddCellWatchpoint(5)

	if !wp.IsCell {
		t.Error("Should be a cell watchpoint")
	}
	if wp.CellSlot != 5 {
		t.Errorf("CellSlot = %d, want 5", wp.CellSlot)
	}
	if wp.Expression != "@5" {
		t.Errorf("Expression = %s, want @5", wp.Expression)
	}
}

func TestWatchpointManagerAddMultiple(t *testing.T) {
	wm := NewWatchpointManager()

	wp1 := wm.AddWatchpoint("x")
	wp2 := wm.AddCellWatchpoint(0)

	if wp1.ID == wp2.ID {
		t.Error("Watchpoint IDs should be unique")
	}
	if wm.Count() != 2 {
		t.Errorf("Expected 2 watchpoints, got %d", wm.Count())
	}
}

func TestWatchpointManagerDeleteWatchpoint(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint("x")

	if err := wm.DeleteWatchpoint(wp.ID); err != nil {
		t.Fatalf("DeleteWatchpoint failed: %v", err)
	}
	if wm.GetWatchpoint(wp.ID) != nil {
		t.Error("Watchpoint not deleted")
	}
	if err := wm.DeleteWatchpoint(999); err == nil {
		t.Error("Expected error when deleting non-existent watchpoint")
	}
}

func TestWatchpointManagerEnableDisable(t *testing.T) {
	wm := NewWatchpointManager()
	wp := wm.AddWatchpoint("x")

	if err := wm.DisableWatchpoint(wp.ID); err != nil {
		t.Fatalf("DisableWatchpoint failed: %v", err)
	}
	if wp.Enabled {
		t.Error("Watchpoint not disabled")
	}

	if err := wm.EnableWatchpoint(wp.ID); err != nil {
		t.Fatalf("EnableWatchpoint failed: %v", err)
	}
	if !wp.Enabled {
		t.Error("Watchpoint not enabled")
	}
}

func TestWatchpointManagerCheckWatchpointsVariable(t *testing.T) {
	wm := NewWatchpointManager()
	emu := mustEmulator(t, nil, "set x 100\nset y 1")

	wp := wm.AddWatchpoint("x")

	if err := wm.InitializeWatchpoint(wp.ID, emu); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}
	if wp.LastValue != 0 || wp.HasValue {
		t.Errorf("LastValue = %d, HasValue = %v; x is unset before Run", wp.LastValue, wp.HasValue)
	}

	if triggered, changed := wm.CheckWatchpoints(emu); triggered != nil || changed {
		t.Error("Should not trigger when value hasn't changed")
	}

	emu.Run(10)

	triggered, changed := wm.CheckWatchpoints(emu)
	if triggered == nil || !changed {
		t.Fatal("Should trigger once x becomes set")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
	if wp.HitCount != 1 {
		t.Errorf("Hit count = %d, want 1", wp.HitCount)
	}
	if wp.LastValue != 100 {
		t.Errorf("LastValue not updated: got %d, want 100", wp.LastValue)
	}
}

func TestWatchpointManagerCheckWatchpointsCell(t *testing.T) {
	wm := NewWatchpointManager()
	cell := emulator.NewCell("bank1")
	emu := mustEmulator(t, cell, "write 7 bank1 3\nend")

	wp := wm.AddCellWatchpoint(3)

	if err := wm.InitializeWatchpoint(wp.ID, emu); err != nil {
		t.Fatalf("InitializeWatchpoint failed: %v", err)
	}

	emu.Run(10)

	triggered, changed := wm.CheckWatchpoints(emu)
	if triggered == nil || !changed {
		t.Fatal("Should trigger once the cell slot is written")
	}
	if triggered.ID != wp.ID {
		t.Errorf("Wrong watchpoint triggered: got %d, want %d", triggered.ID, wp.ID)
	}
	if triggered.LastValue != 7 {
		t.Errorf("LastValue = %d, want 7", triggered.LastValue)
	}
}

func TestWatchpointManagerDisabled(t *testing.T) {
	wm := NewWatchpointManager()
	emu := mustEmulator(t, nil, "set x 1\nend")

	wp := wm.AddWatchpoint("x")
	wm.InitializeWatchpoint(wp.ID, emu)
	wm.DisableWatchpoint(wp.ID)

	emu.Run(10)

	if triggered, _ := wm.CheckWatchpoints(emu); triggered != nil {
		t.Error("Disabled watchpoint should not trigger")
	}
}

func TestWatchpointManagerGetAllWatchpoints(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint("x")
	wm.AddWatchpoint("y")
	wm.AddCellWatchpoint(0)

	all := wm.GetAllWatchpoints()
	if len(all) != 3 {
		t.Errorf("Expected 3 watchpoints, got %d", len(all))
	}
}

func TestWatchpointManagerClear(t *testing.T) {
	wm := NewWatchpointManager()

	wm.AddWatchpoint("x")
	wm.AddWatchpoint("y")

	wm.Clear()
	if wm.Count() != 0 {
		t.Errorf("Expected 0 watchpoints after clear, got %d", wm.Count())
	}
}
