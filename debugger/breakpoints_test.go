package debugger

import "testing"

func TestBreakpointManagerAddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(10, false, "")

	if bp == nil {
		t.Fatal("AddBreakpoint returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}
	if bp.Line != 10 {
		t.Errorf("Expected line 10, got %d", bp.Line)
	}
	if !bp.Enabled {
		t.Error("Breakpoint should be enabled by default")
	}
	if bp.Temporary {
		t.Error("Breakpoint should not be temporary")
	}
	if bp.HitCount != 0 {
		t.Errorf("Initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManagerAddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(10, false, "")
	bp2 := bm.AddBreakpoint(20, false, "")

	if bp1.ID == bp2.ID {
		t.Error("Expected distinct IDs for distinct breakpoints")
	}
	if bm.Count() != 2 {
		t.Errorf("Expected 2 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManagerAddSameLineUpdates(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(10, false, "")
	bp2 := bm.AddBreakpoint(10, true, "x == 5")

	if bp1.ID != bp2.ID {
		t.Error("Expected re-adding at the same line to update the existing breakpoint")
	}
	if !bp2.Temporary {
		t.Error("Expected updated breakpoint to be temporary")
	}
	if bp2.Condition != "x == 5" {
		t.Errorf("Expected condition to be updated, got %q", bp2.Condition)
	}
	if bm.Count() != 1 {
		t.Errorf("Expected still only 1 breakpoint, got %d", bm.Count())
	}
}

func TestBreakpointManagerDeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(10, false, "")

	if err := bm.DeleteBreakpoint(bp.ID); err != nil {
		t.Fatalf("DeleteBreakpoint: %v", err)
	}
	if bm.Count() != 0 {
		t.Errorf("Expected 0 breakpoints after delete, got %d", bm.Count())
	}
	if err := bm.DeleteBreakpoint(bp.ID); err == nil {
		t.Error("Expected error deleting an already-deleted breakpoint")
	}
}

func TestBreakpointManagerDeleteBreakpointAt(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(10, false, "")

	if err := bm.DeleteBreakpointAt(10); err != nil {
		t.Fatalf("DeleteBreakpointAt: %v", err)
	}
	if err := bm.DeleteBreakpointAt(10); err == nil {
		t.Error("Expected error deleting at a line with no breakpoint")
	}
}

func TestBreakpointManagerEnableDisable(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(10, false, "")

	if err := bm.DisableBreakpoint(bp.ID); err != nil {
		t.Fatalf("DisableBreakpoint: %v", err)
	}
	if bm.GetBreakpoint(10).Enabled {
		t.Error("Expected breakpoint to be disabled")
	}
	if len(bm.Lines()) != 0 {
		t.Errorf("Expected no enabled lines, got %v", bm.Lines())
	}

	if err := bm.EnableBreakpoint(bp.ID); err != nil {
		t.Fatalf("EnableBreakpoint: %v", err)
	}
	if !bm.GetBreakpoint(10).Enabled {
		t.Error("Expected breakpoint to be enabled")
	}
	if len(bm.Lines()) != 1 || bm.Lines()[0] != 10 {
		t.Errorf("Expected enabled lines [10], got %v", bm.Lines())
	}
}

func TestBreakpointManagerGetBreakpointByID(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(10, false, "")

	if got := bm.GetBreakpointByID(bp.ID); got == nil || got.Line != 10 {
		t.Errorf("GetBreakpointByID returned %v", got)
	}
	if got := bm.GetBreakpointByID(999); got != nil {
		t.Errorf("Expected nil for unknown ID, got %v", got)
	}
}

func TestBreakpointManagerHasBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(10, false, "")

	if !bm.HasBreakpoint(10) {
		t.Error("Expected HasBreakpoint(10) to be true")
	}
	if bm.HasBreakpoint(20) {
		t.Error("Expected HasBreakpoint(20) to be false")
	}
}

func TestBreakpointManagerClear(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(10, false, "")
	bm.AddBreakpoint(20, false, "")

	bm.Clear()
	if bm.Count() != 0 {
		t.Errorf("Expected 0 breakpoints after Clear, got %d", bm.Count())
	}
}

func TestBreakpointManagerProcessHit(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(10, false, "")

	hit := bm.ProcessHit(10)
	if hit == nil {
		t.Fatal("ProcessHit returned nil for a known breakpoint")
	}
	if hit.HitCount != 1 {
		t.Errorf("Expected HitCount 1, got %d", hit.HitCount)
	}
	if !bm.HasBreakpoint(10) {
		t.Error("Expected non-temporary breakpoint to survive ProcessHit")
	}
}

func TestBreakpointManagerProcessHitTemporary(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(10, true, "")

	hit := bm.ProcessHit(10)
	if hit == nil || hit.HitCount != 1 {
		t.Fatalf("ProcessHit returned %v", hit)
	}
	if bm.HasBreakpoint(10) {
		t.Error("Expected temporary breakpoint to be removed after ProcessHit")
	}
}

func TestBreakpointManagerProcessHitUnknown(t *testing.T) {
	bm := NewBreakpointManager()
	if hit := bm.ProcessHit(999); hit != nil {
		t.Errorf("Expected nil for unknown line, got %v", hit)
	}
}
