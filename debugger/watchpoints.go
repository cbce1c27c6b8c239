package debugger

import (
	"fmt"
	"sync"

	"github.com/calmofthestorm/routerbolt/emulator"
)

// Watchpoint monitors a variable or a cell slot for value changes.
//
// NOTE: like the teacher's implementation, this only detects value changes,
// not specific read/write operations -- the emulator doesn't expose a memory
// access callback to hook into.
type Watchpoint struct {
	ID         int
	Expression string // Variable name (e.g. "x", "*n") or cell slot (e.g. "@5").
	IsCell     bool
	CellSlot   int
	Enabled    bool
	LastValue  uint64
	HasValue   bool // Whether LastValue reflects a real resolved value yet.
	HitCount   int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{
		watchpoints: make(map[int]*Watchpoint),
		nextID:      1,
	}
}

// AddWatchpoint adds a new watchpoint on a variable.
func (wm *WatchpointManager) AddWatchpoint(expression string) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Expression: expression,
		Enabled:    true,
	}

	wm.watchpoints[wp.ID] = wp
	wm.nextID++

	return wp
}

// AddCellWatchpoint adds a new watchpoint on a cell slot.
func (wm *WatchpointManager) AddCellWatchpoint(slot int) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:       wm.nextID,
		IsCell:   true,
		CellSlot: slot,
		Enabled:  true,
	}
	wp.Expression = fmt.Sprintf("@%d", slot)

	wm.watchpoints[wp.ID] = wp
	wm.nextID++

	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID.
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID.
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

// GetWatchpoint gets a watchpoint by ID.
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return wm.watchpoints[id]
}

// GetAllWatchpoints returns all watchpoints.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

// resolveWatchpoint reads a watchpoint's current value from emu.
func resolveWatchpoint(wp *Watchpoint, emu *emulator.Emulator) (uint64, bool) {
	if wp.IsCell {
		return emu.GetMem(wp.CellSlot)
	}
	return emu.GetVar(wp.Expression)
}

// CheckWatchpoints checks all watchpoints and returns the first whose
// resolved value (or presence) differs from what it was last time.
func (wm *WatchpointManager) CheckWatchpoints(emu *emulator.Emulator) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		value, ok := resolveWatchpoint(wp, emu)
		if ok != wp.HasValue || value != wp.LastValue {
			wp.HasValue = ok
			wp.LastValue = value
			wp.HitCount++
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint records a watchpoint's starting value without
// counting it as a hit.
func (wm *WatchpointManager) InitializeWatchpoint(id int, emu *emulator.Emulator) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}

	value, ok := resolveWatchpoint(wp, emu)
	wp.LastValue = value
	wp.HasValue = ok
	return nil
}

// Clear removes all watchpoints.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	return len(wm.watchpoints)
}
