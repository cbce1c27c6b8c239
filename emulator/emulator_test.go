package emulator

import "testing"

func mustNew(t *testing.T, cell *Cell, program string) *Emulator {
	t.Helper()
	emu, err := New(cell, program)
	if err != nil {
		t.Fatalf("New(%q): %v", program, err)
	}
	return emu
}

func wantVar(t *testing.T, emu *Emulator, name string, want uint64, wantOK bool) {
	t.Helper()
	got, ok := emu.GetVar(name)
	if ok != wantOK || (ok && got != want) {
		t.Fatalf("GetVar(%q) = (%d, %v), want (%d, %v)", name, got, ok, want, wantOK)
	}
}

func TestEnd(t *testing.T) {
	emu := mustNew(t, nil, "")
	if n := len(emu.Run(10)); n != 0 {
		t.Fatalf("empty program ran %d steps, want 0", n)
	}

	emu = mustNew(t, nil, "jump 1 always x false\nop add foo 1 2\nend")
	if n := len(emu.Run(10)); n != 3 {
		t.Fatalf("got %d steps, want 3", n)
	}

	emu = mustNew(t, nil, "end")
	if n := len(emu.Run(10)); n != 1 {
		t.Fatalf("got %d steps, want 1", n)
	}
}

func TestMath(t *testing.T) {
	emu := mustNew(t, nil, "op add x 1 2\nop sub y 7 3\nop mul x x y")

	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 1: got %d, want 1", n)
	}
	wantVar(t, emu, "x", 3, true)

	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 2: got %d, want 1", n)
	}
	wantVar(t, emu, "y", 4, true)

	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 3: got %d, want 1", n)
	}
	wantVar(t, emu, "x", 12, true)
}

func TestLoop(t *testing.T) {
	emu := mustNew(t, nil, "set x 0\nset y 1\nop mul y 2 y\nop add x x 1\njump 2 lessThan x 5")
	if n := len(emu.Run(100)); n != 17 {
		t.Fatalf("got %d steps, want 17", n)
	}
	wantVar(t, emu, "x", 5, true)
	wantVar(t, emu, "y", 32, true)
}

func TestLoopInfinite(t *testing.T) {
	emu := mustNew(t, nil, "op add x x x\nop add x x 1\njump 0 always x false")

	if n := len(emu.Run(3)); n != 3 {
		t.Fatalf("got %d, want 3", n)
	}
	wantVar(t, emu, "x", 1, true)

	if n := len(emu.Run(3)); n != 3 {
		t.Fatalf("got %d, want 3", n)
	}
	wantVar(t, emu, "x", 3, true)

	if n := len(emu.Run(3)); n != 3 {
		t.Fatalf("got %d, want 3", n)
	}
	wantVar(t, emu, "x", 7, true)

	if n := len(emu.Run(3)); n != 3 {
		t.Fatalf("got %d, want 3", n)
	}
	wantVar(t, emu, "x", 15, true)
}

func TestReadCounter(t *testing.T) {
	emu := mustNew(t, nil, "set x @counter\nop add y 3 @counter\nop sub z 10 @counter\nset y @counter")

	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 1: got %d, want 1", n)
	}
	wantVar(t, emu, "x", 1, true)
	wantVar(t, emu, "@counter", 1, true)

	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 2: got %d, want 1", n)
	}
	wantVar(t, emu, "y", 5, true)
	wantVar(t, emu, "@counter", 2, true)

	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 3: got %d, want 1", n)
	}
	wantVar(t, emu, "z", 7, true)
	wantVar(t, emu, "@counter", 3, true)

	// While the final instruction runs the counter holds the number of
	// instructions (one past its index); the wraparound to 0 happens after it
	// completes.
	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("step 4: got %d, want 1", n)
	}
	wantVar(t, emu, "y", 4, true)
	wantVar(t, emu, "@counter", 0, true)
}

func TestSetCounter(t *testing.T) {
	emu := mustNew(t, nil, "op mul @counter 2 3\nend\nset x 1\nend\nset x 2\nend\nset x 3\nend\nset x 4\nend\nset x 5\nend\n")

	if n := len(emu.Run(2)); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	wantVar(t, emu, "x", 3, true)
	wantVar(t, emu, "@counter", 7, true)
}

func TestSet(t *testing.T) {
	emu := mustNew(t, nil, "set x 5\nset y x\nop mul z x y")
	if n := len(emu.Run(10)); n != 3 {
		t.Fatalf("got %d, want 3", n)
	}
	wantVar(t, emu, "x", 5, true)
	wantVar(t, emu, "y", 5, true)
	wantVar(t, emu, "z", 25, true)
}

func TestJump(t *testing.T) {
	cases := []struct {
		program string
		want    int
	}{
		{"set x 5\njump 0 lessThan 5 x", 2},
		{"set x 5\njump 0 greaterThan 5 x", 2},
		{"set x 5\njump 0 greaterThan 6 x", 20},
		{"set x 5\njump 0 lessThan x 6", 20},
		{"set x 5\njump 0 equal x 5", 20},
		{"set x 5\njump 0 equal 6 x", 2},
		{"set x 5\njump 0 notEqual 5 x", 2},
		{"set x 5\njump 0 notEqual x 6", 20},
		{"jump 0 always x false", 20},
	}
	for _, c := range cases {
		emu := mustNew(t, nil, c.program)
		if n := len(emu.Run(20)); n != c.want {
			t.Errorf("program %q: got %d steps, want %d", c.program, n, c.want)
		}
	}
}

func TestReadWrite(t *testing.T) {
	emu := mustNew(t, nil, "read x bank1 5\nwrite 5 bank1 5\nread x bank1 5")
	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	wantVar(t, emu, "x", 0, false)
	if n := len(emu.Run(2)); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	wantVar(t, emu, "x", 0, false)

	cell := NewCell("bank1")

	emu = mustNew(t, cell.Clone(), "read x bank1 5\nwrite 5 bank1 5\nread x bank1 5")
	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	wantVar(t, emu, "x", 0, false)
	if n := len(emu.Run(2)); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	wantVar(t, emu, "x", 5, true)

	emu = mustNew(t, cell.Clone(), "op add x 1 1\nop add x 1 1\nwrite @counter bank1 7\nread x bank1 7")
	if n := len(emu.Run(10)); n != 4 {
		t.Fatalf("got %d, want 4", n)
	}
	wantVar(t, emu, "x", 3, true)

	emu = mustNew(t, cell.Clone(), "write 7 bank1 0\nop add x x x\nread @counter bank1 0\nset x 1\nend\nset x 2\nend\nset x 3\nend\nset x 4\nend\nset x 5\nend\n")
	if n := len(emu.Run(10)); n != 5 {
		t.Fatalf("got %d, want 5", n)
	}
	wantVar(t, emu, "x", 3, true)

	emu = mustNew(t, cell.Clone(), "write 7 bank1 512\nread x bank1 512\nwrite 10 bank1 1000\nread x bank1 1000\nread x bank1 33\nwrite 12 bank1 33\nread x bank1 33")
	if n := len(emu.Run(2)); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	wantVar(t, emu, "x", 0, false)
	if n := len(emu.Run(2)); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	wantVar(t, emu, "x", 0, false)
	if n := len(emu.Run(1)); n != 1 {
		t.Fatalf("got %d, want 1", n)
	}
	wantVar(t, emu, "x", 0, false)
	if n := len(emu.Run(2)); n != 2 {
		t.Fatalf("got %d, want 2", n)
	}
	wantVar(t, emu, "x", 12, true)
}

func TestOutOfBoundsCounterSameAsEnd(t *testing.T) {
	programs := []string{
		"op add x x 1\nset @counter 100\nset y 2",
		"op add x x 1\nset @counter 100\n",
		"op add x x 1\nend\nset y 2",
		"op add x x 1\nend\n",
	}
	for _, program := range programs {
		emu := mustNew(t, nil, program)
		for i := 0; i < 10; i++ {
			emu.Run(100)
		}
		wantVar(t, emu, "x", 10, true)
		wantVar(t, emu, "y", 0, false)
	}
}
