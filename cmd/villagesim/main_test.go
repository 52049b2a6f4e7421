package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/talgya/village-journey/internal/engine"
)

func newTestGame(t *testing.T) *engine.Game {
	t.Helper()
	g, err := engine.NewGame(engine.DefaultConfig(), 5)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestDispatch(t *testing.T) {
	g := newTestGame(t)
	saves := 0
	save := func() { saves++ }

	var out bytes.Buffer
	if !dispatch(g, save, []string{"next"}, &out) {
		t.Fatal("next should continue")
	}
	if g.Turn() != 1 || !strings.Contains(out.String(), "Turn 1") {
		t.Fatalf("turn=%d out=%q", g.Turn(), out.String())
	}

	out.Reset()
	dispatch(g, save, []string{"move", "sideways"}, &out)
	if !strings.Contains(out.String(), "unknown direction") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	dispatch(g, save, []string{"save"}, &out)
	if saves != 1 {
		t.Fatalf("save called %d times", saves)
	}

	out.Reset()
	dispatch(g, save, []string{"dance"}, &out)
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("unexpected output %q", out.String())
	}

	if dispatch(g, save, []string{"quit"}, &out) {
		t.Fatal("quit should stop the session")
	}
}

func TestDispatchMoveTwice(t *testing.T) {
	g := newTestGame(t)
	var out bytes.Buffer

	// From any cell of a 3x3 grid at least one of these stays in bounds.
	moved := false
	for _, dir := range []string{"up", "down", "left", "right"} {
		out.Reset()
		dispatch(g, func() {}, []string{"move", dir}, &out)
		if strings.HasPrefix(out.String(), "Moved to") {
			moved = true
			break
		}
	}
	if !moved {
		t.Fatal("no move succeeded")
	}

	out.Reset()
	dispatch(g, func() {}, []string{"move", "up"}, &out)
	dispatch(g, func() {}, []string{"move", "down"}, &out)
	if !strings.Contains(out.String(), "already moved") {
		t.Fatalf("expected already-moved message, got %q", out.String())
	}
}

func TestReplStopsOnQuit(t *testing.T) {
	g := newTestGame(t)
	var out bytes.Buffer
	in := strings.NewReader("next\nnext\nquit\nnext\n")

	repl(context.Background(), g, func() {}, in, &out)
	if g.Turn() != 2 {
		t.Fatalf("turn = %d, want 2", g.Turn())
	}
}

func TestScanLinesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := scanLines(ctx, strings.NewReader("next\nstatus\nmap\n"))

	if got := <-lines; got != "next" {
		t.Fatalf("first line = %q", got)
	}
	cancel()

	// The reader must exit and close the channel instead of blocking on
	// the unread lines.
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("scanner goroutine did not exit after cancel")
		}
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("debug").String() != "DEBUG" || parseLevel("bogus").String() != "INFO" {
		t.Fatal("unexpected log levels")
	}
}
