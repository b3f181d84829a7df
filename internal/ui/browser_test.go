package ui

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tpabla/journal-tui/pkg/notes"
)

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func newStore(t *testing.T) *notes.Store {
	t.Helper()
	store, err := notes.Open(t.TempDir() + "/entries")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// runBrowser starts Run in the background and returns a function that waits
// for it to finish.
func runBrowser(t *testing.T, b *Browser, screen tcell.Screen) func() error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- b.Run(screen) }()
	return func() error {
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("browser did not exit")
			return nil
		}
	}
}

func inject(screen tcell.SimulationScreen, keys ...tcell.Key) {
	for _, k := range keys {
		screen.InjectKey(k, 0, tcell.ModNone)
		time.Sleep(2 * time.Millisecond)
	}
}

func injectRunes(screen tcell.SimulationScreen, text string) {
	for _, r := range text {
		screen.InjectKey(tcell.KeyRune, r, tcell.ModNone)
		time.Sleep(2 * time.Millisecond)
	}
}

func TestBrowserQuit(t *testing.T) {
	screen := newSimScreen(t)
	b := NewBrowser(newStore(t), func(string) error { return nil })
	wait := runBrowser(t, b, screen)

	injectRunes(screen, "q")
	if err := wait(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestBrowserCreateOpensEditor(t *testing.T) {
	screen := newSimScreen(t)
	store := newStore(t)
	var edited string
	b := NewBrowser(store, func(path string) error {
		edited = path
		return nil
	})
	wait := runBrowser(t, b, screen)

	// Enter on the create row, type a title, confirm, then quit.
	inject(screen, tcell.KeyEnter)
	injectRunes(screen, "First Day")
	inject(screen, tcell.KeyEnter)
	injectRunes(screen, "q")
	if err := wait(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if edited == "" {
		t.Fatal("editor was not opened")
	}
	if _, err := os.Stat(edited); err != nil {
		t.Errorf("created entry missing: %v", err)
	}
	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Title != "First Day" {
		t.Errorf("entries = %+v, want one entry titled First Day", entries)
	}
}

func TestBrowserOpensExistingEntry(t *testing.T) {
	screen := newSimScreen(t)
	store := newStore(t)
	path, err := store.Create("Older Thoughts")
	if err != nil {
		t.Fatal(err)
	}

	var edited string
	b := NewBrowser(store, func(p string) error {
		edited = p
		return nil
	})
	wait := runBrowser(t, b, screen)

	// Move from the create row to the entry and open it.
	injectRunes(screen, "j")
	inject(screen, tcell.KeyEnter)
	injectRunes(screen, "q")
	if err := wait(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if edited != path {
		t.Errorf("edited %q, want %q", edited, path)
	}
}

func TestBrowserCancelInput(t *testing.T) {
	screen := newSimScreen(t)
	store := newStore(t)
	b := NewBrowser(store, func(string) error {
		t.Error("editor opened after cancel")
		return nil
	})
	wait := runBrowser(t, b, screen)

	inject(screen, tcell.KeyEnter)
	injectRunes(screen, "abandoned")
	inject(screen, tcell.KeyEscape)
	injectRunes(screen, "q")
	if err := wait(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want none", entries)
	}
}

func TestBrowserEditorErrorSurfaces(t *testing.T) {
	screen := newSimScreen(t)
	store := newStore(t)
	if _, err := store.Create("Broken"); err != nil {
		t.Fatal(err)
	}
	b := NewBrowser(store, func(string) error {
		return fmt.Errorf("editor crashed")
	})
	wait := runBrowser(t, b, screen)

	injectRunes(screen, "j")
	inject(screen, tcell.KeyEnter)
	if err := wait(); err == nil {
		t.Error("expected editor error")
	}
}

func TestBrowserSelectionBounds(t *testing.T) {
	b := &Browser{entries: make([]notes.Entry, 2)}
	b.moveSelection(-1)
	if b.selected != 0 {
		t.Errorf("selected = %d, want 0", b.selected)
	}
	b.moveSelection(10)
	if b.selected != 2 {
		t.Errorf("selected = %d, want 2", b.selected)
	}
}
