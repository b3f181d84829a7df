// Package ui implements the terminal journal browser shown after the vault
// unlocks.
package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/tpabla/journal-tui/pkg/notes"
)

type mode int

const (
	modeList mode = iota
	modeInput
)

// Browser is the entry list screen. The caller owns the tcell screen; Run
// drives the event loop until the user quits.
type Browser struct {
	Store *notes.Store

	// OpenEditor edits the file at path and returns when the editor exits.
	// Run suspends the screen around the call.
	OpenEditor func(path string) error

	entries  []notes.Entry
	selected int
	mode     mode
	input    []rune
	status   string
}

// NewBrowser returns a browser over store. openEditor must not be nil.
func NewBrowser(store *notes.Store, openEditor func(path string) error) *Browser {
	return &Browser{Store: store, OpenEditor: openEditor}
}

// Run shows the list and handles input until the user quits. It returns the
// first error from the store or the editor.
func (b *Browser) Run(screen tcell.Screen) error {
	if err := b.reload(); err != nil {
		return err
	}
	for {
		b.draw(screen)
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			quit, err := b.handleKey(screen, ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		case nil:
			// Screen finalized underneath us.
			return nil
		}
	}
}

// rows is the number of selectable rows: the create row plus every entry.
func (b *Browser) rows() int { return len(b.entries) + 1 }

func (b *Browser) reload() error {
	entries, err := b.Store.List()
	if err != nil {
		return err
	}
	b.entries = entries
	if b.selected >= b.rows() {
		b.selected = b.rows() - 1
	}
	return nil
}

func (b *Browser) handleKey(screen tcell.Screen, ev *tcell.EventKey) (bool, error) {
	if b.mode == modeInput {
		return false, b.handleInputKey(screen, ev)
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return true, nil
	case tcell.KeyDown:
		b.moveSelection(1)
	case tcell.KeyUp:
		b.moveSelection(-1)
	case tcell.KeyEnter:
		return false, b.activate(screen)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true, nil
		case 'j':
			b.moveSelection(1)
		case 'k':
			b.moveSelection(-1)
		case 'g':
			b.selected = 0
		case 'G':
			b.selected = b.rows() - 1
		}
	}
	return false, nil
}

func (b *Browser) handleInputKey(screen tcell.Screen, ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape:
		b.mode = modeList
		b.input = nil
	case tcell.KeyEnter:
		title := string(b.input)
		b.mode = modeList
		b.input = nil
		return b.createAndEdit(screen, title)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(b.input) > 0 {
			b.input = b.input[:len(b.input)-1]
		}
	case tcell.KeyRune:
		b.input = append(b.input, ev.Rune())
	}
	return nil
}

func (b *Browser) moveSelection(delta int) {
	b.selected += delta
	if b.selected < 0 {
		b.selected = 0
	}
	if b.selected >= b.rows() {
		b.selected = b.rows() - 1
	}
}

func (b *Browser) activate(screen tcell.Screen) error {
	if b.selected == 0 {
		b.mode = modeInput
		b.input = nil
		return nil
	}
	entry := b.entries[b.selected-1]
	return b.edit(screen, entry.Path)
}

func (b *Browser) createAndEdit(screen tcell.Screen, title string) error {
	path, err := b.Store.Create(title)
	if err != nil {
		if err == notes.ErrEmptyTitle {
			b.status = "title cannot be empty"
			return nil
		}
		return err
	}
	return b.edit(screen, path)
}

func (b *Browser) edit(screen tcell.Screen, path string) error {
	if err := screen.Suspend(); err != nil {
		return fmt.Errorf("ui: failed to suspend screen: %w", err)
	}
	editErr := b.OpenEditor(path)
	if err := screen.Resume(); err != nil {
		return fmt.Errorf("ui: failed to resume screen: %w", err)
	}
	if editErr != nil {
		return fmt.Errorf("ui: editor failed: %w", editErr)
	}
	// The edit may have changed the title.
	if err := b.Store.Refresh(path); err != nil {
		return err
	}
	return b.reload()
}
