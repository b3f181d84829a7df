package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

var (
	styleDefault  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	styleTitle    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleFaint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

const createRowLabel = "[ + Create New Entry ]"

func (b *Browser) draw(screen tcell.Screen) {
	screen.Clear()
	w, h := screen.Size()

	drawText(screen, 1, 0, styleTitle, "JOURNAL")
	drawText(screen, 1, h-1, styleFaint, "j/k move  g/G jump  enter open  q quit")
	if b.status != "" {
		drawText(screen, 1, h-2, styleStatus, b.status)
	}

	// Row 0 is the create row, entries follow newest first.
	top := 2
	visible := h - top - 2
	if visible < 1 {
		visible = 1
	}
	first := 0
	if b.selected >= visible {
		first = b.selected - visible + 1
	}
	for row := first; row < b.rows() && row-first < visible; row++ {
		y := top + row - first
		style := styleDefault
		if row == b.selected {
			style = styleSelected
		}
		drawText(screen, 1, y, style, b.rowLabel(row, w-2))
	}

	if b.mode == modeInput {
		b.drawInputBox(screen, w, h)
	}
	screen.Show()
}

func (b *Browser) rowLabel(row, max int) string {
	if row == 0 {
		return createRowLabel
	}
	entry := b.entries[row-1]
	label := fmt.Sprintf("%s  %s", entry.Created.Format("2006-01-02"), entry.Title)
	runes := []rune(label)
	if max > 0 && len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}

func (b *Browser) drawInputBox(screen tcell.Screen, w, h int) {
	boxW := w * 2 / 3
	if boxW < 20 {
		boxW = w
	}
	x := (w - boxW) / 2
	y := h / 2
	for i := 0; i < boxW; i++ {
		screen.SetContent(x+i, y-1, ' ', nil, styleDefault)
		screen.SetContent(x+i, y, ' ', nil, styleDefault)
		screen.SetContent(x+i, y+1, ' ', nil, styleDefault)
	}
	drawText(screen, x, y-1, styleTitle, "New entry title (enter to create, esc to cancel):")
	drawText(screen, x, y, styleDefault, string(b.input)+"█")
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}
