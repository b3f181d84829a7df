package gate

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tpabla/journal-tui/pkg/rain"
)

var (
	styleBackground = tcell.StyleDefault.
			Background(tcell.ColorBlack).
			Foreground(tcell.ColorGreen)

	styleHead = tcell.StyleDefault.
			Background(tcell.ColorBlack).
			Foreground(tcell.ColorWhite).
			Bold(true)
	styleBright = tcell.StyleDefault.
			Background(tcell.ColorBlack).
			Foreground(tcell.ColorLightGreen)
	styleDim = tcell.StyleDefault.
			Background(tcell.ColorBlack).
			Foreground(tcell.ColorGreen)

	styleAuthMsg    = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorAqua).Bold(true)
	styleDecodeMsg  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightGreen)
	styleSuccessMsg = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightGreen).Bold(true).Blink(true)
	styleFailMsg    = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorRed).Bold(true).Blink(true)

	borderAuth = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorAqua)
	borderOK   = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightGreen)
	borderFail = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorRed)
)

// Draw renders one frame: the rain field, then the phase message box on top.
// It reads the animation but never mutates it.
func Draw(screen tcell.Screen, a *rain.Animation, now time.Time) {
	screen.Fill(' ', styleBackground)

	width, height := screen.Size()
	for x, col := range a.Columns {
		if x >= width {
			break
		}
		for y := 0; y < height; y++ {
			if !col.Visible(y) {
				continue
			}
			b := col.Brightness[y]
			style := styleDim
			switch {
			case b > 0.8:
				style = styleHead
			case b > 0.4:
				style = styleBright
			}
			glyph := col.Glyphs[min(y, len(col.Glyphs)-1)]
			screen.SetContent(x, y, glyph, nil, style)
		}
	}

	drawMessageBox(screen, a, now)
	screen.Show()
}

func drawMessageBox(screen tcell.Screen, a *rain.Animation, now time.Time) {
	text, style := messageFor(a, now)
	if text == "" {
		return
	}

	runes := []rune(text)
	width, height := screen.Size()
	boxW := width * 6 / 10
	if boxW < len(runes)+4 {
		boxW = len(runes) + 4
	}
	if boxW > width {
		boxW = width
	}
	boxH := 5
	x0 := (width - boxW) / 2
	y0 := height * 2 / 5

	border := borderAuth
	switch a.Phase() {
	case rain.PhaseDecoding, rain.PhaseSuccess:
		border = borderOK
	case rain.PhaseFailed:
		border = borderFail
	}

	// Clear the interior so rain never bleeds through the message.
	for y := y0; y < y0+boxH; y++ {
		for x := x0; x < x0+boxW; x++ {
			screen.SetContent(x, y, ' ', nil, styleBackground)
		}
	}
	drawBorder(screen, x0, y0, boxW, boxH, border)

	msgY := y0 + boxH/2
	msgX := x0 + (boxW-len(runes))/2
	for i, r := range runes {
		screen.SetContent(msgX+i, msgY, r, nil, style)
	}
}

// messageFor builds the center message for the current phase. The dots on the
// authenticating line and the decode cursor blink on a 500 ms cycle keyed to
// the animation start.
func messageFor(a *rain.Animation, now time.Time) (string, tcell.Style) {
	elapsed := now.Sub(a.Started())

	switch a.Phase() {
	case rain.PhaseRain:
		return "", styleBackground
	case rain.PhaseAuthenticating:
		dots := strings.Repeat(".", int(elapsed.Milliseconds()/500%4))
		return "BIOMETRIC SCAN IN PROGRESS" + dots, styleAuthMsg
	case rain.PhaseDecoding:
		cursor := ""
		if elapsed.Milliseconds()/500%2 == 0 {
			cursor = "█"
		}
		return "> " + a.Typed() + cursor, styleDecodeMsg
	case rain.PhaseSuccess:
		return "ENTERING JOURNAL...", styleSuccessMsg
	case rain.PhaseFailed:
		return "ACCESS DENIED - AUTHENTICATION FAILED", styleFailMsg
	default:
		return "", styleBackground
	}
}

func drawBorder(screen tcell.Screen, x0, y0, w, h int, style tcell.Style) {
	for x := x0; x < x0+w; x++ {
		screen.SetContent(x, y0, tcell.RuneHLine, nil, style)
		screen.SetContent(x, y0+h-1, tcell.RuneHLine, nil, style)
	}
	for y := y0; y < y0+h; y++ {
		screen.SetContent(x0, y, tcell.RuneVLine, nil, style)
		screen.SetContent(x0+w-1, y, tcell.RuneVLine, nil, style)
	}
	screen.SetContent(x0, y0, tcell.RuneULCorner, nil, style)
	screen.SetContent(x0+w-1, y0, tcell.RuneURCorner, nil, style)
	screen.SetContent(x0, y0+h-1, tcell.RuneLLCorner, nil, style)
	screen.SetContent(x0+w-1, y0+h-1, tcell.RuneLRCorner, nil, style)
}
