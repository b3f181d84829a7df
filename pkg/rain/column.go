// Package rain implements the falling-glyph animation shown while the journal
// authenticates: independent per-column simulations plus the phase state
// machine that drives the center message.
package rain

import "math/rand"

// glyphSet is the pool a column draws from: half-width-style katakana plus
// ASCII noise, matching the classic rain look.
const glyphSet = "アイウエオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワヲン0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ!@#$%^&*(){}[]|\\:;<>?,./"

// Column fall parameters. Position resets off-screen above so a column
// re-enters gradually rather than popping in at row zero.
const (
	minSpeed      = 0.3
	maxSpeed      = 1.5
	minTrail      = 5
	maxTrail      = 20
	decayFactor   = 0.95
	perturbOuter  = 0.1
	perturbInner  = 0.02
	resetPosLow   = -30.0
	resetPosHigh  = -10.0
	initPosLow    = -20.0
	initPosHigh   = 0.0
	minBrightness = 0.01
)

var glyphs = []rune(glyphSet)

// Column is one falling glyph trail. Each column owns its state exclusively;
// columns never read each other.
type Column struct {
	Glyphs     []rune
	Position   float64
	Speed      float64
	Trail      int
	Brightness []float64

	rng *rand.Rand
}

// NewColumn creates a column of the given screen height with randomized
// start position, speed and trail length.
func NewColumn(height int, rng *rand.Rand) *Column {
	g := make([]rune, height)
	for i := range g {
		g[i] = glyphs[rng.Intn(len(glyphs))]
	}
	return &Column{
		Glyphs:     g,
		Position:   initPosLow + rng.Float64()*(initPosHigh-initPosLow),
		Speed:      minSpeed + rng.Float64()*(maxSpeed-minSpeed),
		Trail:      minTrail + rng.Intn(maxTrail-minTrail),
		Brightness: make([]float64, height),
		rng:        rng,
	}
}

// Advance moves the column one tick: the head falls by Speed, rows inside the
// trail band get a linear head-to-tail fade, rows outside decay toward zero
// (the afterglow), and the glyph set is occasionally perturbed. When the trail
// has fully left the bottom of the screen the column resets above the top.
func (c *Column) Advance() {
	c.Position += c.Speed

	for i := range c.Brightness {
		relative := float64(i) - c.Position
		if relative >= 0 && relative < float64(c.Trail) {
			c.Brightness[i] = 1 - relative/float64(c.Trail)
		} else {
			c.Brightness[i] *= decayFactor
		}
	}

	if c.rng.Float64() < perturbOuter {
		for i := range c.Glyphs {
			if c.rng.Float64() < perturbInner {
				c.Glyphs[i] = glyphs[c.rng.Intn(len(glyphs))]
			}
		}
	}

	if c.Position > float64(len(c.Glyphs)+c.Trail) {
		c.Position = resetPosLow + c.rng.Float64()*(resetPosHigh-resetPosLow)
		c.Speed = minSpeed + c.rng.Float64()*(maxSpeed-minSpeed)
		c.Trail = minTrail + c.rng.Intn(maxTrail-minTrail)
	}
}

// Visible reports whether the row is bright enough to draw.
func (c *Column) Visible(row int) bool {
	return row < len(c.Brightness) && c.Brightness[row] > minBrightness
}
