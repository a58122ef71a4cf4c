package stripe

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
)

// Stripe is a run of pixels in one colour.
type Stripe struct {
	Colour colorful.Color
	Length int
}

// Generator creates stripes of random length, never repeating the previous
// palette colour.
type Generator struct {
	palette   []colorful.Color
	current   int
	stripeMin int
	stripeMax int
	rng       *rand.Rand
}

// NewGenerator creates a Generator. A nil palette picks random hues.
func NewGenerator(palette []colorful.Color, stripeMin, stripeMax int, seed int64) *Generator {
	g := new(Generator)
	g.palette = palette
	g.current = -1
	g.stripeMin = stripeMin
	g.stripeMax = stripeMax
	if g.stripeMin < 1 {
		g.stripeMin = 1
	}
	if g.stripeMax <= g.stripeMin {
		g.stripeMax = g.stripeMin + 1
	}
	g.rng = rand.New(rand.NewSource(seed))
	return g
}

// CreateStripe returns the next stripe.
func (g *Generator) CreateStripe() Stripe {
	var colour colorful.Color
	switch len(g.palette) {
	case 0:
		colour = colorful.Hsl(g.rng.Float64()*360.0, 1.0, 0.2)
	case 1:
		colour = g.palette[0]
	default:
		for {
			next := g.rng.Intn(len(g.palette))
			if next != g.current {
				g.current = next
				break
			}
		}
		colour = g.palette[g.current]
	}

	length := g.rng.Intn(g.stripeMax-g.stripeMin) + g.stripeMin
	return Stripe{colour, length}
}

// Band is a fixed sequence of stripes that repeats end to end.
type Band []Stripe

// Generate creates a Band of n stripes.
func Generate(g *Generator, n int) Band {
	b := make(Band, n)
	for i := range b {
		b[i] = g.CreateStripe()
	}
	return b
}

// Len returns the total length in pixels.
func (b Band) Len() int {
	total := 0
	for _, s := range b {
		total += s.Length
	}
	return total
}

// At returns the colour at offset, wrapping in both directions.
func (b Band) At(offset float64) colorful.Color {
	total := b.Len()
	if total == 0 {
		return colorful.Color{}
	}
	pos := math.Mod(offset, float64(total))
	if pos < 0 {
		pos += float64(total)
	}

	end := 0
	for _, s := range b {
		end += s.Length
		if pos < float64(end) {
			return s.Colour
		}
	}
	return b[len(b)-1].Colour
}
