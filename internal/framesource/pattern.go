package framesource

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"
)

// Pattern synthesizes RGBA frames for outputs without a video: a slow
// animated drift of soft orbs, or a plain dark fill when the shader is
// disabled.
type Pattern struct {
	width, height int
	animated      bool
	ctx           *gg.Context
	start         time.Time
	static        []byte
}

func NewPattern(width, height int, animated bool) *Pattern {
	return &Pattern{
		width:    width,
		height:   height,
		animated: animated,
		ctx:      gg.NewContext(width, height),
		start:    time.Now(),
	}
}

// Frame renders the pattern for the current wall-clock time. The returned
// slice is reused between calls; callers must upload it before the next one.
func (p *Pattern) Frame() []byte {
	if !p.animated {
		if p.static == nil {
			p.ctx.SetRGB(0.09, 0.09, 0.12)
			p.ctx.Clear()
			p.static = p.pix()
		}
		return p.static
	}

	t := time.Since(p.start).Seconds()
	w, h := float64(p.width), float64(p.height)

	p.ctx.SetRGB(0.07+0.02*math.Sin(t/7), 0.08, 0.13)
	p.ctx.Clear()

	// Three orbs on slow offset orbits around the center.
	for i := 0; i < 3; i++ {
		phase := t/9 + float64(i)*2*math.Pi/3
		cx := w/2 + 0.3*w*math.Cos(phase)
		cy := h/2 + 0.3*h*math.Sin(phase*1.3)
		radius := 0.22 * math.Min(w, h) * (1 + 0.15*math.Sin(t/5+float64(i)))

		grad := gg.NewRadialGradient(cx, cy, 0, cx, cy, radius)
		grad.AddColorStop(0, orbColor(i, 0.35))
		grad.AddColorStop(1, orbColor(i, 0))
		p.ctx.SetFillStyle(grad)
		p.ctx.DrawCircle(cx, cy, radius)
		p.ctx.Fill()
	}
	return p.pix()
}

func (p *Pattern) pix() []byte {
	return p.ctx.Image().(*image.RGBA).Pix
}

func orbColor(i int, alpha float64) color.Color {
	palette := [3][3]float64{
		{0.36, 0.30, 0.68},
		{0.16, 0.45, 0.60},
		{0.55, 0.25, 0.45},
	}
	c := palette[i%3]
	return color.NRGBA{
		R: uint8(c[0] * 255),
		G: uint8(c[1] * 255),
		B: uint8(c[2] * 255),
		A: uint8(alpha * 255),
	}
}
