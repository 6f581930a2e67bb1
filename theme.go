package sash

import colorful "github.com/lucasb-eyer/go-colorful"

// Theme provides a set of styles for consistent dashboard appearance.
type Theme struct {
	Base    Style // default text style
	Muted   Style // de-emphasized text
	Accent  Style // highlighted/important text
	Title   Style // panel and header titles
	Success Style // healthy/ok values
	Warning Style // degraded values
	Error   Style // error messages
	Border  Style // border/divider style
}

// Pre-defined themes

// ThemeDark is a dark theme with light text on dark background.
var ThemeDark = Theme{
	Base:    Style{FG: White},
	Muted:   Style{FG: BrightBlack},
	Accent:  Style{FG: BrightCyan},
	Title:   Style{FG: BrightWhite, Attr: AttrBold},
	Success: Style{FG: BrightGreen},
	Warning: Style{FG: BrightYellow},
	Error:   Style{FG: BrightRed},
	Border:  Style{FG: BrightBlack},
}

// ThemeLight is a light theme with dark text on light background.
var ThemeLight = Theme{
	Base:    Style{FG: Black},
	Muted:   Style{FG: BrightBlack},
	Accent:  Style{FG: Blue},
	Title:   Style{FG: Black, Attr: AttrBold},
	Success: Style{FG: Green},
	Warning: Style{FG: Yellow},
	Error:   Style{FG: Red},
	Border:  Style{FG: White},
}

// ThemeMonochrome is a minimal theme using only attributes.
var ThemeMonochrome = Theme{
	Base:    Style{},
	Muted:   Style{Attr: AttrDim},
	Accent:  Style{Attr: AttrBold},
	Title:   Style{Attr: AttrBold | AttrUnderline},
	Success: Style{},
	Warning: Style{Attr: AttrBold},
	Error:   Style{Attr: AttrBold | AttrUnderline},
	Border:  Style{Attr: AttrDim},
}

// basicRGB maps the 16 basic colors to their conventional xterm RGB values,
// so gradients can start or end on a named color.
var basicRGB = [16][3]uint8{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

func toColorful(c Color) colorful.Color {
	switch c.Mode {
	case ColorRGB:
		return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	case Color16:
		rgb := basicRGB[c.Index&0x0f]
		return colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
	}
	// 256-palette and default colors gradient from mid gray.
	return colorful.Color{R: 0.5, G: 0.5, B: 0.5}
}

func fromColorful(c colorful.Color) Color {
	r, g, b := c.Clamped().RGB255()
	return RGB(r, g, b)
}

// Gradient returns steps colors blended perceptually from one color to
// another. Steps below 2 return the endpoints.
func Gradient(from, to Color, steps int) []Color {
	if steps < 2 {
		return []Color{fromColorful(toColorful(from)), fromColorful(toColorful(to))}
	}
	a, b := toColorful(from), toColorful(to)
	out := make([]Color, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		out[i] = fromColorful(a.BlendHcl(b, t))
	}
	return out
}

// HeatColor maps t in [0,1] onto a cold-to-hot ramp, for load and latency
// readouts.
func HeatColor(t float64) Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	cold := colorful.Color{R: 0.15, G: 0.45, B: 0.95}
	warm := colorful.Color{R: 0.95, G: 0.75, B: 0.1}
	hot := colorful.Color{R: 0.95, G: 0.15, B: 0.1}
	if t < 0.5 {
		return fromColorful(cold.BlendHcl(warm, t*2))
	}
	return fromColorful(warm.BlendHcl(hot, (t-0.5)*2))
}
