// Package annotate draws face boxes and labels onto images.
package annotate

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode"

	"github.com/andresmejia3/facepipe/internal/config"
	"github.com/andresmejia3/facepipe/internal/types"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Style holds the colors and font used for every annotation.
type Style struct {
	BoxColor  color.RGBA
	TextColor color.RGBA
	Face      font.Face
}

// NewStyle parses the configured color names into a Style using the 7x13 bitmap font.
func NewStyle(boxColor, textColor string) (Style, error) {
	box, err := config.ParseColor(boxColor)
	if err != nil {
		return Style{}, fmt.Errorf("box color: %w", err)
	}
	text, err := config.ParseColor(textColor)
	if err != nil {
		return Style{}, fmt.Errorf("text color: %w", err)
	}
	return Style{BoxColor: box, TextColor: text, Face: basicfont.Face7x13}, nil
}

// FoldLabel removes diacritics ("Jiří" -> "Jiri") and replaces any remaining
// non-ASCII rune with '?', since the bitmap font only covers ASCII.
func FoldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return '?'
		}
		return r
	}, folded)
}

// TextBounds returns the rectangle covered by label when its top-left corner is at pt.
func (s Style) TextBounds(label string, pt image.Point) image.Rectangle {
	m := s.Face.Metrics()
	w := font.MeasureString(s.Face, FoldLabel(label)).Ceil()
	h := m.Ascent.Ceil() + m.Descent.Ceil()
	return image.Rect(pt.X, pt.Y, pt.X+w, pt.Y+h)
}

// Draw outlines box and writes label on a filled background anchored at the
// box's bottom-left corner. Everything is clipped to the image bounds.
func (s Style) Draw(img *image.RGBA, box types.Box, label string) {
	outline(img, box.Rect(), s.BoxColor)

	label = FoldLabel(label)
	textRect := s.TextBounds(label, image.Pt(box.Left, box.Bottom))
	draw.Draw(img, textRect.Intersect(img.Bounds()), image.NewUniform(s.BoxColor), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(s.TextColor),
		Face: s.Face,
		Dot:  fixed.P(textRect.Min.X, textRect.Min.Y+s.Face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(label)
}

// outline draws a one pixel rectangle border; both corners are inclusive.
func outline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	b := img.Bounds()
	hline := func(y int) {
		if y < b.Min.Y || y >= b.Max.Y {
			return
		}
		for x := max(r.Min.X, b.Min.X); x <= min(r.Max.X, b.Max.X-1); x++ {
			img.SetRGBA(x, y, c)
		}
	}
	vline := func(x int) {
		if x < b.Min.X || x >= b.Max.X {
			return
		}
		for y := max(r.Min.Y, b.Min.Y); y <= min(r.Max.Y, b.Max.Y-1); y++ {
			img.SetRGBA(x, y, c)
		}
	}
	hline(r.Min.Y)
	hline(r.Max.Y)
	vline(r.Min.X)
	vline(r.Max.X)
}
