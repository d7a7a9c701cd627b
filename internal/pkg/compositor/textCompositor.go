package compositor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/gradphoto/internal/entity"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	// extra decoders for imaging.Decode
	_ "golang.org/x/image/webp"
)

const (
	minFontSize      = 24
	fontWidthDivisor = 28
	lineSpacing      = 1.2
	minBottomMargin  = 20
	bottomMarginRate = 0.05

	shadowOffset = 2
	// canvas blur radius 6 maps to a gaussian sigma of half that
	shadowSigma = 3.0
	dpi         = 72
)

var (
	fillColor   = color.White
	shadowColor = color.NRGBA{R: 0, G: 0, B: 0, A: 204}
)

type TextCompositor interface {
	Compose(img []byte, caption string) ([]byte, error)
}

type textCompositor struct {
	font *opentype.Font
}

func NewTextCompositor() (TextCompositor, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse caption font: %w", err)
	}
	return &textCompositor{font: f}, nil
}

// FontSize scales with image width and never drops below minFontSize.
func FontSize(width int) int {
	return max(minFontSize, int(math.Round(float64(width)/fontWidthDivisor)))
}

func BottomMargin(height int) int {
	return max(minBottomMargin, int(math.Round(float64(height)*bottomMarginRate)))
}

func LineHeight(fontSize int) float64 {
	return float64(fontSize) * lineSpacing
}

// LineBottoms returns the bottom Y of each of n lines. The last line sits on
// the bottom margin and earlier lines stack upward.
func LineBottoms(height, fontSize, n int) []float64 {
	bottoms := make([]float64, n)
	base := float64(height - BottomMargin(height))
	lh := LineHeight(fontSize)
	for i := n - 1; i >= 0; i-- {
		bottoms[i] = base - float64(n-1-i)*lh
	}
	return bottoms
}

type placement struct {
	text string
	dot  fixed.Point26_6
}

// Compose draws caption onto img and returns the result as PNG. A caption
// that is empty after trimming leaves img untouched.
func (c *textCompositor) Compose(img []byte, caption string) ([]byte, error) {
	if strings.TrimSpace(caption) == "" {
		return img, nil
	}

	src, err := imaging.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDecodeFailure, err)
	}

	out, err := c.draw(src, caption)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encode png: %w", entity.ErrIOFailure, err)
	}
	return buf.Bytes(), nil
}

func (c *textCompositor) newFace(size int) (font.Face, error) {
	return opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
}

func (c *textCompositor) draw(src image.Image, caption string) (*image.NRGBA, error) {
	canvas := imaging.Clone(src)
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()

	face, err := c.newFace(FontSize(w))
	if err != nil {
		return nil, fmt.Errorf("failed to build font face: %w", err)
	}
	defer face.Close()

	lines := layout(face, w, h, FontSize(w), strings.Split(caption, "\n"))

	shadow := image.NewNRGBA(canvas.Bounds())
	d := &font.Drawer{Dst: shadow, Src: image.NewUniform(shadowColor), Face: face}
	for _, l := range lines {
		d.Dot = l.dot.Add(fixed.P(shadowOffset, shadowOffset))
		d.DrawString(l.text)
	}
	canvas = imaging.Overlay(canvas, imaging.Blur(shadow, shadowSigma), image.Pt(0, 0), 1.0)

	d = &font.Drawer{Dst: canvas, Src: image.NewUniform(fillColor), Face: face}
	for _, l := range lines {
		d.Dot = l.dot
		d.DrawString(l.text)
	}
	return canvas, nil
}

// layout centers each line horizontally and bottom-aligns it on its line bottom.
func layout(face font.Face, width, height, fontSize int, lines []string) []placement {
	bottoms := LineBottoms(height, fontSize, len(lines))
	descent := face.Metrics().Descent
	center := fixed.I(width) / 2

	out := make([]placement, len(lines))
	for i, text := range lines {
		advance := font.MeasureString(face, text)
		out[i] = placement{
			text: text,
			dot: fixed.Point26_6{
				X: center - advance/2,
				Y: fixed.Int26_6(math.Round(bottoms[i]*64)) - descent,
			},
		}
	}
	return out
}
