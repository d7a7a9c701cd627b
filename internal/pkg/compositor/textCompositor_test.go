package compositor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/gradphoto/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var background = color.RGBA{R: 10, G: 40, B: 120, A: 255}

// TestFontSize проверяет масштабирование шрифта и нижнюю границу
func TestFontSize(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{width: 1, want: 24},
		{width: 512, want: 24},
		{width: 700, want: 25},
		{width: 1024, want: 37},
		{width: 2048, want: 73},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FontSize(tt.width), "width %d", tt.width)
	}

	prev := FontSize(0)
	for w := 1; w <= 5000; w++ {
		size := FontSize(w)
		require.GreaterOrEqual(t, size, 24)
		require.GreaterOrEqual(t, size, prev, "font size decreased at width %d", w)
		prev = size
	}
}

func TestBottomMargin(t *testing.T) {
	assert.Equal(t, 20, BottomMargin(100))
	assert.Equal(t, 26, BottomMargin(512))
	assert.Equal(t, 51, BottomMargin(1024))
}

// TestLineBottoms проверяет, что последняя строка ближе всего к нижнему краю
func TestLineBottoms(t *testing.T) {
	for n := 1; n <= 6; n++ {
		bottoms := LineBottoms(512, 24, n)
		require.Len(t, bottoms, n)

		assert.InDelta(t, 486.0, bottoms[n-1], 1e-9)
		for i := 1; i < n; i++ {
			assert.InDelta(t, 28.8, bottoms[i]-bottoms[i-1], 1e-9)
		}
	}
}

func TestLayout(t *testing.T) {
	c := newTestCompositor(t)
	face, err := c.newFace(24)
	require.NoError(t, err)
	defer face.Close()

	lines := layout(face, 512, 512, 24, []string{"Line1", "Line2"})
	require.Len(t, lines, 2)

	assert.Equal(t, "Line2", lines[1].text)
	assert.Greater(t, lines[1].dot.Y, lines[0].dot.Y)
	for _, l := range lines {
		assert.Less(t, l.dot.X.Round(), 256)
		assert.Greater(t, l.dot.X.Round(), 0)
	}
}

// TestComposeKeepsDimensions проверяет, что наложение текста не меняет размер
func TestComposeKeepsDimensions(t *testing.T) {
	c := newTestCompositor(t)

	tests := []struct {
		name    string
		width   int
		height  int
		caption string
	}{
		{name: "small image", width: 100, height: 100, caption: "TEST"},
		{name: "landscape image", width: 800, height: 600, caption: "Formatura\n2025"},
		{name: "portrait image", width: 600, height: 800, caption: "A\nB\nC"},
		{name: "single pixel", width: 1, height: 1, caption: "X"},
		{name: "whitespace line kept", width: 300, height: 300, caption: "Top\n   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := encodePNG(t, tt.width, tt.height)

			out, err := c.Compose(in, tt.caption)
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.width, img.Bounds().Dx())
			assert.Equal(t, tt.height, img.Bounds().Dy())
		})
	}
}

func TestComposeEmptyCaptionIsNoop(t *testing.T) {
	c := newTestCompositor(t)
	in := encodePNG(t, 64, 64)

	for _, caption := range []string{"", "   ", "\n\t\n"} {
		out, err := c.Compose(in, caption)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}

	// not even decoded
	out, err := c.Compose([]byte("not an image"), "")
	require.NoError(t, err)
	assert.Equal(t, []byte("not an image"), out)
}

func TestComposeDecodeFailure(t *testing.T) {
	c := newTestCompositor(t)

	_, err := c.Compose([]byte("not an image"), "Line1")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrDecodeFailure)
}

// TestComposeTwoLines проверяет сценарий 512x512 с подписью из двух строк
func TestComposeTwoLines(t *testing.T) {
	c := newTestCompositor(t)
	in := encodePNG(t, 512, 512)

	out, err := c.Compose(in, "Line1\nLine2")
	require.NoError(t, err)

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 512, img.Bounds().Dx())
	require.Equal(t, 512, img.Bounds().Dy())

	// Line2 band ends at 486, Line1 band ends 28.8px higher
	assert.Positive(t, whitePixels(img, 462, 487))
	assert.Positive(t, whitePixels(img, 433, 458))
	assert.Zero(t, whitePixels(img, 487, 512))
	assert.Zero(t, whitePixels(img, 0, 400))

	minX, maxX := whiteColumns(img)
	assert.InDelta(t, 256, (minX+maxX)/2, 10)
}

func newTestCompositor(t *testing.T) *textCompositor {
	t.Helper()
	c, err := NewTextCompositor()
	require.NoError(t, err)
	return c.(*textCompositor)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillImageWithColor(img, background)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fillImageWithColor заполняет изображение одним цветом
func fillImageWithColor(img *image.RGBA, c color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r>>8 >= 250 && g>>8 >= 250 && b>>8 >= 250
}

func whitePixels(img image.Image, fromY, toY int) int {
	n := 0
	for y := fromY; y < toY; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if isWhite(img.At(x, y)) {
				n++
			}
		}
	}
	return n
}

func whiteColumns(img image.Image) (int, int) {
	minX, maxX := img.Bounds().Dx(), 0
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if isWhite(img.At(x, y)) {
				minX = min(minX, x)
				maxX = max(maxX, x)
			}
		}
	}
	return minX, maxX
}
