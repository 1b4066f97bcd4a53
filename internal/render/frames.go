package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/blockpi/backend/internal/sim"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Frame image size in pixels.
const (
	FrameWidth  = 480
	FrameHeight = 240
)

var (
	block1Color = color.RGBA{0, 0, 255, 255}
	block2Color = color.RGBA{255, 0, 0, 255}
	wallColor   = color.RGBA{0, 0, 0, 255}
	floorColor  = color.RGBA{0, 0, 0, 77}
	textColor   = color.RGBA{20, 20, 20, 255}
)

// View maps world coordinates onto a frame.
type View struct {
	XMin, XMax   float64
	WallPosition float64
	BlockWidth   float64
	MassRatio    float64
}

// ViewFor sizes a view to cover everything the trajectory reaches.
func ViewFor(r sim.Result) View {
	return View{
		XMin:         -0.1,
		XMax:         sim.Extent(r.Trajectory) + 0.2,
		WallPosition: r.Params.WallPosition,
		BlockWidth:   r.Params.BlockWidth,
		MassRatio:    r.Params.M1 / r.Params.M2,
	}
}

func (v View) px(x float64) int {
	span := v.XMax - v.XMin
	if span <= 0 {
		return 0
	}
	return int((x - v.XMin) / span * FrameWidth)
}

func (v View) width(w float64) int {
	span := v.XMax - v.XMin
	if span <= 0 {
		return 1
	}
	n := int(w / span * FrameWidth)
	if n < 1 {
		n = 1
	}
	return n
}

// DrawFrame renders one frame: wall, floor line, both blocks and labels.
func DrawFrame(f sim.Frame, v View) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	floorY := int(FrameHeight * (1 - 0.35))
	blockTop := int(FrameHeight * (1 - 0.65))

	wallX := v.px(v.WallPosition)
	fill(img, image.Rect(wallX, 0, wallX+v.width(0.02), FrameHeight), wallColor)
	draw.Draw(img, image.Rect(0, floorY, FrameWidth, floorY+1), image.NewUniform(floorColor), image.Point{}, draw.Over)

	bw := v.width(v.BlockWidth)
	x1 := v.px(f.X1)
	x2 := v.px(f.X2)
	fill(img, image.Rect(x2, blockTop, x2+bw, floorY), block2Color)
	fill(img, image.Rect(x1, blockTop, x1+bw, floorY), block1Color)

	label(img, 12, 18, fmt.Sprintf("Mass Ratio: %.0f:1", v.MassRatio))
	label(img, 12, 34, fmt.Sprintf("Collisions: %d", f.Collisions))
	label(img, 12, 50, fmt.Sprintf("Time: %.2fs", f.Time))
	return img
}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func label(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Frames renders n evenly spaced frames of r as base64-encoded PNGs.
func Frames(r sim.Result, n int) ([]string, error) {
	v := ViewFor(r)
	samples := sim.SampleFrames(r, n)
	out := make([]string, 0, len(samples))

	var buf bytes.Buffer
	for i, f := range samples {
		buf.Reset()
		if err := png.Encode(&buf, DrawFrame(f, v)); err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", i, err)
		}
		out = append(out, base64.StdEncoding.EncodeToString(buf.Bytes()))
	}
	return out, nil
}
