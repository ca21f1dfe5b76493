// Package gif renders the turns of a playout as an animated GIF.
package gif

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"strings"

	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"

	"github.com/tcgsim/duel"
	"github.com/tcgsim/duel/game"
)

var regular *truetype.Font

const (
	dpi             = 144.0
	fontsize        = 12.0
	lineheight      = 1.2
	dummyLongString = `Step 1000: Second plays 1000 (score loss(-1000000))`

	// delays are in 100ths of a second
	turnDelay  = 50
	finalDelay = 300
)

func init() {
	var err error
	if regular, err = truetype.Parse(gomono.TTF); err != nil {
		panic(err)
	}
}

var globPalette = color.Palette{
	color.Gray{0},
	color.Gray{253},
}

var _ duel.OutputEncoder = &Encoder{}

// Encoder draws one frame per turn: the state as printed with %v, followed by a caption.
// Flush writes all frames to the Writer.
type Encoder struct {
	H, W int
	Name string
	font.Drawer

	out *gif.GIF
	io.Writer
	face font.Face

	maxH, maxW  int // maxHeight and maxWidth
	padH, padW  int // padding so everything don't start at the topleft
	initialized bool
}

// NewGifEncoder with height and width
func NewGifEncoder(w io.Writer, name string, h, wd int) *Encoder {
	return &Encoder{
		H:      -1,
		W:      -1,
		Name:   name,
		Writer: w,
		maxH:   h,
		maxW:   wd,
		padH:   10,
		padW:   10,

		Drawer: font.Drawer{
			Src: image.Black,
		},
		out: &gif.GIF{LoopCount: -1},
	}
}

// Frames returns the number of frames encoded so far.
func (enc *Encoder) Frames() int { return len(enc.out.Image) }

// Encode draws a turn.
func (enc *Encoder) Encode(t duel.Turn) error {
	if t.State == nil {
		return errors.Errorf("turn %d has no state", t.Step)
	}
	lines := strings.Split(strings.TrimRight(fmt.Sprintf("%v", t.State), "\n"), "\n")
	lines = append(lines, enc.Name, fmt.Sprintf("Step %d: %v plays %d (score %v)", t.Step+1, t.Player, t.Action, t.Score))

	delay := turnDelay
	if ended, winner := game.Ended(t.State); ended {
		delay = finalDelay
		if winner == game.None {
			lines = append(lines, "Draw")
		} else {
			lines = append(lines, fmt.Sprintf("Winner: %v", winner))
		}
	}
	if !enc.initialized {
		enc.layout(lines)
	}
	enc.out.Image = append(enc.out.Image, enc.frame(lines))
	enc.out.Delay = append(enc.out.Delay, delay)
	return nil
}

// layout fixes the frame size from the first turn. Every frame of an animation shares it.
func (enc *Encoder) layout(lines []string) {
	enc.face = truetype.NewFace(regular, &truetype.Options{
		Size:    fontsize,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	enc.Drawer.Src = image.Black
	enc.Drawer.Face = enc.face

	widest := font.MeasureString(enc.Face, dummyLongString).Ceil()
	for _, line := range lines {
		widest = maxInt(widest, font.MeasureString(enc.Face, line).Ceil())
	}
	// one spare line for the result, which only the last turn carries
	rows := len(lines) + 1

	enc.W = minInt(widest+2*enc.padW, enc.maxW)
	enc.H = minInt(rows*lineHeight()+2*enc.padH, enc.maxH)
	if enc.W == enc.maxW {
		enc.padW = 0
	}
	if enc.H == enc.maxH {
		enc.padH = 0
	}
	enc.initialized = true
}

func (enc *Encoder) frame(lines []string) *image.Paletted {
	im := image.NewPaletted(image.Rect(0, 0, enc.W, enc.H), globPalette)
	draw.Draw(im, im.Bounds(), image.White, image.Point{}, draw.Src)
	enc.Dst = im

	dy := lineHeight()
	for i, line := range lines {
		enc.Dot = fixed.P(enc.padW, enc.padH+(i+1)*dy)
		enc.DrawString(line)
	}
	return im
}

// Flush writes the gif into the writer
func (enc *Encoder) Flush() error {
	if len(enc.out.Image) == 0 {
		return errors.New("no frames to write")
	}
	return errors.WithStack(gif.EncodeAll(enc.Writer, enc.out))
}

func lineHeight() int { return int(math.Ceil(fontsize * lineheight * dpi / 72)) }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
