package embed

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/webp"
)

// Dimensions of an image in pixels. Zero means unknown.
type Dimensions struct {
	Width  int
	Height int
}

// sniffLen is the header size filetype needs to match every format it knows.
const sniffLen = 261

// maxSVGSize bounds how much of an SVG file is read to find its view box.
const maxSVGSize = 4 << 20

// ProbeImage reads the dimensions of the image at path. Any failure yields
// zero dimensions.
func ProbeImage(path string) Dimensions {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, head)
	head = head[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Dimensions{}
	}

	if filetype.IsImage(head) {
		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			return Dimensions{}
		}
		return Dimensions{Width: cfg.Width, Height: cfg.Height}
	}

	if strings.EqualFold(Extension(path), "svg") || bytes.Contains(head, []byte("<svg")) {
		return probeSVG(io.LimitReader(f, maxSVGSize))
	}
	return Dimensions{}
}

func probeSVG(r io.Reader) Dimensions {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return Dimensions{}
	}
	return Dimensions{
		Width:  int(math.Ceil(icon.ViewBox.W)),
		Height: int(math.Ceil(icon.ViewBox.H)),
	}
}
