package replay

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
)

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func encodePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// ReadLabels decodes an 8-bit grayscale PNG into a label buffer.
func ReadLabels(path string, width, height int) ([]uint8, error) {
	img, err := decodePNG(path)
	if err != nil {
		return nil, err
	}
	if err := checkSize(img, width, height); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pix := make([]uint8, width*height)
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < height; y++ {
			copy(pix[y*width:(y+1)*width], g.Pix[y*g.Stride:y*g.Stride+width])
		}
		return pix, nil
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return pix, nil
}

// ReadDepth decodes a 16-bit grayscale PNG into a depth buffer.
func ReadDepth(path string, width, height int) ([]uint16, error) {
	img, err := decodePNG(path)
	if err != nil {
		return nil, err
	}
	if err := checkSize(img, width, height); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, ok := img.(*image.Gray16)
	if !ok {
		return nil, fmt.Errorf("%s: depth must be 16-bit grayscale, got %T", path, img)
	}
	pix := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < width; x++ {
			pix[y*width+x] = uint16(row[2*x])<<8 | uint16(row[2*x+1])
		}
	}
	return pix, nil
}

// WriteLabels encodes a label image as an 8-bit grayscale PNG.
func WriteLabels(path string, labels l1frames.LabelImage) error {
	g := &image.Gray{Pix: labels.Pix, Stride: labels.Width, Rect: labels.Bounds()}
	return encodePNG(path, g)
}

// WriteDepth encodes a depth image as a 16-bit grayscale PNG.
func WriteDepth(path string, depth l1frames.DepthImage) error {
	g := image.NewGray16(image.Rect(0, 0, depth.Width, depth.Height))
	for i, v := range depth.Pix {
		g.Pix[2*i] = uint8(v >> 8)
		g.Pix[2*i+1] = uint8(v)
	}
	return encodePNG(path, g)
}

func checkSize(img image.Image, width, height int) error {
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("image is %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height)
	}
	return nil
}
