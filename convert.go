package iffpicture

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/ioutil"
	"os"

	"github.com/bodgit/iffpicture/picture"
	"github.com/ericpauley/go-quantize/quantize"
)

const maxPaletteColors = 256

// Convert decodes the IFF picture at src and writes it to dst as a
// PNG. Indexed sources keep their original palette; truecolor sources
// are written as RGB(A) unless paletted is set, in which case they are
// median-cut quantized down to 256 colors first.
func (m *IFFPicture) Convert(src, dst string, paletted bool) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return err
	}

	p, im, err := picture.DecodeBytes(data)
	if err != nil {
		return err
	}

	prof := p.Profile()
	m.logger.Printf("Decoded \"%s\": %s %dx%d, %d planes, %s\n",
		src, p.Form, im.Width, im.Height, p.Header.NPlanes, prof.ColorType)

	cfg, err := p.EncodingConfig()
	if err != nil {
		return err
	}

	out := outputImage(im, cfg, paletted)

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, out)
}

// outputImage picks the most faithful stdlib image representation of a
// decode: paletted where the source palette survives, otherwise
// truecolor, optionally quantized.
func outputImage(im *picture.Image, cfg *picture.EncodingConfig, paletted bool) image.Image {
	nrgba := im.NRGBA()
	b := nrgba.Bounds()

	// Gray sources already carry equal channels, so the model
	// conversion below is lossless. A mask plane still needs the alpha
	// channel and falls through to NRGBA.
	if cfg.Grayscale && !cfg.HasAlpha {
		gm := image.NewGray(b)
		draw.Draw(gm, b, nrgba, b.Min, draw.Src)
		return gm
	}

	if cfg.Paletted && len(cfg.Palette) <= maxPaletteColors &&
		(!cfg.HasAlpha || cfg.TransparentIndex >= 0) {
		// The decode resolved every pixel through this palette, so the
		// nearest-color draw below is an exact inverse lookup.
		pal := cfg.Palette
		if cfg.TransparentIndex >= 0 {
			pal = append(color.Palette{}, cfg.Palette...)
			r, g, bl, _ := pal[cfg.TransparentIndex].RGBA()
			pal[cfg.TransparentIndex] = color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 0}
		}
		pm := image.NewPaletted(b, pal)
		draw.Draw(pm, b, nrgba, b.Min, draw.Src)
		return pm
	}

	if paletted {
		q := quantize.MedianCutQuantizer{}
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, maxPaletteColors), nrgba))
		draw.Draw(pm, b, nrgba, b.Min, draw.Src)
		return pm
	}

	return nrgba
}
