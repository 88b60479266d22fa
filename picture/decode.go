package picture

import (
	"encoding/binary"
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"github.com/bodgit/iffpicture/iff"
)

// Image is the decoded picture: a row-major, byte-packed RGB or RGBA
// buffer. Ownership transfers to the caller on a successful decode;
// the engine keeps no reference to it.
type Image struct {
	Width, Height int
	HasAlpha      bool
	// Pix holds 3 bytes per pixel, or 4 when HasAlpha is set.
	Pix []byte
}

// bytesPerPixel returns the pixel stride of the buffer.
func (im *Image) bytesPerPixel() int {
	if im.HasAlpha {
		return 4
	}
	return 3
}

// NRGBA copies the buffer into a stdlib image for further processing
// or encoding.
func (im *Image) NRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	bpp := im.bytesPerPixel()
	for i := 0; i < im.Width*im.Height; i++ {
		src := im.Pix[i*bpp:]
		out.Pix[i*4] = src[0]
		out.Pix[i*4+1] = src[1]
		out.Pix[i*4+2] = src[2]
		if im.HasAlpha {
			out.Pix[i*4+3] = src[3]
		} else {
			out.Pix[i*4+3] = 0xff
		}
	}
	return out
}

// decoder carries the per-call decode state: the strategy picked by
// Analyze and the output buffer under construction. It lives for one
// Decode call only, so concurrent decodes of separate Pictures do not
// share state.
type decoder struct {
	p    *Picture
	prof *FormatProfile
	out  *Image
}

// setPixel writes one resolved pixel.
func (d *decoder) setPixel(x, y int, r, g, b, a uint8) {
	bpp := d.out.bytesPerPixel()
	off := (y*d.out.Width + x) * bpp
	d.out.Pix[off] = r
	d.out.Pix[off+1] = g
	d.out.Pix[off+2] = b
	if d.out.HasAlpha {
		d.out.Pix[off+3] = a
	}
}

// Decode runs the strategy chosen by the last Analyze call and returns
// the decoded image. Calling Decode before Analyze is a contract
// violation, not a data error. On any failure no partial image is
// returned.
func (p *Picture) Decode() (*Image, error) {
	if !p.analyzed {
		return nil, invalidState("Decode called before Analyze")
	}

	w, h := int(p.Header.Width), int(p.Header.Height)
	if w == 0 || h == 0 {
		return nil, badFile("zero image dimension %dx%d", w, h)
	}

	d := &decoder{
		p:    p,
		prof: p.profile,
		out: &Image{
			Width:    w,
			Height:   h,
			HasAlpha: p.profile.HasAlpha,
		},
	}
	d.out.Pix = make([]byte, w*h*d.out.bytesPerPixel())

	var err error
	switch p.Form {
	case iff.FormILBM:
		err = d.decodeILBM()
	case iff.FormPBM:
		err = d.decodePBM()
	case iff.FormACBM:
		err = d.decodeACBM()
	case iff.FormRGBN:
		err = d.decodeRGBN()
	case iff.FormRGB8:
		err = d.decodeRGB8()
	case iff.FormDEEP:
		err = d.decodeDEEP()
	case iff.FormFAXX:
		err = d.decodeFAXX()
	default:
		err = unsupported("FORM type %s", p.Form)
	}
	if err != nil {
		return nil, err
	}
	return d.out, nil
}

// resolveIndexedRow maps one row of reconstructed samples onto the
// output buffer using the indexed, HAM or EHB path. alpha is the mask
// plane row, or nil.
func (d *decoder) resolveIndexedRow(y int, indices []uint8, alpha []uint8, ham *hamState) error {
	h := &d.p.Header
	transparent := h.Masking == MaskTransparentColor

	if ham != nil {
		if err := ham.startRow(indices[0]); err != nil {
			return err
		}
	}

	for x, v := range indices {
		var r, g, b uint8
		var err error
		switch {
		case ham != nil:
			r, g, b, err = ham.pixel(v)
		case d.prof.IsEHB:
			r, g, b, err = lookupEHB(d.p.ColorMap, int(v))
		case d.p.ColorMap == nil && h.NPlanes == 1:
			// Monochrome without a palette: set bits are white.
			v8 := v * 0xff
			r, g, b = v8, v8, v8
		default:
			r, g, b, err = lookupIndexed(d.p.ColorMap, int(v))
		}
		if err != nil {
			return badFile("row %d: %v", y, err)
		}

		a := uint8(0xff)
		switch {
		case alpha != nil:
			a = alpha[x]
		case transparent:
			if uint16(v) == h.TransparentColor {
				a = 0
			}
		}
		d.setPixel(x, y, r, g, b, a)
	}
	return nil
}

// decodeILBM decodes interleaved bitplanes: each row stores its
// nPlanes plane rows consecutively, followed by a mask plane row when
// masking says so.
func (d *decoder) decodeILBM() error {
	h := &d.p.Header
	w := int(h.Width)
	rb := rowBytes(h.Width)

	br := newBodyReader(d.p.body, h.Compression)
	planeBuf := make([]byte, rb)
	indices := make([]uint8, w)

	var alpha []uint8
	if h.Masking == MaskHasMask {
		alpha = make([]uint8, w)
	}

	var ham *hamState
	if d.prof.IsHAM {
		ham = newHAMState(d.p.ColorMap, h.NPlanes)
	}

	for y := 0; y < int(h.Height); y++ {
		if err := interleavedRow(br, int(h.NPlanes), planeBuf, indices); err != nil {
			return badFile("row %d: %v", y, err)
		}

		if alpha != nil {
			if err := br.row(planeBuf); err != nil {
				return badFile("row %d mask plane: %v", y, err)
			}
			for x := 0; x < w; x++ {
				alpha[x] = planeBit(planeBuf, x) * 0xff
			}
		}

		if err := d.resolveIndexedRow(y, indices, alpha, ham); err != nil {
			return err
		}
	}
	return nil
}

// decodePBM decodes the packed variant: one byte per pixel is already
// the palette index.
func (d *decoder) decodePBM() error {
	h := &d.p.Header
	w := int(h.Width)

	br := newBodyReader(d.p.body, h.Compression)
	indices := make([]uint8, w)

	var ham *hamState
	if d.prof.IsHAM {
		ham = newHAMState(d.p.ColorMap, h.NPlanes)
	}

	for y := 0; y < int(h.Height); y++ {
		if err := br.row(indices); err != nil {
			return badFile("row %d: %v", y, err)
		}
		if err := d.resolveIndexedRow(y, indices, nil, ham); err != nil {
			return err
		}
	}
	return nil
}

// decodeACBM decodes contiguous bitplanes from the ABIT chunk: each
// plane is one whole-image bitmap, with the mask plane last. ACBM
// bodies are never compressed.
func (d *decoder) decodeACBM() error {
	h := &d.p.Header
	if h.Compression != CompressNone {
		return unsupported("compressed ACBM")
	}

	w, ht := int(h.Width), int(h.Height)
	nPlanes := int(h.NPlanes)

	indices, err := contiguousPlanes(d.p.body, w, ht, nPlanes)
	if err != nil {
		return err
	}

	var alphaPlane []byte
	if h.Masking == MaskHasMask {
		rb := rowBytes(h.Width)
		planeSize := rb * ht
		if len(d.p.body) < planeSize*(nPlanes+1) {
			return badFile("ABIT missing mask plane: need %d bytes, have %d", planeSize*(nPlanes+1), len(d.p.body))
		}
		alphaPlane = d.p.body[planeSize*nPlanes:]
	}

	var ham *hamState
	if d.prof.IsHAM {
		ham = newHAMState(d.p.ColorMap, h.NPlanes)
	}

	alpha := make([]uint8, w)
	rb := rowBytes(h.Width)
	for y := 0; y < ht; y++ {
		var rowAlpha []uint8
		if alphaPlane != nil {
			row := alphaPlane[y*rb:]
			for x := 0; x < w; x++ {
				alpha[x] = planeBit(row, x) * 0xff
			}
			rowAlpha = alpha
		}
		if err := d.resolveIndexedRow(y, indices[y*w:(y+1)*w], rowAlpha, ham); err != nil {
			return err
		}
	}
	return nil
}

// decodeRGBN decodes 12-bit direct color: one big-endian 16-bit word
// per pixel holding 4-bit red, green and blue fields and a 4-bit
// genlock/reserved field.
func (d *decoder) decodeRGBN() error {
	h := &d.p.Header
	w := int(h.Width)

	br := newBodyReader(d.p.body, h.Compression)
	row := make([]byte, w*2)

	for y := 0; y < int(h.Height); y++ {
		if err := br.row(row); err != nil {
			return badFile("row %d: %v", y, err)
		}
		for x := 0; x < w; x++ {
			word := binary.BigEndian.Uint16(row[x*2:])
			r := uint8(word>>12) * 17
			g := uint8(word>>8&0xf) * 17
			b := uint8(word>>4&0xf) * 17
			d.setPixel(x, y, r, g, b, 0xff)
		}
	}
	return nil
}

// decodeRGB8 decodes 24-bit direct color: byte-aligned RGB triplets.
func (d *decoder) decodeRGB8() error {
	h := &d.p.Header
	w := int(h.Width)

	br := newBodyReader(d.p.body, h.Compression)
	row := make([]byte, w*3)

	for y := 0; y < int(h.Height); y++ {
		if err := br.row(row); err != nil {
			return badFile("row %d: %v", y, err)
		}
		for x := 0; x < w; x++ {
			d.setPixel(x, y, row[x*3], row[x*3+1], row[x*3+2], 0xff)
		}
	}
	return nil
}

// decodeDEEP decodes deep direct color: each row stores the red
// component's planes, then green's, then blue's, each plane row padded
// like a bitplane.
func (d *decoder) decodeDEEP() error {
	h := &d.p.Header
	w := int(h.Width)
	rb := rowBytes(h.Width)
	perChannel := int(h.NPlanes) / 3

	br := newBodyReader(d.p.body, h.Compression)
	planeBuf := make([]byte, rb)
	channels := [3][]uint8{
		make([]uint8, w),
		make([]uint8, w),
		make([]uint8, w),
	}

	for y := 0; y < int(h.Height); y++ {
		for c := 0; c < 3; c++ {
			ch := channels[c]
			for i := range ch {
				ch[i] = 0
			}
			for plane := 0; plane < perChannel; plane++ {
				if err := br.row(planeBuf); err != nil {
					return badFile("row %d: %v", y, err)
				}
				spreadPlaneRow(planeBuf, uint(plane), ch)
			}
		}
		for x := 0; x < w; x++ {
			d.setPixel(x, y, channels[0][x], channels[1][x], channels[2][x], 0xff)
		}
	}
	return nil
}

// faxCompression returns the compression method of a FAXX picture,
// preferring the FXHD header. Without one the bitmap header stands in:
// a plain header carries a Modified Huffman stream, a compressed one
// MMR.
func (p *Picture) faxCompression() uint8 {
	if p.FaxHeader != nil {
		return p.FaxHeader.Compression
	}
	if p.Header.Compression == CompressNone {
		return FaxCompressMH
	}
	return FaxCompressMMR
}

// decodeFAXX decodes a facsimile body line by line. Set bits are
// white.
func (d *decoder) decodeFAXX() error {
	h := &d.p.Header
	w := int(h.Width)

	var (
		rows [][]byte
		err  error
	)
	switch d.p.faxCompression() {
	case FaxCompressNone:
		rows, err = faxRawRows(d.p.body, w, int(h.Height))
	case FaxCompressMH:
		rows, err = decodeFax(d.p.body, w, int(h.Height), faxMH)
	default:
		rows, err = decodeFax(d.p.body, w, int(h.Height), faxMMR)
	}
	if err != nil {
		return err
	}

	for y, row := range rows {
		for x := 0; x < w; x++ {
			v := planeBit(row, x) * 0xff
			d.setPixel(x, y, v, v, v, 0xff)
		}
	}
	return nil
}

func init() {
	for _, form := range []string{"ILBM", "PBM ", "ACBM", "RGBN", "RGB8", "DEEP", "FAXX"} {
		image.RegisterFormat("iff", "FORM????"+form, DecodeImage, DecodeConfig)
	}
}

// readAll reads all of r, using a single exact-sized allocation when
// the reader exposes its length.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return ioutil.ReadAll(r)
}

// DecodeBytes parses, analyzes and decodes an IFF picture held in
// memory, returning the picture (for its header, profile and
// metadata) together with the decoded image.
func DecodeBytes(data []byte) (*Picture, *Image, error) {
	f, err := iff.Parse(data)
	if err != nil {
		return nil, nil, badFile("%v", err)
	}
	p, err := New(f)
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.Analyze(); err != nil {
		return nil, nil, err
	}
	im, err := p.Decode()
	if err != nil {
		return nil, nil, err
	}
	return p, im, nil
}

// DecodeImage reads an IFF picture from r and returns it as an
// image.Image.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, err
	}
	_, im, err := DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	return im.NRGBA(), nil
}

// DecodeConfig returns the color model and dimensions of an IFF
// picture without decoding its body.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, err
	}
	f, err := iff.Parse(data)
	if err != nil {
		return image.Config{}, err
	}
	p, err := New(f)
	if err != nil {
		return image.Config{}, err
	}
	if _, err := p.Analyze(); err != nil {
		return image.Config{}, err
	}

	var cm color.Model = color.NRGBAModel
	if cfg, err := p.EncodingConfig(); err == nil && cfg.Paletted {
		cm = cfg.Palette
	}

	return image.Config{
		ColorModel: cm,
		Width:      int(p.Header.Width),
		Height:     int(p.Header.Height),
	}, nil
}
