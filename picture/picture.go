/*
Package picture decodes IFF-family raster images (ILBM, PBM, RGBN,
RGB8, DEEP, ACBM, FAXX) into linear RGB or RGBA pixel buffers.

The package consumes chunk payloads located by the iff package: the
BMHD bitmap header, the optional CMAP palette and CAMG viewport mode
chunks, and the BODY (or ABIT) image data. Decoding happens in three
stages: Analyze classifies the picture and picks a decode strategy,
then the plane reconstructor and compression codecs produce raw
per-pixel samples, and finally the color resolver maps those samples to
RGB using the palette, the HAM or Extra-Half-Brite state machines, or
the direct-color channel layouts.

The package registers itself with the standard library's image package
so that image.Decode can transparently read IFF pictures.
*/
package picture

import (
	"encoding/binary"

	"github.com/bodgit/iffpicture/iff"
)

// Masking values from the BMHD header.
const (
	MaskNone             = 0
	MaskHasMask          = 1
	MaskTransparentColor = 2
	MaskLasso            = 3
)

// Compression values from the BMHD header.
const (
	CompressNone     = 0
	CompressByteRun1 = 1
)

// CAMG viewport mode flags.
const (
	ViewModeLace           = 0x0004
	ViewModeExtraHalfBrite = 0x0080
	ViewModeHAM            = 0x0800
	ViewModeHires          = 0x8000
)

// bmhdSize is the fixed size of a BMHD chunk payload.
const bmhdSize = 20

// BitmapHeader is the parsed BMHD chunk. The on-disk layout is 20
// bytes, big-endian, fields in declaration order.
type BitmapHeader struct {
	Width, Height    uint16
	X, Y             int16
	NPlanes          uint8
	Masking          uint8
	Compression      uint8
	pad              uint8
	TransparentColor uint16
	XAspect, YAspect uint8
	PageWidth        int16
	PageHeight       int16
}

// parseBMHD decodes a BMHD payload. The payload may be longer than 20
// bytes; anything beyond the fixed layout is ignored.
func parseBMHD(data []byte) (BitmapHeader, error) {
	var h BitmapHeader
	if len(data) < bmhdSize {
		return h, badFile("BMHD chunk too small: %d bytes", len(data))
	}
	h.Width = binary.BigEndian.Uint16(data[0:2])
	h.Height = binary.BigEndian.Uint16(data[2:4])
	h.X = int16(binary.BigEndian.Uint16(data[4:6]))
	h.Y = int16(binary.BigEndian.Uint16(data[6:8]))
	h.NPlanes = data[8]
	h.Masking = data[9]
	h.Compression = data[10]
	h.pad = data[11]
	h.TransparentColor = binary.BigEndian.Uint16(data[12:14])
	h.XAspect = data[14]
	h.YAspect = data[15]
	h.PageWidth = int16(binary.BigEndian.Uint16(data[16:18]))
	h.PageHeight = int16(binary.BigEndian.Uint16(data[18:20]))
	return h, nil
}

// rowBytes is the byte width of one bitplane row: rows are padded to a
// whole number of 16-bit words.
func rowBytes(width uint16) int {
	return ((int(width) + 15) >> 4) << 1
}

// ColorMap is the parsed CMAP chunk: NumColors RGB triplets. When
// Is4Bit is set the stored channel values are in the 0-15 range and
// are scaled by 17 at lookup time.
type ColorMap struct {
	Data      []byte
	NumColors int
	Is4Bit    bool
}

// parseCMAP decodes a CMAP payload. An empty payload yields a nil map.
func parseCMAP(data []byte) (*ColorMap, error) {
	if len(data)%3 != 0 {
		return nil, badFile("CMAP chunk size %d not a multiple of 3", len(data))
	}
	if len(data) == 0 {
		return nil, nil
	}

	// Old 4-bit palettes store each channel in the 0-15 range; if no
	// entry uses the upper nibble the palette is assumed to be 4-bit.
	is4Bit := true
	for _, b := range data {
		if b&0xf0 != 0 {
			is4Bit = false
			break
		}
	}

	return &ColorMap{
		Data:      data,
		NumColors: len(data) / 3,
		Is4Bit:    is4Bit,
	}, nil
}

// rgb returns the palette entry at index i with any 4-bit scaling
// applied. The caller must have range-checked i.
func (cm *ColorMap) rgb(i int) (r, g, b uint8) {
	r = cm.Data[i*3]
	g = cm.Data[i*3+1]
	b = cm.Data[i*3+2]
	if cm.Is4Bit {
		r *= 17
		g *= 17
		b *= 17
	}
	return
}

// Compression values from the FXHD header of a FAXX form.
const (
	FaxCompressNone = 0
	FaxCompressMH   = 1
	FaxCompressMR   = 2
	FaxCompressMMR  = 4
)

// FaxHeader is the parsed FXHD chunk carried by FAXX forms. Only the
// compression method is interpreted; the rest of the payload holds
// transmission parameters the decoder does not need.
type FaxHeader struct {
	Compression uint8
}

// CompressionName returns the ITU-T name of the compression method.
func (h *FaxHeader) CompressionName() string {
	switch h.Compression {
	case FaxCompressNone:
		return "None"
	case FaxCompressMH:
		return "Modified Huffman (MH)"
	case FaxCompressMR:
		return "Modified READ (MR)"
	case FaxCompressMMR:
		return "Modified Modified READ (MMR)"
	}
	return "Unknown"
}

func parseFXHD(data []byte) (*FaxHeader, error) {
	if len(data) < 1 {
		return nil, badFile("FXHD chunk too small: %d bytes", len(data))
	}
	return &FaxHeader{Compression: data[0]}, nil
}

// ViewportModes is the CAMG viewport mode flag word. A missing CAMG
// chunk leaves all flags clear.
type ViewportModes uint32

// HAM reports whether the Hold-And-Modify bit is set.
func (v ViewportModes) HAM() bool { return v&ViewModeHAM != 0 }

// ExtraHalfBrite reports whether the Extra-Half-Brite bit is set.
func (v ViewportModes) ExtraHalfBrite() bool { return v&ViewModeExtraHalfBrite != 0 }

// Lace reports whether the interlace bit is set.
func (v ViewportModes) Lace() bool { return v&ViewModeLace != 0 }

// Hires reports whether the high-resolution bit is set.
func (v ViewportModes) Hires() bool { return v&ViewModeHires != 0 }

func parseCAMG(data []byte) (ViewportModes, error) {
	if len(data) < 4 {
		return 0, badFile("CAMG chunk too small: %d bytes", len(data))
	}
	return ViewportModes(binary.BigEndian.Uint32(data[0:4])), nil
}

// Picture is one IFF picture: the immutable header model extracted
// from the container plus the raw image payload. Populate it with New,
// classify it with Analyze, then decode it with Decode.
type Picture struct {
	Form      iff.FourCC
	Header    BitmapHeader
	ColorMap  *ColorMap
	Modes     ViewportModes
	FaxHeader *FaxHeader
	Metadata  Metadata

	body []byte

	profile  *FormatProfile
	analyzed bool
}

// New extracts the header model and image payload from a parsed FORM.
// The returned Picture aliases the Form's backing buffer.
func New(f *iff.Form) (*Picture, error) {
	p := &Picture{Form: f.Type}

	bmhd := f.Chunk(iff.FourCCBMHD)
	if bmhd == nil {
		return nil, badFile("missing BMHD chunk")
	}
	h, err := parseBMHD(bmhd)
	if err != nil {
		return nil, err
	}
	p.Header = h

	if cmap := f.Chunk(iff.FourCCCMAP); cmap != nil {
		if p.ColorMap, err = parseCMAP(cmap); err != nil {
			return nil, err
		}
	}

	if camg := f.Chunk(iff.FourCCCAMG); camg != nil {
		if p.Modes, err = parseCAMG(camg); err != nil {
			return nil, err
		}
	}

	if p.Form == iff.FormFAXX {
		if fxhd := f.Chunk(iff.FourCCFXHD); fxhd != nil {
			if p.FaxHeader, err = parseFXHD(fxhd); err != nil {
				return nil, err
			}
		}
	}

	p.Metadata = parseMetadata(f)

	// ACBM stores its image data in an ABIT chunk instead of BODY.
	if f.Type == iff.FormACBM {
		if p.body = f.Chunk(iff.FourCCABIT); p.body == nil {
			return nil, badFile("missing ABIT chunk")
		}
	} else {
		if p.body = f.Chunk(iff.FourCCBODY); p.body == nil {
			return nil, badFile("missing BODY chunk")
		}
	}

	return p, nil
}
