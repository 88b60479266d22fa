package picture

import (
	"image/color"

	"github.com/bodgit/iffpicture/iff"
)

// ColorType classifies how decoded samples map to color.
type ColorType int

const (
	// ColorIndexed pixels are palette indices.
	ColorIndexed ColorType = iota
	// ColorGrayscale pixels are single-channel intensities.
	ColorGrayscale
	// ColorRGB pixels are direct 24-bit color.
	ColorRGB
	// ColorRGBA pixels are direct color with an alpha channel.
	ColorRGBA
)

func (c ColorType) String() string {
	switch c {
	case ColorIndexed:
		return "indexed"
	case ColorGrayscale:
		return "grayscale"
	case ColorRGB:
		return "rgb"
	case ColorRGBA:
		return "rgba"
	}
	return "unknown"
}

// FormatProfile is the derived classification of a picture. It is a
// pure function of the header, palette and viewport modes and selects
// the decode strategy; Decode refuses to run without one.
type FormatProfile struct {
	ColorType    ColorType
	BitDepth     int
	HasAlpha     bool
	IsHAM        bool
	IsEHB        bool
	IsCompressed bool
}

// grayPalette reports whether every palette entry has equal channels.
func grayPalette(cm *ColorMap) bool {
	for i := 0; i < cm.NumColors; i++ {
		r, g, b := cm.rgb(i)
		if r != g || g != b {
			return false
		}
	}
	return true
}

// Analyze classifies the picture and stores the resulting profile for
// the subsequent Decode call. It fails with Unsupported for an
// unrecognized form type and with BadFile for header values no decode
// strategy can serve.
func (p *Picture) Analyze() (FormatProfile, error) {
	var prof FormatProfile

	h := &p.Header
	prof.IsCompressed = h.Compression != CompressNone
	prof.HasAlpha = h.Masking == MaskHasMask || h.Masking == MaskTransparentColor
	prof.BitDepth = int(h.NPlanes)

	// FAXX reuses the compression field to select its line coding.
	if h.Compression > CompressByteRun1 && p.Form != iff.FormFAXX {
		return prof, unsupported("compression method %d", h.Compression)
	}

	switch p.Form {
	case iff.FormILBM, iff.FormPBM, iff.FormACBM:
		if h.NPlanes < 1 || h.NPlanes > 8 {
			return prof, badFile("nPlanes %d out of range for %s", h.NPlanes, p.Form)
		}
		// HAM wins over EHB when both CAMG bits are set at 6 planes.
		prof.IsHAM = p.Modes.HAM() && (h.NPlanes == 6 || h.NPlanes == 8)
		prof.IsEHB = !prof.IsHAM && p.Modes.ExtraHalfBrite() && h.NPlanes == 6
		switch {
		case prof.IsHAM:
			prof.ColorType = ColorRGB
		case p.ColorMap != nil && grayPalette(p.ColorMap):
			prof.ColorType = ColorGrayscale
		case p.ColorMap == nil && h.NPlanes == 1:
			prof.ColorType = ColorGrayscale
		default:
			prof.ColorType = ColorIndexed
		}
	case iff.FormRGBN:
		prof.ColorType = ColorRGB
		prof.BitDepth = 12
	case iff.FormRGB8:
		prof.ColorType = ColorRGB
		prof.BitDepth = 24
	case iff.FormDEEP:
		if h.NPlanes%3 != 0 || h.NPlanes == 0 {
			return prof, badFile("DEEP nPlanes %d not divisible by 3", h.NPlanes)
		}
		if h.NPlanes/3 > 8 {
			return prof, unsupported("DEEP with %d bits per channel", h.NPlanes/3)
		}
		prof.ColorType = ColorRGB
		prof.BitDepth = int(h.NPlanes)
	case iff.FormFAXX:
		prof.ColorType = ColorGrayscale
		prof.BitDepth = 1
		prof.HasAlpha = false
		switch c := p.faxCompression(); c {
		case FaxCompressNone, FaxCompressMH, FaxCompressMMR:
			prof.IsCompressed = c != FaxCompressNone
		default:
			return prof, unsupported("fax compression method %d", c)
		}
	default:
		return prof, unsupported("FORM type %s", p.Form)
	}

	if prof.HasAlpha && (prof.ColorType == ColorRGB || prof.ColorType == ColorRGBA) {
		prof.ColorType = ColorRGBA
	}

	p.profile = &prof
	p.analyzed = true
	return prof, nil
}

// Profile returns the classification from the last Analyze call, or
// nil if the picture has not been analyzed.
func (p *Picture) Profile() *FormatProfile {
	return p.profile
}

// EncodingConfig describes how the decoded picture is best re-encoded:
// paletted output with the original palette where the source is
// indexed, grayscale with a reduced bit depth where the palette is
// gray, truecolor otherwise.
type EncodingConfig struct {
	Paletted         bool
	Grayscale        bool
	BitDepth         int
	Palette          color.Palette
	TransparentIndex int // -1 when no transparent color applies
	HasAlpha         bool
}

func paletteBitDepth(numColors int) int {
	switch {
	case numColors <= 2:
		return 1
	case numColors <= 4:
		return 2
	case numColors <= 16:
		return 4
	}
	return 8
}

// EncodingConfig derives the optimal output configuration from the
// stored profile. Analyze must have been called first.
func (p *Picture) EncodingConfig() (*EncodingConfig, error) {
	if !p.analyzed {
		return nil, invalidState("EncodingConfig called before Analyze")
	}

	prof := p.profile
	cfg := &EncodingConfig{
		BitDepth:         8,
		TransparentIndex: -1,
		HasAlpha:         prof.HasAlpha,
	}

	if prof.IsHAM || prof.IsEHB || prof.ColorType == ColorRGB || prof.ColorType == ColorRGBA {
		return cfg, nil
	}

	if p.Form == iff.FormFAXX {
		cfg.Grayscale = true
		cfg.BitDepth = 1
		return cfg, nil
	}

	cm := p.ColorMap
	if cm == nil {
		cfg.Grayscale = true
		cfg.BitDepth = int(p.Header.NPlanes)
		return cfg, nil
	}

	cfg.BitDepth = paletteBitDepth(cm.NumColors)
	if prof.ColorType == ColorGrayscale {
		cfg.Grayscale = true
		return cfg, nil
	}

	cfg.Paletted = true
	cfg.Palette = make(color.Palette, cm.NumColors)
	for i := 0; i < cm.NumColors; i++ {
		r, g, b := cm.rgb(i)
		cfg.Palette[i] = color.RGBA{r, g, b, 0xff}
	}
	if p.Header.Masking == MaskTransparentColor && int(p.Header.TransparentColor) < cm.NumColors {
		cfg.TransparentIndex = int(p.Header.TransparentColor)
	}

	return cfg, nil
}
