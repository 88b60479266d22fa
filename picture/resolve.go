package picture

// Color resolution: mapping reconstructed per-pixel samples to final
// RGB values via the palette, the HAM accumulator or the
// Extra-Half-Brite rule.

// lookupIndexed resolves a palette index. An index beyond the palette
// is a BadFile error rather than a clamp so malformed files surface.
func lookupIndexed(cm *ColorMap, idx int) (r, g, b uint8, err error) {
	if cm == nil {
		return 0, 0, 0, badFile("indexed pixel without CMAP")
	}
	if idx >= cm.NumColors {
		return 0, 0, 0, badFile("palette index %d out of range (%d colors)", idx, cm.NumColors)
	}
	r, g, b = cm.rgb(idx)
	return
}

// HAM control codes held in the top two bits of each pixel value.
const (
	hamSetPalette = 0
	hamModifyG    = 1
	hamModifyB    = 2
	hamModifyR    = 3
)

// hamState is the running color accumulator for one Hold-And-Modify
// row. It resets at the start of each row; rows are therefore strictly
// sequential left to right but independent of each other.
type hamState struct {
	cm      *ColorMap
	bits    uint // index bits per pixel: 4 for HAM6, 6 for HAM8
	r, g, b uint8
}

func newHAMState(cm *ColorMap, nPlanes uint8) *hamState {
	return &hamState{
		cm:   cm,
		bits: uint(nPlanes) - 2,
	}
}

// scale expands a HAM modify operand to 8 bits. HAM6 carries 4-bit
// operands (x17); HAM8 carries 6-bit operands, expanded with rounding
// to nearest.
func (s *hamState) scale(v uint8) uint8 {
	if s.bits == 4 {
		return v * 17
	}
	return uint8((int(v)*255 + 31) / 63)
}

// startRow seeds the accumulator from the palette entry addressed by
// the low index bits of the row's first pixel.
func (s *hamState) startRow(first uint8) error {
	idx := int(first & (1<<s.bits - 1))
	r, g, b, err := lookupIndexed(s.cm, idx)
	if err != nil {
		return err
	}
	s.r, s.g, s.b = r, g, b
	return nil
}

// pixel advances the accumulator by one pixel value and returns the
// resolved color.
func (s *hamState) pixel(v uint8) (r, g, b uint8, err error) {
	code := v >> s.bits
	low := v & (1<<s.bits - 1)

	switch code {
	case hamSetPalette:
		if s.r, s.g, s.b, err = lookupIndexed(s.cm, int(low)); err != nil {
			return
		}
	case hamModifyG:
		s.g = s.scale(low)
	case hamModifyB:
		s.b = s.scale(low)
	case hamModifyR:
		s.r = s.scale(low)
	}
	return s.r, s.g, s.b, nil
}

// ehbPaletteSize is the size of the base palette in Extra-Half-Brite
// mode; indices 32-63 are half-intensity copies of 0-31.
const ehbPaletteSize = 32

// lookupEHB resolves a 6-bit Extra-Half-Brite index.
func lookupEHB(cm *ColorMap, idx int) (r, g, b uint8, err error) {
	base := idx & (ehbPaletteSize - 1)
	if r, g, b, err = lookupIndexed(cm, base); err != nil {
		return
	}
	if idx >= ehbPaletteSize {
		r >>= 1
		g >>= 1
		b >>= 1
	}
	return
}
