package picture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/iffpicture/iff"
)

func TestParseBMHD(t *testing.T) {
	data := []byte{
		0x01, 0x40, // width 320
		0x00, 0xc8, // height 200
		0x00, 0x00, 0x00, 0x00, // x, y
		5,    // nPlanes
		2,    // masking
		1,    // compression
		0,    // pad
		0x00, 0x07, // transparent color
		10, 11, // aspect
		0x01, 0x40,
		0x00, 0xc8,
	}

	h, err := parseBMHD(data)
	require.Nil(t, err)
	assert.Equal(t, uint16(320), h.Width)
	assert.Equal(t, uint16(200), h.Height)
	assert.Equal(t, uint8(5), h.NPlanes)
	assert.Equal(t, uint8(MaskTransparentColor), h.Masking)
	assert.Equal(t, uint8(CompressByteRun1), h.Compression)
	assert.Equal(t, uint16(7), h.TransparentColor)
	assert.Equal(t, uint8(10), h.XAspect)
	assert.Equal(t, int16(320), h.PageWidth)
}

func TestParseBMHDShort(t *testing.T) {
	_, err := parseBMHD(make([]byte, 19))
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrBadFile))
}

func TestParseCMAP(t *testing.T) {
	cm, err := parseCMAP([]byte{0, 0, 0, 255, 128, 64})
	require.Nil(t, err)
	assert.Equal(t, 2, cm.NumColors)
	assert.False(t, cm.Is4Bit)

	r, g, b := cm.rgb(1)
	assert.Equal(t, [3]uint8{255, 128, 64}, [3]uint8{r, g, b})
}

func TestParseCMAP4Bit(t *testing.T) {
	// No entry uses the upper nibble, so the palette is taken as 4-bit
	// and scaled at lookup.
	cm, err := parseCMAP([]byte{0, 8, 15, 1, 2, 3})
	require.Nil(t, err)
	assert.True(t, cm.Is4Bit)

	r, g, b := cm.rgb(0)
	assert.Equal(t, [3]uint8{0, 136, 255}, [3]uint8{r, g, b})
}

func TestParseCMAPErrors(t *testing.T) {
	_, err := parseCMAP([]byte{1, 2})
	assert.True(t, errors.Is(err, ErrBadFile))

	cm, err := parseCMAP(nil)
	require.Nil(t, err)
	assert.Nil(t, cm)
}

func TestParseCAMG(t *testing.T) {
	v, err := parseCAMG([]byte{0x00, 0x00, 0x08, 0x84})
	require.Nil(t, err)
	assert.True(t, v.HAM())
	assert.True(t, v.ExtraHalfBrite())
	assert.True(t, v.Lace())
	assert.False(t, v.Hires())

	_, err = parseCAMG([]byte{0, 0})
	assert.True(t, errors.Is(err, ErrBadFile))
}

func TestNew(t *testing.T) {
	data := buildForm("ILBM",
		buildChunk("BMHD", buildBMHD(4, 1, 2, MaskNone, CompressByteRun1, 0)),
		buildChunk("CMAP", fourColors),
		buildChunk("CAMG", buildCAMG(ViewModeLace)),
		buildChunk("AUTH", []byte("somebody")),
		buildChunk("ANNO", []byte("made with deluxe paint")),
		buildChunk("BODY", []byte{1, 2, 3, 4}),
	)

	f, err := iff.Parse(data)
	require.Nil(t, err)

	p, err := New(f)
	require.Nil(t, err)
	assert.Equal(t, iff.FormILBM, p.Form)
	assert.Equal(t, uint16(4), p.Header.Width)
	assert.Equal(t, 4, p.ColorMap.NumColors)
	assert.True(t, p.Modes.Lace())
	assert.Equal(t, "somebody", p.Metadata.Author)
	assert.Equal(t, []string{"made with deluxe paint"}, p.Metadata.Annotations)
}

func TestNewMissingChunks(t *testing.T) {
	tables := []struct {
		name string
		data []byte
		want string
	}{
		{
			"no BMHD",
			buildForm("ILBM", buildChunk("BODY", []byte{0})),
			"BMHD",
		},
		{
			"no BODY",
			buildForm("ILBM", buildChunk("BMHD", buildBMHD(4, 1, 2, MaskNone, CompressNone, 0))),
			"BODY",
		},
		{
			"ACBM without ABIT",
			buildForm("ACBM",
				buildChunk("BMHD", buildBMHD(4, 1, 2, MaskNone, CompressNone, 0)),
				buildChunk("BODY", []byte{0, 0}),
			),
			"ABIT",
		},
		{
			"empty FXHD",
			buildForm("FAXX",
				buildChunk("BMHD", buildBMHD(8, 1, 1, MaskNone, CompressNone, 0)),
				buildChunk("FXHD", nil),
				buildChunk("BODY", []byte{0x98}),
			),
			"FXHD",
		},
	}
	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			f, err := iff.Parse(table.data)
			require.Nil(t, err)

			_, err = New(f)
			require.NotNil(t, err)
			assert.True(t, errors.Is(err, ErrBadFile))
			assert.Contains(t, err.Error(), table.want)
		})
	}
}
