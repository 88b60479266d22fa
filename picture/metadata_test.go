package picture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/iffpicture/iff"
)

func TestParseMetadata(t *testing.T) {
	data := buildForm("ILBM",
		buildChunk("AUTH", []byte("somebody\x00")),
		buildChunk("(c) ", []byte("1989 someone")),
		buildChunk("ANNO", []byte("first")),
		buildChunk("ANNO", []byte("second")),
		buildChunk("GRAB", []byte{0x00, 0x08, 0xff, 0xf8}),
		buildChunk("DPI ", []byte{0x00, 0x48, 0x00, 0x48}),
	)

	f, err := iff.Parse(data)
	require.Nil(t, err)

	m := parseMetadata(f)
	assert.Equal(t, "somebody", m.Author)
	assert.Equal(t, "1989 someone", m.Copyright)
	assert.Equal(t, []string{"first", "second"}, m.Annotations)
	require.True(t, m.HasGrab)
	assert.Equal(t, int16(8), m.GrabX)
	assert.Equal(t, int16(-8), m.GrabY)
	require.True(t, m.HasDPI)
	assert.Equal(t, uint16(72), m.DPIX)
	assert.Equal(t, uint16(72), m.DPIY)
}

func TestParseMetadataEmpty(t *testing.T) {
	data := buildForm("ILBM")

	f, err := iff.Parse(data)
	require.Nil(t, err)

	m := parseMetadata(f)
	assert.Empty(t, m.Annotations)
	assert.False(t, m.HasGrab)
	assert.False(t, m.HasDPI)
}
