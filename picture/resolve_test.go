package picture

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupIndexed(t *testing.T) {
	cm := &ColorMap{Data: []byte{10, 20, 30, 200, 150, 100}, NumColors: 2}

	r, g, b, err := lookupIndexed(cm, 1)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{200, 150, 100}, [3]uint8{r, g, b})

	_, _, _, err = lookupIndexed(cm, 2)
	assert.True(t, errors.Is(err, ErrBadFile))

	_, _, _, err = lookupIndexed(nil, 0)
	assert.True(t, errors.Is(err, ErrBadFile))
}

func TestColorMap4BitScaling(t *testing.T) {
	cm := &ColorMap{Data: []byte{0, 8, 15}, NumColors: 1, Is4Bit: true}
	r, g, b := cm.rgb(0)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(136), g)
	assert.Equal(t, uint8(255), b)
}

func TestHAM6(t *testing.T) {
	cm := &ColorMap{
		Data:      []byte{10, 20, 30, 40, 50, 60},
		NumColors: 2,
	}
	s := newHAMState(cm, 6)
	require.Nil(t, s.startRow(0x01))

	// Set from palette entry 1.
	r, g, b, err := s.pixel(0x01)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{40, 50, 60}, [3]uint8{r, g, b})

	// Modify green to 15, scaled x17.
	r, g, b, err = s.pixel(1<<4 | 15)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{40, 255, 60}, [3]uint8{r, g, b})

	// Modify blue to 0; red and green hold.
	r, g, b, err = s.pixel(2 << 4)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{40, 255, 0}, [3]uint8{r, g, b})

	// Modify red to 3.
	r, g, b, err = s.pixel(3<<4 | 3)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{51, 255, 0}, [3]uint8{r, g, b})
}

func TestHAM6StartRow(t *testing.T) {
	cm := &ColorMap{Data: []byte{1, 2, 3, 4, 5, 6}, NumColors: 2}
	s := newHAMState(cm, 6)

	// Only the low index bits of the first pixel seed the accumulator.
	require.Nil(t, s.startRow(2<<4|1))
	assert.Equal(t, [3]uint8{4, 5, 6}, [3]uint8{s.r, s.g, s.b})

	// A seed index beyond the palette is a data error.
	assert.True(t, errors.Is(s.startRow(0x02), ErrBadFile))
}

func TestHAM8Scaling(t *testing.T) {
	cm := &ColorMap{Data: []byte{0, 0, 0}, NumColors: 1}
	s := newHAMState(cm, 8)
	require.Nil(t, s.startRow(0))

	tables := []struct {
		operand uint8
		want    uint8
	}{
		{0, 0},
		{1, 4},
		{31, 125},
		{32, 130},
		{63, 255},
	}
	for _, table := range tables {
		_, g, _, err := s.pixel(1<<6 | table.operand)
		require.Nil(t, err)
		assert.Equal(t, table.want, g)
	}
}

func TestLookupEHB(t *testing.T) {
	data := make([]byte, 32*3)
	data[3], data[4], data[5] = 200, 101, 50
	cm := &ColorMap{Data: data, NumColors: 32}

	r, g, b, err := lookupEHB(cm, 1)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{200, 101, 50}, [3]uint8{r, g, b})

	// Indices 32-63 are the half-intensity shadow of 0-31.
	r, g, b, err = lookupEHB(cm, 33)
	require.Nil(t, err)
	assert.Equal(t, [3]uint8{100, 50, 25}, [3]uint8{r, g, b})
}

func TestLookupEHBShortPalette(t *testing.T) {
	cm := &ColorMap{Data: make([]byte, 16*3), NumColors: 16}
	_, _, _, err := lookupEHB(cm, 16)
	assert.True(t, errors.Is(err, ErrBadFile))
}
