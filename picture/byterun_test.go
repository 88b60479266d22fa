package picture

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpackByteRun1(t *testing.T) {
	tables := []struct {
		name string
		src  []byte
		want []byte
		pos  int
	}{
		{"literal", []byte{2, 'a', 'b', 'c'}, []byte("abc"), 4},
		{"repeat", []byte{0xfd, 0x55}, []byte{0x55, 0x55, 0x55, 0x55}, 2},
		{"noop then literal", []byte{0x80, 0x00, 'x'}, []byte("x"), 3},
		{"mixed", []byte{1, 'a', 'b', 0xfe, 'c'}, []byte("abccc"), 5},
	}
	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			dst := make([]byte, len(table.want))
			pos, err := unpackByteRun1(table.src, 0, dst)
			require.Nil(t, err)
			assert.Equal(t, table.want, dst)
			assert.Equal(t, table.pos, pos)
		})
	}
}

func TestUnpackByteRun1Resume(t *testing.T) {
	// Row-sized reads resume at the stream position the previous read
	// stopped at.
	src := []byte{1, 'a', 'b', 0xff, 'c'}

	dst := make([]byte, 2)
	pos, err := unpackByteRun1(src, 0, dst)
	require.Nil(t, err)
	assert.Equal(t, []byte("ab"), dst)

	_, err = unpackByteRun1(src, pos, dst)
	require.Nil(t, err)
	assert.Equal(t, []byte("cc"), dst)
}

func TestUnpackByteRun1Errors(t *testing.T) {
	tables := []struct {
		name string
		src  []byte
		n    int
	}{
		{"empty stream", nil, 1},
		{"literal overrun", []byte{3, 1, 2, 3, 4}, 2},
		{"repeat overrun", []byte{0xfe, 0xff}, 2},
		{"truncated literal", []byte{5, 1, 2}, 6},
		{"truncated repeat", []byte{0xfe}, 3},
		{"stream dry mid-row", []byte{0, 'a'}, 2},
	}
	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := unpackByteRun1(table.src, 0, make([]byte, table.n))
			require.NotNil(t, err)
			assert.True(t, errors.Is(err, ErrBadFile))
		})
	}
}

func TestPackByteRun1Roundtrip(t *testing.T) {
	tables := [][]byte{
		{0x42},
		{1, 2, 3, 4, 5},
		bytes.Repeat([]byte{0xaa}, 3),
		bytes.Repeat([]byte{0xaa}, 127),
		bytes.Repeat([]byte{0xaa}, 128),
		bytes.Repeat([]byte{0xaa}, 200),
		append(bytes.Repeat([]byte{7}, 5), 1, 2, 1, 2),
		append([]byte{9, 8}, bytes.Repeat([]byte{0}, 40)...),
	}
	for _, want := range tables {
		packed := packByteRun1(nil, want)
		dst := make([]byte, len(want))
		pos, err := unpackByteRun1(packed, 0, dst)
		require.Nil(t, err)
		assert.Equal(t, want, dst)
		assert.Equal(t, len(packed), pos)
	}
}
