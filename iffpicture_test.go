package iffpicture

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/iffpicture/picture"
)

func buildChunk(id string, payload []byte) []byte {
	b := make([]byte, 0, 8+len(payload)+1)
	b = append(b, id...)
	b = append(b, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(b[4:8], uint32(len(payload)))
	b = append(b, payload...)
	if len(payload)%2 != 0 {
		b = append(b, 0)
	}
	return b
}

func buildForm(formType string, chunks ...[]byte) []byte {
	var payload []byte
	payload = append(payload, formType...)
	for _, c := range chunks {
		payload = append(payload, c...)
	}
	return buildChunk("FORM", payload)
}

// testILBM is a 4x1, 2 plane picture indexing a four color palette.
func testILBM() []byte {
	bmhd := make([]byte, 20)
	binary.BigEndian.PutUint16(bmhd[0:2], 4)
	binary.BigEndian.PutUint16(bmhd[2:4], 1)
	bmhd[8] = 2

	return buildForm("ILBM",
		buildChunk("BMHD", bmhd),
		buildChunk("CMAP", []byte{
			0, 0, 0,
			255, 0, 0,
			0, 255, 0,
			0, 0, 255,
		}),
		buildChunk("AUTH", []byte("somebody")),
		buildChunk("BODY", []byte{
			0x50, 0x00,
			0x30, 0x00,
		}),
	)
}

func discardLogger() *log.Logger {
	return log.New(ioutil.Discard, "", 0)
}

func TestIsCandidate(t *testing.T) {
	tables := []struct {
		file string
		want bool
	}{
		{"picture.iff", true},
		{"picture.ILBM", true},
		{"picture.lbm", true},
		{"picture.rgb8", true},
		{"picture.faxx", true},
		{"readme.txt", false},
		{"archive.zip", false},
		{"noextension", false},
	}
	for _, table := range tables {
		assert.Equal(t, table.want, isCandidate(table.file), table.file)
	}
}

func TestSHA1File(t *testing.T) {
	dir, err := ioutil.TempDir("", "iffpicture")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "abc.txt")
	require.Nil(t, ioutil.WriteFile(file, []byte("abc"), 0644))

	sha, err := sha1File(file)
	require.Nil(t, err)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", sha)
}

func TestConvert(t *testing.T) {
	dir, err := ioutil.TempDir("", "iffpicture")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "test.iff")
	dst := filepath.Join(dir, "test.png")
	require.Nil(t, ioutil.WriteFile(src, testILBM(), 0644))

	m := New(nil, discardLogger())
	defer m.Close()

	require.Nil(t, m.Convert(src, dst, false))

	f, err := os.Open(dst)
	require.Nil(t, err)
	defer f.Close()

	im, err := png.Decode(f)
	require.Nil(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 1), im.Bounds())

	r, g, b, a := im.At(1, 0).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0, 0xffff}, []uint32{r, g, b, a})
}

func TestOutputImagePaletted(t *testing.T) {
	im := &picture.Image{
		Width: 2, Height: 1,
		Pix: []byte{255, 0, 0, 0, 0, 0},
	}
	cfg := &picture.EncodingConfig{
		Paletted:         true,
		BitDepth:         1,
		Palette:          color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 0, 0, 255}},
		TransparentIndex: -1,
	}

	out := outputImage(im, cfg, false)
	pm, ok := out.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, uint8(1), pm.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(0), pm.ColorIndexAt(1, 0))
}

func TestOutputImageTransparentIndex(t *testing.T) {
	im := &picture.Image{
		Width: 2, Height: 1,
		HasAlpha: true,
		Pix:      []byte{255, 0, 0, 255, 0, 255, 0, 0},
	}
	cfg := &picture.EncodingConfig{
		Paletted: true,
		BitDepth: 2,
		Palette: color.Palette{
			color.RGBA{255, 0, 0, 255},
			color.RGBA{0, 255, 0, 255},
		},
		TransparentIndex: 1,
		HasAlpha:         true,
	}

	out := outputImage(im, cfg, false)
	pm, ok := out.(*image.Paletted)
	require.True(t, ok)
	assert.Equal(t, uint8(0), pm.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(1), pm.ColorIndexAt(1, 0))

	_, _, _, a := pm.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), a)
}

func TestOutputImageGrayscale(t *testing.T) {
	im := &picture.Image{
		Width: 2, Height: 1,
		Pix: []byte{255, 255, 255, 0, 0, 0},
	}
	cfg := &picture.EncodingConfig{
		Grayscale:        true,
		BitDepth:         1,
		TransparentIndex: -1,
	}

	out := outputImage(im, cfg, false)
	gm, ok := out.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(255), gm.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), gm.GrayAt(1, 0).Y)
}

func TestOutputImageGrayscaleWithAlpha(t *testing.T) {
	// A mask plane needs the alpha channel, so gray output is not used.
	im := &picture.Image{
		Width: 1, Height: 1,
		HasAlpha: true,
		Pix:      []byte{128, 128, 128, 0},
	}
	cfg := &picture.EncodingConfig{
		Grayscale:        true,
		BitDepth:         8,
		TransparentIndex: -1,
		HasAlpha:         true,
	}

	out := outputImage(im, cfg, false)
	_, ok := out.(*image.NRGBA)
	assert.True(t, ok)
}

func TestConvertGrayscale(t *testing.T) {
	dir, err := ioutil.TempDir("", "iffpicture")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	bmhd := make([]byte, 20)
	binary.BigEndian.PutUint16(bmhd[0:2], 2)
	binary.BigEndian.PutUint16(bmhd[2:4], 1)
	bmhd[8] = 1

	src := filepath.Join(dir, "gray.iff")
	dst := filepath.Join(dir, "gray.png")
	require.Nil(t, ioutil.WriteFile(src, buildForm("ILBM",
		buildChunk("BMHD", bmhd),
		buildChunk("CMAP", []byte{0, 0, 0, 255, 255, 255}),
		buildChunk("BODY", []byte{0x40, 0x00}),
	), 0644))

	m := New(nil, discardLogger())
	defer m.Close()

	require.Nil(t, m.Convert(src, dst, false))

	f, err := os.Open(dst)
	require.Nil(t, err)
	defer f.Close()

	im, err := png.Decode(f)
	require.Nil(t, err)

	gm, ok := im.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, uint8(0), gm.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), gm.GrayAt(1, 0).Y)
}

func TestOutputImageQuantized(t *testing.T) {
	im := &picture.Image{
		Width: 2, Height: 1,
		Pix: []byte{255, 0, 0, 0, 0, 255},
	}
	cfg := &picture.EncodingConfig{BitDepth: 8, TransparentIndex: -1}

	out := outputImage(im, cfg, true)
	_, ok := out.(*image.Paletted)
	assert.True(t, ok)
}

func TestOutputImageTruecolor(t *testing.T) {
	im := &picture.Image{
		Width: 1, Height: 1,
		Pix: []byte{1, 2, 3},
	}
	cfg := &picture.EncodingConfig{BitDepth: 8, TransparentIndex: -1}

	out := outputImage(im, cfg, false)
	nrgba, ok := out.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, nrgba.NRGBAAt(0, 0))
}

func TestScan(t *testing.T) {
	dir, err := ioutil.TempDir("", "iffpicture")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	file := filepath.Join(dir, "test.iff")
	require.Nil(t, ioutil.WriteFile(file, testILBM(), 0644))
	// A candidate extension without the container magic is skipped.
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "junk.iff"), []byte("not a form"), 0644))
	// A non-candidate extension is never read.
	require.Nil(t, ioutil.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hello"), 0644))

	db, err := NewPictureDB(filepath.Join(dir, "catalog.db"))
	require.Nil(t, err)

	m := New(db, discardLogger())
	defer m.Close()

	require.Nil(t, m.Scan(dir))

	rec, err := db.FindByPath(file)
	require.Nil(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "ILBM", rec.Form)
	assert.Equal(t, 4, rec.Width)
	assert.Equal(t, 1, rec.Height)
	assert.Equal(t, 2, rec.Planes)
	assert.Equal(t, "indexed", rec.ColorType)
	assert.False(t, rec.HAM)
	assert.False(t, rec.Compressed)
	assert.Equal(t, "somebody", rec.Author)

	rec, err = db.FindByPath(filepath.Join(dir, "junk.iff"))
	require.Nil(t, err)
	assert.Nil(t, rec)
}

func TestStoreReplacesByPath(t *testing.T) {
	dir, err := ioutil.TempDir("", "iffpicture")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	db, err := NewPictureDB(filepath.Join(dir, "catalog.db"))
	require.Nil(t, err)
	defer db.Close()

	rec := &Record{Path: "/a/b.iff", SHA1: "x", Form: "ILBM", Width: 1, Height: 1, Planes: 1, ColorType: "indexed"}
	require.Nil(t, db.Store(rec))

	rec.Width = 320
	require.Nil(t, db.Store(rec))

	got, err := db.FindByPath("/a/b.iff")
	require.Nil(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 320, got.Width)

	got, err = db.FindByPath("/does/not/exist")
	require.Nil(t, err)
	assert.Nil(t, got)
}
