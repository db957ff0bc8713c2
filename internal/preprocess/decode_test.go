package preprocess

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

func TestDecode(t *testing.T) {
	img := solidImage(20, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	encode := map[string]func(*bytes.Buffer, image.Image) error{
		"png":  func(b *bytes.Buffer, i image.Image) error { return png.Encode(b, i) },
		"jpeg": func(b *bytes.Buffer, i image.Image) error { return jpeg.Encode(b, i, nil) },
		"bmp":  func(b *bytes.Buffer, i image.Image) error { return bmp.Encode(b, i) },
	}

	for format, enc := range encode {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, enc(&buf, img))

			decoded, got, err := Decode(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, format, got)
			assert.Equal(t, 20, decoded.Bounds().Dx())
			assert.Equal(t, 10, decoded.Bounds().Dy())
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "garbage", data: []byte("definitely not an image")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data)
			assert.ErrorIs(t, err, domain.ErrInvalidImage)
		})
	}
}

// withDeclaredSize rewrites the IHDR width and height of a PNG without
// touching its pixel data.
func withDeclaredSize(t *testing.T, data []byte, w, h uint32) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	require.Equal(t, "IHDR", string(out[12:16]))
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestDecode_RejectsOversizedHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(4, 4, color.NRGBA{A: 255})))

	huge := withDeclaredSize(t, buf.Bytes(), 30000, 30000)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(huge))
	require.NoError(t, err)
	require.Equal(t, 30000, cfg.Width)

	_, _, err = Decode(huge)
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
	assert.Contains(t, err.Error(), "30000x30000")
}
