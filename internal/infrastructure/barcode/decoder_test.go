package barcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func code128PNG(t *testing.T, text string) []byte {
	t.Helper()
	matrix, err := oned.NewCode128Writer().Encode(text, gozxing.BarcodeFormat_CODE_128, 300, 80, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, matrix))
	return buf.Bytes()
}

func TestDecoder_LeeCode128(t *testing.T) {
	got, err := NewDecoder().Decode(code128PNG(t, "7501234567890"))
	require.NoError(t, err)
	assert.Equal(t, "7501234567890", got)
}

func TestDecoder_ImagenVacia(t *testing.T) {
	_, err := NewDecoder().Decode(nil)
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestDecoder_BytesNoImagen(t *testing.T) {
	_, err := NewDecoder().Decode([]byte("no es una imagen"))
	assert.Error(t, err)
}
