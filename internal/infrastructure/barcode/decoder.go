// Package barcode lee códigos de barras 1D de fotos enviadas al asistente.
package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // registro de formato para image.Decode
	_ "image/png"  // registro de formato para image.Decode
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ErrUnreadable ningún lector reconoció un código en la imagen.
var ErrUnreadable = errors.New("código de barras ilegible")

// Decoder prueba EAN/UPC, Code 128 y Code 39 en ese orden.
type Decoder struct {
	hints map[gozxing.DecodeHintType]interface{}
}

// NewDecoder construye el decoder con TRY_HARDER activado.
func NewDecoder() *Decoder {
	return &Decoder{hints: map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}}
}

// Decode devuelve el texto del primer código reconocido.
func (d *Decoder) Decode(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrUnreadable
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decodificar imagen: %w", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("binarizar imagen: %w", err)
	}
	// Los lectores guardan estado interno; se crean por llamada.
	readers := []gozxing.Reader{
		oned.NewMultiFormatUPCEANReader(d.hints),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
	}
	for _, r := range readers {
		res, err := r.Decode(bmp, d.hints)
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(res.GetText()); text != "" {
			return text, nil
		}
	}
	return "", ErrUnreadable
}
