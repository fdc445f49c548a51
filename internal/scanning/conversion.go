package scanning

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// Converter renders receipt files to PNG bytes for the vision model.
// MuPDF handles both PDFs (first page only, most receipts are single page)
// and the common raster formats, so one rendering path covers everything
// except HEIC, which gets its own decoder.
type Converter struct {
	dpi int
}

// NewConverter creates a Converter rendering at the given DPI.
// 400 DPI gives the model enough resolution to read small receipt print.
func NewConverter(dpi int) *Converter {
	if dpi <= 0 {
		dpi = 400
	}
	return &Converter{dpi: dpi}
}

// ToImage converts a file on disk to PNG image bytes
func (c *Converter) ToImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	// Phone uploads sometimes carry a .jpg extension over HEIC content, so
	// sniff the bytes rather than trusting the name
	if isHEICFormat(data) {
		return heicToPNG(data)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer doc.Close()

	img, err := doc.ImageDPI(0, float64(c.dpi))
	if err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// heicToPNG decodes HEIC/HEIF content with the pure Go decoder
func heicToPNG(data []byte) ([]byte, error) {
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// isHEICFormat checks if the image data is in HEIC/HEIF format.
// HEIC files carry an ftyp box at offset 4 with a HEIC-related brand.
func isHEICFormat(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	if string(data[4:8]) != "ftyp" {
		return false
	}
	brand := string(data[8:12])
	return brand == "heic" || brand == "heif" || brand == "mif1" || brand == "msf1"
}
