package document

import (
	"bytes"
	"fmt"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

// inspect verifies that the document bytes are structurally sound before
// any network call is made, and records the PDF page count so the
// extraction prompt can name it. Plain raster images are left to the
// model; only formats stdlib cannot open are checked here.
func (d *Document) inspect() error {
	switch d.MediaType {
	case MediaTypePDF:
		doc, err := fitz.NewFromMemory(d.Data)
		if err != nil {
			return fmt.Errorf("inspect: opening PDF: %w", err)
		}
		defer doc.Close()

		pages := doc.NumPage()
		if pages == 0 {
			return fmt.Errorf("inspect: PDF has no pages")
		}
		d.Pages = pages

	case MediaTypeHEIC:
		if _, err := heic.DecodeConfig(bytes.NewReader(d.Data)); err != nil {
			return fmt.Errorf("inspect: decoding HEIC header: %w", err)
		}
	}

	return nil
}
