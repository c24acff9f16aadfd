package document

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Media types accepted for statement documents. Callers validate the
// declared type against this set before encoding; Encode itself only
// fails on unreadable or corrupt input.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeWEBP = "image/webp"
	MediaTypeHEIC = "image/heic"
)

var supportedMediaTypes = map[string]bool{
	MediaTypePDF:  true,
	MediaTypeJPEG: true,
	MediaTypePNG:  true,
	MediaTypeWEBP: true,
	MediaTypeHEIC: true,
}

// SupportedMediaType reports whether the given media type is one the
// extraction model accepts.
func SupportedMediaType(mediaType string) bool {
	return supportedMediaTypes[normalizeMediaType(mediaType)]
}

// SupportedMediaTypes returns the accepted media types, for user-facing
// error messages.
func SupportedMediaTypes() []string {
	return []string{MediaTypePDF, MediaTypeJPEG, MediaTypePNG, MediaTypeWEBP, MediaTypeHEIC}
}

// Document is the transport-ready representation of an uploaded file:
// raw bytes plus the declared media type. Pages is the PDF page count
// when known (0 otherwise).
type Document struct {
	Data      []byte
	MediaType string
	Pages     int
}

// Base64 returns the document bytes in the base64 transport form used
// for JSON payloads.
func (d *Document) Base64() string {
	return base64.StdEncoding.EncodeToString(d.Data)
}

// Encode reads the full document from r and returns its transport
// representation. A read failure or a structurally corrupt PDF/HEIC file
// is returned as an error; nothing is retried.
func Encode(r io.Reader, mediaType string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("Encode: reading document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("Encode: document is empty")
	}

	doc := &Document{
		Data:      data,
		MediaType: normalizeMediaType(mediaType),
	}

	if err := doc.inspect(); err != nil {
		return nil, fmt.Errorf("Encode: %w", err)
	}

	return doc, nil
}

// EncodeFile reads a local file and determines its media type from the
// content (falling back to the file extension).
func EncodeFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("EncodeFile: open %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("EncodeFile: read %q: %w", path, err)
	}

	declared := mime.TypeByExtension(filepath.Ext(path))
	mediaType := DetectMediaType(data, declared)

	return Encode(bytes.NewReader(data), mediaType)
}

// DetectMediaType resolves the media type of a document. A declared type
// that is already supported wins; otherwise the content is sniffed
// (PDF magic, HEIC ftyp box, then stdlib content sniffing).
func DetectMediaType(data []byte, declared string) string {
	if declared = normalizeMediaType(declared); supportedMediaTypes[declared] {
		return declared
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return MediaTypePDF
	}
	if isHEIC(data) {
		return MediaTypeHEIC
	}

	return normalizeMediaType(http.DetectContentType(data))
}

// isHEIC checks for the ISO-BMFF ftyp box brands used by HEIC/HEIF
// files, which stdlib sniffing does not recognize.
func isHEIC(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heix", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func normalizeMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	// Strip parameters such as "; charset=binary".
	if idx := strings.Index(mt, ";"); idx != -1 {
		mt = strings.TrimSpace(mt[:idx])
	}
	// iPhones report image/heif for HEIC content.
	if mt == "image/heif" {
		mt = MediaTypeHEIC
	}
	return mt
}
