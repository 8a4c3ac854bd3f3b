package document

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for a key that names no preset or asset.
	ErrNotFound = errors.New("document: not found")
	// ErrProducer is returned when a preset cannot be rendered.
	ErrProducer = errors.New("document: producer error")
)

var pdfMagic = []byte("%PDF-")

// Validate checks that buf looks like a PDF document.
func Validate(buf []byte) error {
	if len(buf) == 0 {
		return fmt.Errorf("%w: empty document", ErrProducer)
	}
	if !bytes.HasPrefix(buf, pdfMagic) {
		return fmt.Errorf("%w: missing %s header", ErrProducer, pdfMagic)
	}
	return nil
}
