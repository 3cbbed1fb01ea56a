package pdftext

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadable is returned for documents that cannot be parsed as PDF.
var ErrUnreadable = errors.New("unreadable pdf")

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) ExtractFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	return e.Extract(f, info.Size())
}

// Extract returns the text of every page in page order. Page texts are
// concatenated as-is. Fonts are decoded through their ToUnicode maps.
func (e *Extractor) Extract(r io.ReaderAt, size int64) (text string, err error) {
	// The reader panics on some malformed object graphs.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	fonts := make(map[string]*pdf.Font)
	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}

		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}

		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", ErrUnreadable, i, err)
		}
		b.WriteString(pageText)
	}
	return b.String(), nil
}
