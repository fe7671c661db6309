package resume

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported resume format")
	ErrExtraction        = errors.New("resume text extraction failed")
)

// TextExtractor turns a résumé file into raw text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// FileTextExtractor reads plain text, PDF and DOCX files from disk.
type FileTextExtractor struct{}

func (FileTextExtractor) Extract(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("resume file %q: %w", path, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

func extractPDF(path string) (text string, err error) {
	// the pdf reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: pdf %q: %v", ErrExtraction, path, r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: pdf %q: %v", ErrExtraction, path, err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf %q: %v", ErrExtraction, path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("%w: pdf %q: %v", ErrExtraction, path, err)
	}
	return buf.String(), nil
}

func extractDOCX(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: docx %q: %v", ErrExtraction, path, err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: docx %q: %v", ErrExtraction, path, err)
		}
		defer rc.Close()

		text, err := documentText(rc)
		if err != nil {
			return "", fmt.Errorf("%w: docx %q: %v", ErrExtraction, path, err)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: docx %q: word/document.xml not found", ErrExtraction, path)
}

// documentText collects the runs of a WordprocessingML body, one paragraph per line.
func documentText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)

	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
