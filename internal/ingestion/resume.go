package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ErrEmptyResume is returned when a document yields no text.
var ErrEmptyResume = errors.New("résumé contains no readable text")

// UnsupportedTypeError is returned for file extensions that cannot be converted.
type UnsupportedTypeError struct {
	Extension string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported résumé file type %q (supported: %s)", e.Extension, strings.Join(SupportedExtensions(), ", "))
}

// SupportedExtensions lists the accepted résumé file extensions.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".pdf", ".docx", ".doc", ".rtf", ".odt"}
}

// IsSupported reports whether filename has a supported extension.
func IsSupported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions() {
		if s == ext {
			return true
		}
	}
	return false
}

// ExtractResumeText converts an uploaded résumé into cleaned plain text.
// Plain text and markdown are read directly; office documents and PDFs go through docconv.
func ExtractResumeText(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !IsSupported(filename) {
		return "", &UnsupportedTypeError{Extension: ext}
	}

	var text string
	switch ext {
	case ".txt", ".md":
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read résumé: %w", err)
		}
		text = string(data)
	default:
		converted, err := convertDocument(ext, r)
		if err != nil {
			return "", err
		}
		text = converted
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", ErrEmptyResume
	}
	return cleaned, nil
}

// ExtractResumeFile reads and converts a résumé from disk.
func ExtractResumeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to open résumé: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ExtractResumeText(filepath.Base(path), f)
}

// convertDocument spools the upload to a temp file so docconv can pick the converter by extension.
func convertDocument(ext string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "resume-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to save résumé: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save résumé: %w", err)
	}

	res, err := docconv.ConvertPath(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	return res.Body, nil
}
