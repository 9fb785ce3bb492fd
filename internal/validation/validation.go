// Package validation checks corpus paths and sniffs corpus file types before
// they are read.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on corpus input.
const (
	// MaxFileSize is the maximum corpus file size after decompression (64 MB).
	MaxFileSize = 64 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrTypeMismatch     = errors.New("file type mismatch")
)

// ValidatePath rejects empty, overlong and control-character paths.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// WithinRoot reports an error unless path resolves inside root. Batch walks
// use it so symlinked or "../" entries cannot pull in files outside the corpus.
func WithinRoot(root, path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve corpus root: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrPathTraversal
	}
	return nil
}

// FileType is a corpus file encoding.
type FileType string

const (
	FileTypeText    FileType = "text"
	FileTypeXML     FileType = "xml"
	FileTypeXZ      FileType = "xz"
	FileTypeUnknown FileType = "unknown"
)

var xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

// FileTypeFromExtension returns the type a corpus filename claims. A ".xz"
// suffix wins over the inner extension.
func FileTypeFromExtension(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xz":
		return FileTypeXZ
	case ".xml", ".tei":
		return FileTypeXML
	case ".txt", ".htm", ".gretil", "":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// DetectFileType sniffs the leading bytes of a corpus file.
func DetectFileType(head []byte) FileType {
	switch {
	case bytes.HasPrefix(head, xzMagic):
		return FileTypeXZ
	case looksLikeXML(head):
		return FileTypeXML
	case isLikelyText(head):
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// ValidateFileType reads the head of r and checks it against the type the
// filename claims. The returned reader replays the consumed bytes.
func ValidateFileType(r io.Reader, filename string) (FileType, io.Reader, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, nil, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]
	replay := io.MultiReader(bytes.NewReader(buf), r)

	detected := DetectFileType(buf)
	expected := FileTypeFromExtension(filename)

	switch {
	case expected == FileTypeUnknown:
		return detected, replay, nil
	case detected == expected:
		return detected, replay, nil
	case expected == FileTypeText && detected == FileTypeXML:
		// GRETIL .htm and plain files often open with markup.
		return FileTypeText, replay, nil
	case n == 0 && expected != FileTypeXZ:
		return expected, replay, nil
	}
	return FileTypeUnknown, nil, fmt.Errorf("%w: extension suggests %s but content is %s", ErrTypeMismatch, expected, detected)
}

func looksLikeXML(buf []byte) bool {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(buf, []byte("\xef\xbb\xbf")), " \t\r\n")
	return bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<TEI"))
}

// isLikelyText reports whether buf is mostly printable UTF-8.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable, control := 0, 0
	for len(buf) > 0 {
		r, size := utf8.DecodeRune(buf)
		buf = buf[size:]
		switch {
		case r == utf8.RuneError && size == 1:
			// A rune cut at the 512-byte boundary is not evidence of binary.
			if len(buf) < utf8.UTFMax {
				continue
			}
			control++
		case r == '\t' || r == '\n' || r == '\r' || unicode.IsPrint(r):
			printable++
		default:
			control++
		}
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
