// Package corpusio reads corpus texts from disk. Plain GRETIL text, TEI XML
// and xz-compressed copies of either are supported; every format is
// normalized to marker-per-line text.
package corpusio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperCorpus/core/errors"
	"github.com/FocuswithJustin/JuniperCorpus/internal/logging"
	"github.com/FocuswithJustin/JuniperCorpus/internal/validation"
)

// Text is a corpus file ready for classification.
type Text struct {
	// Path is where the text was read from.
	Path string `json:"path"`

	// Filename is the base name with any .xz suffix removed. It is the
	// filename hint passed to the classifier.
	Filename string `json:"filename"`

	// Format is the innermost encoding of the file.
	Format validation.FileType `json:"format"`

	// Compressed reports an xz wrapper.
	Compressed bool `json:"compressed,omitempty"`

	Content string `json:"-"`
}

// Header rule written between a TEI title and its verses.
const headerRule = "-----"

var (
	// verseExpr selects numbered verse lines and paragraphs in TEI bodies.
	verseExpr = xpath.MustCompile(`//*[local-name()='body']//*[(local-name()='l' or local-name()='p') and @n]`)
	// lineExpr selects unnumbered lines when a document has no numbered ones.
	lineExpr  = xpath.MustCompile(`//*[local-name()='body']//*[local-name()='l' or local-name()='p']`)
	titleExpr = xpath.MustCompile(`//*[local-name()='teiHeader']//*[local-name()='title']`)
)

// ReadFile reads and normalizes the corpus file at path.
func ReadFile(ctx context.Context, path string) (*Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validation.ValidatePath(path); err != nil {
		return nil, &errors.ValidationError{Field: "path", Value: path, Message: err.Error(), Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	t, err := Read(f, filepath.Base(path))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	t.Path = path

	logging.CorpusLoad(ctx, path, string(t.Format), len(t.Content), "compressed", t.Compressed)
	return t, nil
}

// Read normalizes a corpus stream. name supplies the extension used to check
// the sniffed type.
func Read(r io.Reader, name string) (*Text, error) {
	kind, r, err := validation.ValidateFileType(r, name)
	if err != nil {
		return nil, &errors.ValidationError{Field: "format", Value: name, Message: err.Error(), Err: err}
	}

	t := &Text{Path: name, Filename: name}
	if kind == validation.FileTypeXZ {
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.NewIO("decompress", name, err)
		}
		t.Filename = strings.TrimSuffix(name, filepath.Ext(name))
		t.Compressed = true

		kind, r, err = validation.ValidateFileType(xzr, t.Filename)
		if err != nil {
			return nil, &errors.ValidationError{Field: "format", Value: t.Filename, Message: err.Error(), Err: err}
		}
		if kind == validation.FileTypeXZ {
			return nil, errors.NewUnsupported("nested xz", name)
		}
	}

	data, err := readLimited(r, name)
	if err != nil {
		return nil, err
	}
	t.Format = kind

	switch kind {
	case validation.FileTypeXML:
		t.Content, err = teiToText(data, name)
		if err != nil {
			return nil, err
		}
	case validation.FileTypeText:
		t.Content = strings.ToValidUTF8(string(data), "�")
	default:
		return nil, errors.NewUnsupported("corpus format", fmt.Sprintf("%s is not text, TEI or xz", name))
	}
	return t, nil
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, validation.MaxFileSize+1))
	if err != nil {
		return nil, errors.NewIO("read", name, err)
	}
	if len(data) > validation.MaxFileSize {
		return nil, errors.NewValidation("size", fmt.Sprintf("%s exceeds %d bytes", name, validation.MaxFileSize))
	}
	return data, nil
}

// teiToText renders TEI verse lines as "n text" lines under the document title.
func teiToText(data []byte, name string) (string, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return "", &errors.ParseError{Format: "tei", Path: name, Message: "malformed XML", Err: err}
	}

	var sb strings.Builder
	if title := xmlquery.QuerySelector(doc, titleExpr); title != nil {
		if s := collapse(title.InnerText()); s != "" {
			sb.WriteString(s)
			sb.WriteString("\n" + headerRule + "\n")
		}
	}

	nodes := xmlquery.QuerySelectorAll(doc, verseExpr)
	numbered := len(nodes) > 0
	if !numbered {
		nodes = xmlquery.QuerySelectorAll(doc, lineExpr)
	}
	for _, n := range nodes {
		text := collapse(n.InnerText())
		if numbered {
			text = strings.TrimSpace(n.SelectAttr("n") + " " + text)
		}
		if text == "" {
			continue
		}
		sb.WriteString(text)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HasExtension reports whether name ends with one of exts, ignoring case.
// An empty exts accepts everything.
func HasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// Walk lists the corpus files under root whose names end with one of exts,
// in lexical order. Hidden files and directories are skipped.
func Walk(ctx context.Context, root string, exts []string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.NewIO("stat", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !HasExtension(d.Name(), exts) {
			return nil
		}
		if err := validation.WithinRoot(root, path); err != nil {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}

	sort.Strings(paths)
	return paths, nil
}
