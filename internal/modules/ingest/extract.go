package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

// ExtractError reports an unreadable or unsupported upload. Handlers map it
// to 422 instead of a generic server error.
type ExtractError struct {
	Filename string
	Err      error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cannot extract text from %q: %v", e.Filename, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

type extractFunc func(data []byte) (string, error)

var extractors = map[string]extractFunc{
	".txt":  extractPlain,
	".md":   extractMarkdown,
	".pdf":  extractPDF,
	".docx": extractDocx,
}

// Extract pulls plain text out of an uploaded document, dispatching on the
// file extension.
func Extract(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fn, ok := extractors[ext]
	if !ok {
		return "", &ExtractError{Filename: filename, Err: fmt.Errorf("unsupported format %q", ext)}
	}
	text, err := fn(data)
	if err != nil {
		return "", &ExtractError{Filename: filename, Err: err}
	}
	return text, nil
}

func extractPlain(data []byte) (string, error) {
	if !isMostlyText(data) {
		return "", fmt.Errorf("binary content")
	}
	return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), nil
}

func isMostlyText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	var control int
	for _, b := range data {
		if b == 0 {
			return false
		}
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			control++
		}
	}
	return control*100/len(data) < 5
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// extractMarkdown parses the document with goldmark and emits one text
// block per top-level AST node, so headings, paragraphs, list items and
// code fences each survive as their own paragraph.
func extractMarkdown(data []byte) (string, error) {
	doc := markdownEngine.Parser().Parse(gmtext.NewReader(data))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if n.Kind() == ast.KindThematicBreak {
			continue
		}
		var sb strings.Builder
		collectBlockText(n, data, &sb)
		block := strings.TrimSpace(sb.String())
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

func collectBlockText(n ast.Node, source []byte, sb *strings.Builder) {
	// Lines is only valid on block nodes; goldmark panics for inline nodes.
	if n.Type() == ast.TypeBlock {
		if lines := n.Lines(); lines != nil && lines.Len() > 0 {
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				sb.Write(seg.Value(source))
			}
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		collectBlockText(c, source, sb)
	}
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	body, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

// extractDocx reads word/document.xml from the OOXML archive. Each w:p
// element becomes one paragraph.
func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docXML io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("word/document.xml missing")
	}
	defer docXML.Close()

	dec := xml.NewDecoder(docXML)
	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "t":
				inText = inPara
			case "br", "cr":
				if inPara {
					current.WriteByte('\n')
				}
			case "tab":
				if inPara {
					current.WriteByte('\t')
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inPara {
					paragraphs = append(paragraphs, current.String())
					inPara = false
				}
			}
		}
	}
	return strings.Join(paragraphs, "\n\n"), nil
}
