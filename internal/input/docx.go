// internal/input/docx.go
package input

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parseDocx reads the main document part of a .docx package and returns URL
// candidates found in its paragraph text. A .docx file is a zip archive; the
// document body lives at word/document.xml.
func (l *Loader) parseDocx(path string) ([]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx package: %w", err)
	}
	defer archive.Close()

	var document io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("open document part: %w", err)
			}
			break
		}
	}
	if document == nil {
		return nil, fmt.Errorf("docx package has no word/document.xml")
	}
	defer document.Close()

	paragraphs, err := docxParagraphs(document)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, p := range paragraphs {
		candidates = append(candidates, extractCandidates(p)...)
	}
	return candidates, nil
}

// docxParagraphs streams the WordprocessingML body, joining the text runs
// (w:t) of each paragraph (w:p).
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document xml: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(current.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	if text := strings.TrimSpace(current.String()); text != "" {
		paragraphs = append(paragraphs, text)
	}
	return paragraphs, nil
}
