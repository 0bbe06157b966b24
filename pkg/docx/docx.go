// Package docx writes a minimal WordprocessingML document holding a
// single paragraph of text.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHead = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r>`

const documentTail = `</w:r></w:p><w:sectPr/></w:body></w:document>`

// Paragraph returns a .docx file containing text as one paragraph.
// Line breaks and tabs are kept as w:br and w:tab.
func Paragraph(text string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteParagraph(&buf, text); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func WriteParagraph(w io.Writer, text string) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rootRels},
		{"word/document.xml", documentXML(text)},
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := io.WriteString(f, p.body); err != nil {
			return fmt.Errorf("write %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close docx archive: %w", err)
	}
	return nil
}

func documentXML(text string) string {
	var b strings.Builder
	b.WriteString(documentHead)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	var run strings.Builder
	flush := func() {
		if run.Len() == 0 {
			return
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(&b, []byte(run.String()))
		b.WriteString(`</w:t>`)
		run.Reset()
	}

	for _, r := range text {
		switch r {
		case '\n', '\r':
			flush()
			b.WriteString(`<w:br/>`)
		case '\t':
			flush()
			b.WriteString(`<w:tab/>`)
		default:
			run.WriteRune(r)
		}
	}
	flush()

	b.WriteString(documentTail)
	return b.String()
}
