package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()

		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(body)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

// paragraphText reads the document back the way a word processor would.
func paragraphText(t *testing.T, doc string) string {
	t.Helper()

	dec := xml.NewDecoder(strings.NewReader(doc))
	var out strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "br":
				out.WriteString("\n")
			case "tab":
				out.WriteString("\t")
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				out.Write(el)
			}
		}
	}
	return out.String()
}

func TestParagraph(t *testing.T) {
	data, err := Paragraph("Привет <мир> & \"друзья\"\nвторая\tстрока")
	require.NoError(t, err)

	require.Contains(t, readPart(t, data, "[Content_Types].xml"), "/word/document.xml")
	require.Contains(t, readPart(t, data, "_rels/.rels"), "word/document.xml")

	doc := readPart(t, data, "word/document.xml")
	require.Equal(t, 1, strings.Count(doc, "<w:p>"))
	require.Equal(t, "Привет <мир> & \"друзья\"\nвторая\tстрока", paragraphText(t, doc))
}

func TestParagraph_Empty(t *testing.T) {
	data, err := Paragraph("")
	require.NoError(t, err)

	doc := readPart(t, data, "word/document.xml")
	require.Equal(t, "", paragraphText(t, doc))
	require.Contains(t, doc, "<w:p>")
}

func TestParagraph_CRLF(t *testing.T) {
	data, err := Paragraph("a\r\nb")
	require.NoError(t, err)
	require.Equal(t, "a\nb", paragraphText(t, readPart(t, data, "word/document.xml")))
}
