package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/semindex/internal/models"
)

// zipOf builds an in-memory zip from name/content pairs, in order.
func zipOf(t *testing.T, parts ...string) []byte {
	t.Helper()
	require.Zero(t, len(parts)%2)
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i := 0; i < len(parts); i += 2 {
		fw, err := w.Create(parts[i])
		require.NoError(t, err)
		_, err = fw.Write([]byte(parts[i+1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func wordDoc(text string) string {
	return `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p w:rsidR="00AB"><w:r><w:t xml:space="preserve">` +
		text + `</w:t></w:r></w:p></w:body></w:document>`
}

func slide(text string) string {
	return `<p:sld><p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`
}

func xlsxBytes(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Title"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Value 1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "Value 2"))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractBytes(t *testing.T) {
	const mainType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	tests := []struct {
		name    string
		ext     string
		content []byte
		want    string
	}{
		{"plain", ".txt", []byte("Hello world\nLine 2"), "Hello world\nLine 2"},
		{"utf8", ".md", []byte("caf\xc3\xa9"), "café"},
		{"invalid utf8", ".rst", []byte("hello\x80world"), "hello\uFFFDworld"},
		{"unknown extension", ".xyz", []byte("raw content"), "raw content"},
		{"uppercase extension", ".TXT", []byte("shout"), "shout"},
		{"excel", ".xlsx", xlsxBytes(t), "Title\nValue 1\tValue 2"},
		{"docx", ".docx", zipOf(t, "word/document.xml", wordDoc("Searchable docx content")), "Searchable docx content"},
		{
			"docx custom main part", ".docx",
			zipOf(t,
				"[Content_Types].xml", `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Override PartName="/word/document2.xml" ContentType="`+mainType+`"/></Types>`,
				"word/document2.xml", wordDoc("Content from document2")),
			"Content from document2",
		},
		{
			"docx attribute order", ".docx",
			zipOf(t,
				"[Content_Types].xml", `<Types><Override ContentType="`+mainType+`" PartName="/word/document3.xml"/></Types>`,
				"word/document3.xml", wordDoc("Reversed order test")),
			"Reversed order test",
		},
		{"pptx", ".pptx", zipOf(t, "ppt/slides/slide1.xml", slide("Searchable pptx content")), "Searchable pptx content"},
		{
			"pptx slide order", ".pptx",
			zipOf(t,
				"ppt/slides/slide10.xml", slide("Tenth"),
				"ppt/slides/slide2.xml", slide("Second"),
				"ppt/slides/slide1.xml", slide("First")),
			"First Second Tenth",
		},
		{"pptx without slides", ".pptx", zipOf(t, "ppt/slides/other.xml", "", "docProps/core.xml", ""), ""},
		{
			"odp", ".odp",
			zipOf(t, "content.xml", `<office:document><draw:page><text:h>Slide title</text:h><text:p>Body text</text:p></draw:page></office:document>`),
			"Body text Slide title",
		},
		{
			"ods", ".ods",
			zipOf(t, "content.xml", `<office:document><table:table-row><table:table-cell><text:p>Cell A</text:p></table:table-cell><table:table-cell><text:span>Cell B</text:span></table:table-cell></table:table-row></office:document>`),
			"Cell A Cell B",
		},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(tt.content, tt.ext)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractBytes_Errors(t *testing.T) {
	e := NewExtractor()
	_, err := e.ExtractBytes([]byte("not a zip"), ".pptx")
	assert.ErrorContains(t, err, "not a zip")

	_, err = e.ExtractBytes(zipOf(t, "other.xml", ""), ".odp")
	assert.ErrorContains(t, err, "content.xml not found")

	_, err = e.ExtractBytes(zipOf(t, "other.xml", ""), ".ods")
	assert.Error(t, err)

	_, err = e.ExtractBytes(zipOf(t, "other.xml", ""), ".docx")
	assert.ErrorContains(t, err, "word/document.xml not found")
}

func TestExtract_Files(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0600))
		return path
	}
	e := NewExtractor()

	doc, err := e.Extract(write("notes.txt", []byte("File content")))
	require.NoError(t, err)
	assert.Equal(t, "File content", doc.Content)
	assert.Equal(t, models.ContentTypeText, doc.ContentType)

	doc, err = e.Extract(write("deck.pptx", zipOf(t, "ppt/slides/slide1.xml", slide("Searchable from file"))))
	require.NoError(t, err)
	assert.Equal(t, "Searchable from file", doc.Content)
	assert.Equal(t, models.ContentTypeDocument, doc.ContentType)

	xlsx := filepath.Join(dir, "data.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Searchable text"))
	require.NoError(t, f.SaveAs(xlsx))
	require.NoError(t, f.Close())
	doc, err = e.Extract(xlsx)
	require.NoError(t, err)
	assert.Equal(t, "Searchable text", doc.Content)

	img := write("photo.PNG", []byte{0x89, 'P', 'N', 'G'})
	doc, err = e.Extract(img)
	require.NoError(t, err)
	assert.Equal(t, models.ContentTypeImage, doc.ContentType)
	assert.Equal(t, img, doc.Content)

	_, err = e.Extract(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
	_, err = e.Extract(filepath.Join(dir, "missing.mp3"))
	assert.Error(t, err)
}

func TestContentTypeFor(t *testing.T) {
	tests := map[string]models.ContentType{
		"a.txt":      models.ContentTypeText,
		"README":     models.ContentTypeText,
		"a.go":       models.ContentTypeText,
		"a.pdf":      models.ContentTypeDocument,
		"a.DOCX":     models.ContentTypeDocument,
		"a.rtf":      models.ContentTypeDocument,
		"a.jpeg":     models.ContentTypeImage,
		"song.mp3":   models.ContentTypeAudio,
		"clip.mov":   models.ContentTypeVideo,
		"dir/x.webm": models.ContentTypeVideo,
	}
	for path, want := range tests {
		assert.Equal(t, want, ContentTypeFor(path), path)
	}
}
