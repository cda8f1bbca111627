package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/lu4p/cat"
)

const (
	contentTypesPart = "[Content_Types].xml"
	docxDefaultPart  = "word/document.xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	openDocumentPart = "content.xml"
	slidePrefix      = "ppt/slides/slide"
)

var (
	wordText    = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	drawingText = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)
	odfPara     = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odfSpan     = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
	odfHeading  = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)
)

// openZip opens an office package held in memory.
func openZip(format string, content []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("extract %s: not a zip: %w", format, err)
	}
	return zr, nil
}

// readPart returns the bytes of the named part, or nil when it is absent.
func readPart(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, nil
}

// collectText appends the first capture group of every pattern match, pattern by
// pattern, separated by single spaces.
func collectText(b *strings.Builder, doc string, patterns ...*regexp.Regexp) {
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(doc, -1) {
			text := strings.TrimSpace(m[1])
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}

type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// docxMainPart resolves the main document part from [Content_Types].xml, falling back
// to word/document.xml.
func docxMainPart(zr *zip.Reader) string {
	data, err := readPart(zr, contentTypesPart)
	if err != nil || data == nil {
		return docxDefaultPart
	}
	var ct contentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return docxDefaultPart
	}
	for _, o := range ct.Overrides {
		if o.ContentType == docxMainType {
			return strings.TrimPrefix(o.PartName, "/")
		}
	}
	return docxDefaultPart
}

// extractDOCX pulls every <w:t> run out of the main document part. lu4p/cat is not
// used here because its paragraph regex misses <w:p> elements that carry attributes.
func extractDOCX(content []byte) (string, error) {
	zr, err := openZip("DOCX", content)
	if err != nil {
		return "", err
	}
	part := docxMainPart(zr)
	doc, err := readPart(zr, part)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	if doc == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", part)
	}
	var b strings.Builder
	collectText(&b, string(doc), wordText)
	return b.String(), nil
}

// extractPPTX reads slides in slide-number order.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip("PPTX", content)
	if err != nil {
		return "", err
	}
	var slides []*zip.File
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, slidePrefix) && strings.HasSuffix(f.Name, ".xml") {
			slides = append(slides, f)
		}
	}
	sort.Slice(slides, func(i, j int) bool {
		a, b := slides[i].Name, slides[j].Name
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	var b strings.Builder
	for _, f := range slides {
		doc, err := readPart(zr, f.Name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: %w", err)
		}
		collectText(&b, string(doc), drawingText)
	}
	return b.String(), nil
}

func extractOpenDocument(format string, content []byte, patterns ...*regexp.Regexp) (string, error) {
	zr, err := openZip(format, content)
	if err != nil {
		return "", err
	}
	doc, err := readPart(zr, openDocumentPart)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", format, err)
	}
	if doc == nil {
		return "", fmt.Errorf("extract %s: %s not found", format, openDocumentPart)
	}
	var b strings.Builder
	collectText(&b, string(doc), patterns...)
	return b.String(), nil
}

func extractODP(content []byte) (string, error) {
	return extractOpenDocument("ODP", content, odfPara, odfSpan, odfHeading)
}

func extractODS(content []byte) (string, error) {
	return extractOpenDocument("ODS", content, odfPara, odfSpan)
}

// extractWithCat handles formats lu4p/cat reads well (.odt, .rtf). cat dispatches on
// the file extension, so the bytes are spooled to a temp file carrying ext.
func extractWithCat(ext string) textFunc {
	return func(content []byte) (string, error) {
		f, err := os.CreateTemp("", "semindex-extract-*"+ext)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		defer os.Remove(f.Name())
		if _, err := f.Write(content); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		text, err := cat.File(f.Name())
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		return strings.TrimSpace(text), nil
	}
}
