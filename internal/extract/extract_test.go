package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/ebookhub/ebookhub-server/internal/errors"
)

const containerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// buildEPUB assembles an in-memory EPUB with the given spine documents,
// writing the mimetype entry first as the format requires.
func buildEPUB(t *testing.T, docs map[string]string, spineOrder []string) []byte {
	t.Helper()

	var manifest, spine strings.Builder
	for i, name := range spineOrder {
		fmt.Fprintf(&manifest, `<item id="doc%d" href="%s" media-type="application/xhtml+xml"/>`, i, name)
		fmt.Fprintf(&spine, `<itemref idref="doc%d"/>`, i)
	}

	opf := fmt.Sprintf(`<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:identifier id="id">test-book</dc:identifier>
  </metadata>
  <manifest>%s</manifest>
  <spine>%s</spine>
</package>`, manifest.String(), spine.String())

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	mt, err := zw.Create("mimetype")
	require.NoError(t, err)
	_, err = io.WriteString(mt, "application/epub+zip")
	require.NoError(t, err)

	files := map[string]string{
		"META-INF/container.xml": containerXML,
		"OEBPS/content.opf":      opf,
	}
	for name, content := range docs {
		files["OEBPS/"+name] = content
	}

	for name, content := range files {
		fw, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractTitledAndUntitledChapters(t *testing.T) {
	data := buildEPUB(t, map[string]string{
		"ch1.xhtml": `<html><body><p class="chaptertitle">  The Beginning  </p><p>Once upon a time.</p></body></html>`,
		"ch2.xhtml": `<html><body><p>No title paragraph here.</p></body></html>`,
	}, []string{"ch1.xhtml", "ch2.xhtml"})

	entries, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "The Beginning", entries[0].Title)
	assert.Equal(t, 1, entries[0].Number)
	assert.Contains(t, entries[0].Content, "Once upon a time.")

	assert.Equal(t, "Chapter 2", entries[1].Title)
	assert.Equal(t, 2, entries[1].Number)
}

func TestExtractFollowsSpineOrder(t *testing.T) {
	// Spine order deliberately disagrees with file name order
	data := buildEPUB(t, map[string]string{
		"a.xhtml": `<html><body><p class="chaptertitle">Last</p></body></html>`,
		"b.xhtml": `<html><body><p class="chaptertitle">First</p></body></html>`,
	}, []string{"b.xhtml", "a.xhtml"})

	entries, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "First", entries[0].Title)
	assert.Equal(t, "Last", entries[1].Title)
}

func TestExtractMultiClassTitle(t *testing.T) {
	data := buildEPUB(t, map[string]string{
		"ch1.xhtml": `<html><body><p class="fancy chaptertitle centered">Styled Title</p></body></html>`,
	}, []string{"ch1.xhtml"})

	entries, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Styled Title", entries[0].Title)
}

func TestExtractInvalidArchive(t *testing.T) {
	_, err := Extract([]byte("definitely not a zip file"))
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeExtraction, derr.Code)
}

func TestExtractMissingSpineEntry(t *testing.T) {
	// Spine references a document that is not present in the archive
	data := buildEPUB(t, map[string]string{
		"ch1.xhtml": `<html><body><p class="chaptertitle">One</p></body></html>`,
	}, []string{"ch1.xhtml", "ghost.xhtml"})

	_, err := Extract(data)
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeExtraction, derr.Code)
}

func TestExtractEmptySpine(t *testing.T) {
	data := buildEPUB(t, map[string]string{}, []string{})

	entries, err := Extract(data)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
