package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ebookhub/ebookhub-server/internal/domain"
	"github.com/ebookhub/ebookhub-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *store.Store, id, username string, role domain.Role) *domain.User {
	t.Helper()

	user := &domain.User{
		Syncable: domain.Syncable{
			ID: id,
		},
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FullName:     "Test User",
		Role:         role,
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createTestBook(t *testing.T, s *store.Store, id, title, publisherID string, canFork bool) *domain.Book {
	t.Helper()

	book := &domain.Book{
		Syncable: domain.Syncable{
			ID: id,
		},
		Title:         title,
		PublisherID:   publisherID,
		DatePublished: time.Now(),
		CanFork:       canFork,
	}
	book.InitTimestamps()
	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}

const testContainerXML = `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// buildTestEPUB assembles an in-memory EPUB with the given spine documents.
func buildTestEPUB(t *testing.T, docs map[string]string, spineOrder []string) []byte {
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
		"META-INF/container.xml": testContainerXML,
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

// testPNG renders a small solid-color image for cover tests.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}
