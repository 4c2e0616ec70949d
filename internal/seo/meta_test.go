package seo

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMeta = Metadata{
	Title:       "Bright Minds Tutoring",
	Description: "After-school tutoring for grades K-12.",
	Canonical:   "https://brightminds.example/",
	SiteName:    "Bright Minds",
	Image:       "https://brightminds.example/og.png",
	TwitterCard: "summary_large_image",
	Robots:      "index, follow",
}

func inject(t *testing.T, input string, meta Metadata) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, Inject(strings.NewReader(input), &out, meta))
	return out.String()
}

func TestInjectIntoBarePage(t *testing.T) {
	out := inject(t, `<!DOCTYPE html><html><head></head><body><h1>Hi</h1></body></html>`, testMeta)

	assert.Contains(t, out, "<title>Bright Minds Tutoring</title>")
	assert.Contains(t, out, `name="description" content="After-school tutoring for grades K-12."`)
	assert.Contains(t, out, `rel="canonical" href="https://brightminds.example/"`)
	assert.Contains(t, out, `property="og:title" content="Bright Minds Tutoring"`)
	assert.Contains(t, out, `property="og:site_name" content="Bright Minds"`)
	assert.Contains(t, out, `property="og:type" content="website"`)
	assert.Contains(t, out, `name="twitter:card" content="summary_large_image"`)
	assert.Contains(t, out, `name="robots" content="index, follow"`)
	assert.Contains(t, out, "<h1>Hi</h1>", "body untouched")
}

func TestInjectUpdatesExistingTags(t *testing.T) {
	input := `<html><head>
<title>Old Title</title>
<meta name="description" content="old description">
<link rel="canonical" href="https://old.example/">
</head><body></body></html>`

	out := inject(t, input, testMeta)

	assert.NotContains(t, out, "Old Title")
	assert.NotContains(t, out, "old description")
	assert.NotContains(t, out, "https://old.example/")
	assert.Equal(t, 1, strings.Count(out, "<title>"))
	assert.Equal(t, 1, strings.Count(out, `name="description"`))
	assert.Equal(t, 1, strings.Count(out, `rel="canonical"`))
}

func TestInjectIsIdempotent(t *testing.T) {
	input := `<html><head></head><body></body></html>`

	once := inject(t, input, testMeta)
	twice := inject(t, once, testMeta)

	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, `property="og:title"`))
}

func TestInjectPartialMetadataSkipsEmpty(t *testing.T) {
	out := inject(t, `<html><head></head><body></body></html>`, Metadata{Title: "Just a Title"})

	assert.Contains(t, out, "<title>Just a Title</title>")
	assert.NotContains(t, out, `name="description"`)
	assert.NotContains(t, out, `rel="canonical"`)
	assert.NotContains(t, out, `og:image`)
}

func TestInjectFileRewritesInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><head></head><body>page</body></html>`), 0644))

	require.NoError(t, InjectFile(path, testMeta))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Bright Minds Tutoring</title>")
	assert.Contains(t, string(data), "page")
}

func TestInjectFileMissing(t *testing.T) {
	err := InjectFile(filepath.Join(t.TempDir(), "nope.html"), testMeta)
	assert.Error(t, err)
}
