package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, looksLikeHTML("text/html; charset=utf-8", []byte("PK")))
	assert.True(t, looksLikeHTML("", []byte("  <!DOCTYPE html><html></html>")))
	assert.True(t, looksLikeHTML("application/octet-stream", []byte("<HTML><body>")))
	assert.False(t, looksLikeHTML("application/octet-stream", []byte("PK\x03\x04")))
	assert.False(t, looksLikeHTML("", nil))
}

func TestExtractDownloadLinkAnchor(t *testing.T) {
	page := []byte(`<html><body><a id="uc-download-link" href="/uc?export=download&amp;confirm=abc&amp;id=X">Download anyway</a></body></html>`)

	link, err := extractDownloadLink("https://drive.google.com/uc?export=download&id=X", page)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/uc?export=download&confirm=abc&id=X", link)
}

func TestExtractDownloadLinkForm(t *testing.T) {
	page := []byte(`<html><body>
		<form id="download-form" action="https://drive.usercontent.google.com/download" method="get">
			<input type="hidden" name="id" value="X">
			<input type="hidden" name="export" value="download">
			<input type="submit" value="Download anyway">
		</form></body></html>`)

	link, err := extractDownloadLink("https://drive.google.com/uc?export=download&id=X", page)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.usercontent.google.com/download?export=download&id=X", link)
}

func TestExtractDownloadLinkNone(t *testing.T) {
	link, err := extractDownloadLink("https://accounts.example.com/", []byte(`<html><body>Sign in</body></html>`))
	require.NoError(t, err)
	assert.Empty(t, link)
}
