package qrcode_test

import (
	"bytes"
	"testing"

	"essayons/internal/qrcode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLink(t *testing.T) {
	link, err := qrcode.TableLink("https://example.com/base", "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/toolbox?table=abc-123", link)

	_, err = qrcode.TableLink("example.com", "x")
	assert.Error(t, err)
}

func TestGeneratePNG(t *testing.T) {
	png, err := qrcode.Generate("https://example.com/toolbox?table=1", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
