package browser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinscraper/pkg/capture"
)

var _ capture.PageDriver = (*Driver)(nil)

func TestVisibilityScriptQuotesSelector(t *testing.T) {
	script, err := visibilityScript(`div[data-test-id="footer"]`)
	require.NoError(t, err)

	assert.Contains(t, script, `document.querySelector("div[data-test-id=\"footer\"]")`)
	assert.True(t, strings.HasPrefix(script, "(() => {"))
	assert.True(t, strings.HasSuffix(script, "})()"))
}

func TestDriverCloseIsIdempotent(t *testing.T) {
	calls := 0
	d := &Driver{cancel: func() { calls++ }}
	d.closed = true

	assert.NoError(t, d.Close())
	assert.Equal(t, 0, calls)
}

func TestFindChromePathPrefersEnv(t *testing.T) {
	chrome := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(chrome, []byte("#!/bin/sh\n"), 0755))

	t.Setenv("CHROME_PATH", chrome)
	assert.Equal(t, chrome, FindChromePath())
}

func TestFindChromePathIgnoresMissingEnv(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-chrome")
	t.Setenv("CHROME_PATH", missing)

	assert.NotEqual(t, missing, FindChromePath())
}
