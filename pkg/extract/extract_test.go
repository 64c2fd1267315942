package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinscraper/pkg/errors"
)

func TestAssetURLs(t *testing.T) {
	markup := `<div>
<img src="https://i.pinimg.com/236x/2b/30/69/2b30694abd53a6de1799dc44ffbf9f9d.jpg">
<img src="https://i.pinimg.com/236x/2b/30/69/2b30694abd53a6de1799dc44ffbf9f9d.jpg">
<script>{"url":"https://i.pinimg.com/736x/aa/bb/cc/aabbccdd.png"}</script>
<img src="https://i.pinimg.com/75x75_RS/2b/30/avatar.jpg">
<img src="https://i.pinimg.com/236x/11/22/33/video.mp4">
<link href="https://s.pinimg.com/webapp/style.css">
</div>`

	urls, err := AssetURLs(markup)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://i.pinimg.com/236x/2b/30/69/2b30694abd53a6de1799dc44ffbf9f9d.jpg",
		"https://i.pinimg.com/736x/aa/bb/cc/aabbccdd.png",
	}, urls)
}

func TestAssetURLsSingleLiteral(t *testing.T) {
	valid := []string{
		"https://i.pinimg.com/originals/ab/12/cd/ab12cd34ef.jpg",
		"https://i.pinimg.com/474x/00/ff/9e/00ff9e.jpeg",
		"https://i.pinimg.com/236x/de/ad/be/deadbeef.gif",
		"https://i.pinimg.com/736x/12/34/56/123456789.png",
	}

	for _, u := range valid {
		t.Run(u, func(t *testing.T) {
			for _, markup := range []string{
				u,
				`<img src="` + u + `">`,
				`<img src="` + u + `"><img src="` + u + `"> ` + u,
			} {
				urls, err := AssetURLs(markup)
				require.NoError(t, err)
				assert.Equal(t, []string{u}, urls)
			}
		})
	}
}

func TestAssetURLsEmptyMarkup(t *testing.T) {
	_, err := AssetURLs("")
	require.ErrorIs(t, err, ErrEmptyMarkup)
	assert.True(t, errors.IsType(err, errors.ErrorTypeContract))
}

func TestAssetURLsNoMatches(t *testing.T) {
	urls, err := AssetURLs("<html><body>nothing here</body></html>")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestBoardURLs(t *testing.T) {
	markup := `
<a href="/alice/">Profile</a>
<a href="/alice/boardX/">Board X</a>
<a href="/alice/_saved/">Saved</a>
<a href="/alice/_created/">Created</a>
<a href='/alice/travel/'>Travel</a>
<a href="/alice/boardX/">Board X again</a>
<a href="/bob/cats/">Someone else</a>
<a href="/ideas/">Ideas</a>`

	urls, err := BoardURLs(markup, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.pinterest.com/alice/boardX/",
		"https://www.pinterest.com/alice/travel/",
	}, urls)
}

func TestBoardURLsSavedOnly(t *testing.T) {
	urls, err := BoardURLs(`<a href="/alice/boardX/">x</a><a href="/alice/_saved/">s</a>`, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.pinterest.com/alice/boardX/"}, urls)
}

func TestBoardURLsCaseInsensitiveOwner(t *testing.T) {
	urls, err := BoardURLsWithOrigin(`<a href="/Alice/Recipes/">r</a>`, "alice", "https://site.test/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://site.test/Alice/Recipes/"}, urls)
}

func TestBoardURLsContract(t *testing.T) {
	_, err := BoardURLs("", "alice")
	assert.ErrorIs(t, err, ErrEmptyMarkup)

	_, err = BoardURLs("<a href=\"/alice/x/\">", "   ")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeContract))
}

func TestUsername(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://www.pinterest.com/alice/", want: "alice"},
		{url: "https://pinterest.com/Alice/", want: "alice"},
		{url: "https://uk.pinterest.com/BobSmith/boards/", want: "bobsmith"},
		{url: "http://www.pinterest.com/carol/travel/", want: "carol"},
		{url: "https://www.pinterest.com/alice", wantErr: true},
		{url: "https://example.com/alice/", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := Username(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBoardName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "https://pinterest.com/alice/travel/", want: "travel"},
		{url: "https://www.pinterest.com/alice/Summer-Recipes/", want: "Summer-Recipes"},
		{url: "https://fr.pinterest.com/alice/voyage/pins/", want: "voyage"},
		{url: "https://www.pinterest.com/alice/", wantErr: true},
		{url: "https://www.pinterest.com/alice/travel", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := BoardName(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://www.pinterest.com/alice/travel/"))
	assert.NoError(t, ValidateURL("  https://PINTEREST.com/alice/ "))
	assert.Error(t, ValidateURL(""))
	assert.Error(t, ValidateURL("   "))

	err := ValidateURL("https://example.com/alice/")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not a Pinterest URL"))
}
