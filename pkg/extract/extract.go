// Package extract pulls asset and board URLs out of captured page markup.
//
// Matching is regex based. Captured markup is a concatenation of scroll
// snapshots and is rarely well-formed, so no DOM parsing is attempted; the
// image and board URLs are found as literals in the embedded JSON and hrefs.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"pinscraper/pkg/errors"
)

// SiteOrigin is prefixed to relative board hrefs
const SiteOrigin = "https://www.pinterest.com"

var (
	assetCandidate = regexp.MustCompile(`https://i\.pinimg\.com/[^\s"<>]+`)
	assetShape     = regexp.MustCompile(`^https://i\.pinimg\.com/[^/]+/[^/]+/[^/]+/[^/]+/[^/]+\.(jpg|jpeg|png|gif)$`)
	boardHref      = regexp.MustCompile(`href=["'](/([^/"']+)/[^"']*)["']`)
	profileURL     = regexp.MustCompile(`^https?://(?:[a-z]{2}\.|www\.)?pinterest\.com/([^/]+)/`)
	boardURL       = regexp.MustCompile(`^https?://(?:[a-z]{2}\.|www\.)?pinterest\.com/[^/]+/([^/]+)/`)
)

// ErrEmptyMarkup is returned when there is nothing to scan
var ErrEmptyMarkup = errors.Contract("markup")

// AssetURLs returns every distinct image URL of the form
// {tier}/{g1}/{g2}/{g3}/{file}.{jpg|jpeg|png|gif} found in markup, in the
// order first seen.
func AssetURLs(markup string) ([]string, error) {
	if markup == "" {
		return nil, ErrEmptyMarkup
	}

	seen := make(map[string]struct{})
	var urls []string
	for _, candidate := range assetCandidate.FindAllString(markup, -1) {
		if !assetShape.MatchString(candidate) {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		urls = append(urls, candidate)
	}
	return urls, nil
}

// BoardURLs returns the absolute URLs of the boards owned by username that
// are linked from markup. The _saved and _created tabs and the profile root
// are excluded.
func BoardURLs(markup, username string) ([]string, error) {
	return BoardURLsWithOrigin(markup, username, SiteOrigin)
}

// BoardURLsWithOrigin is BoardURLs with an explicit site origin
func BoardURLsWithOrigin(markup, username, origin string) ([]string, error) {
	if markup == "" {
		return nil, ErrEmptyMarkup
	}
	if strings.TrimSpace(username) == "" {
		return nil, errors.Contract("username")
	}

	origin = strings.TrimSuffix(origin, "/")
	root := "/" + strings.ToLower(username) + "/"

	seen := make(map[string]struct{})
	var urls []string
	for _, m := range boardHref.FindAllStringSubmatch(markup, -1) {
		path, owner := m[1], m[2]
		if !strings.EqualFold(owner, username) {
			continue
		}
		lower := strings.ToLower(path)
		if lower == root || strings.Contains(lower, "/_saved") || strings.Contains(lower, "/_created") {
			continue
		}
		abs := origin + path
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		urls = append(urls, abs)
	}
	return urls, nil
}

// Username returns the lower-cased account name of a profile URL
func Username(rawURL string) (string, error) {
	m := profileURL.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", errors.Parse("username", rawURL)
	}
	return strings.ToLower(m[1]), nil
}

// BoardName returns the board segment of a board URL, case preserved
func BoardName(rawURL string) (string, error) {
	m := boardURL.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return "", errors.Parse("board name", rawURL)
	}
	return m[1], nil
}

// ValidateURL checks user input before a run starts
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.Contract("url")
	}
	if !strings.Contains(strings.ToLower(raw), "pinterest") {
		return fmt.Errorf("%q is not a Pinterest URL", raw)
	}
	return nil
}
