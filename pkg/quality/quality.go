package quality

import (
	"path"
	"strings"

	"pinscraper/pkg/models"
)

// DefaultBaseOrigin is the image host every rewritten URL starts with
const DefaultBaseOrigin = "https://i.pinimg.com/"

var tiers = []string{
	models.TierOriginals,
	models.Tier736,
	models.Tier474,
	models.Tier236,
}

// AllTiers returns the quality tiers, highest fidelity first
func AllTiers() []string {
	out := make([]string, len(tiers))
	copy(out, tiers)
	return out
}

// BuildDownloadTarget rewrites assetURL to point at tier.
//
// The image host shards files by the first six characters of the file
// name: ab12cd34.jpg lives under {tier}ab/12/cd/ab12cd34.jpg. When the
// name is too short to yield three two-character groups the returned
// Asset has a nil RewrittenURL and the tier should be skipped.
func BuildDownloadTarget(assetURL, tier, baseOrigin string) models.Asset {
	fileName := assetURL[strings.LastIndex(assetURL, "/")+1:]
	ext := path.Ext(fileName)
	name := strings.TrimSuffix(fileName, ext)

	asset := models.Asset{
		SourceURL: assetURL,
		FileName:  fileName,
		Tier:      tier,
	}

	groups := shardGroups(name)
	if len(groups) != 3 {
		return asset
	}

	rewritten := baseOrigin + tier + strings.Join(groups, "/") + "/" + name + ext
	asset.RewrittenURL = &rewritten
	return asset
}

// shardGroups splits the first six characters of name into groups of two.
// Names shorter than six characters have no shard path. Characters are
// runes, so a multibyte name never splits inside a character.
func shardGroups(name string) []string {
	runes := []rune(name)
	if len(runes) < 6 {
		return nil
	}
	groups := make([]string, 0, 3)
	for i := 0; i < 6; i += 2 {
		groups = append(groups, string(runes[i:i+2]))
	}
	return groups
}

// Resolver binds BuildDownloadTarget to a configured image origin
type Resolver struct {
	baseOrigin string
}

// NewResolver creates a Resolver. An empty origin selects DefaultBaseOrigin.
func NewResolver(baseOrigin string) *Resolver {
	if baseOrigin == "" {
		baseOrigin = DefaultBaseOrigin
	}
	return &Resolver{baseOrigin: baseOrigin}
}

// Targets returns one Asset per tier in fidelity order, each stamped with
// the destination folder.
func (r *Resolver) Targets(assetURL, folder string) []models.Asset {
	out := make([]models.Asset, 0, len(tiers))
	for _, tier := range tiers {
		a := BuildDownloadTarget(assetURL, tier, r.baseOrigin)
		a.TargetFolder = folder
		out = append(out, a)
	}
	return out
}

// BaseOrigin returns the configured image origin
func (r *Resolver) BaseOrigin() string {
	return r.baseOrigin
}
