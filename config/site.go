// Package config holds the static site table (pages, organization details)
// and the runtime configuration of the build/serve commands.
package config

import (
	_ "embed"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

//go:embed site.yaml
var siteYAML []byte

var (
	// NavOrder is the order pages appear in navigation and in the sitemap.
	NavOrder []PageKey
	// Pages maps every navigation key to its page info.
	Pages map[PageKey]PageInfo
	// Site describes the business behind the site.
	Site SiteInfo
	// GalleryFallback lists, per gallery section, static images shown
	// while the section has no media of its own.
	GalleryFallback map[string][]FallbackMedia
)

func init() {
	manifest, err := ParseManifest(siteYAML)
	if err != nil {
		panic(err)
	}
	NavOrder = manifest.NavOrder
	Pages = manifest.Pages
	Site = manifest.Site
	GalleryFallback = manifest.GalleryFallback
}

// ParseManifest decodes a site table and checks that every navigation key
// has a page entry.
func ParseManifest(data []byte) (*SiteManifest, error) {
	var manifest SiteManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing site manifest")
	}
	for _, key := range manifest.NavOrder {
		if _, ok := manifest.Pages[key]; !ok {
			return nil, errors.Errorf("nav key %q has no page", key)
		}
	}
	return &manifest, nil
}

// IsPageKey reports whether s names a navigation page.
func IsPageKey(s string) bool {
	for _, key := range NavOrder {
		if string(key) == s {
			return true
		}
	}
	return false
}

// BuildTitle returns the document title for page. page may be nil, a
// PageKey, a PageInfo (or pointer to one), or a literal title string.
func BuildTitle(page any) string {
	switch p := page.(type) {
	case nil:
		return Site.Name
	case PageKey:
		return BuildTitle(string(p))
	case string:
		if p == "" {
			return Site.Name
		}
		if IsPageKey(p) {
			return Pages[PageKey(p)].Title + " — " + Site.Name
		}
		return p + " — " + Site.Name
	case PageInfo:
		return p.Title + " — " + Site.Name
	case *PageInfo:
		if p == nil {
			return Site.Name
		}
		return p.Title + " — " + Site.Name
	}
	return Site.Name
}

// ResolvePage maps page to its PageInfo. Unknown strings resolve to nothing.
func ResolvePage(page any) (PageInfo, bool) {
	switch p := page.(type) {
	case PageKey:
		return ResolvePage(string(p))
	case string:
		if p == "" || !IsPageKey(p) {
			return PageInfo{}, false
		}
		return Pages[PageKey(p)], true
	case PageInfo:
		return p, true
	case *PageInfo:
		if p == nil {
			return PageInfo{}, false
		}
		return *p, true
	}
	return PageInfo{}, false
}
