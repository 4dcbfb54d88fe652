// Package media discovers the photos and videos shown in the site galleries
// and derives a caption for each from embedded metadata or its filename.
package media

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Type string

const (
	Image Type = "image"
	Video Type = "video"
)

// Item is a gallery entry. Src is the final URL of the asset.
type Item struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Type   Type   `json:"type,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Thumb  string `json:"thumb,omitempty"`
}

// Fallback is a gallery entry whose Src is a bare filename, resolved
// against a public base path by MergeAssetsOrFallback.
type Fallback struct {
	Src  string
	Alt  string
	Type Type
}

// Asset is a resolved asset reference.
type Asset struct {
	Src string
}

var (
	extPattern       = regexp.MustCompile(`\.[^.]+$`)
	separatorPattern = regexp.MustCompile(`[-_]+`)
)

// HumanizeFromPath turns "photos/about/old-trees_2019.jpg" into "old trees 2019".
func HumanizeFromPath(p string) string {
	file := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		file = p[i+1:]
	}
	base := extPattern.ReplaceAllString(file, "")
	return strings.TrimSpace(separatorPattern.ReplaceAllString(base, " "))
}

// PickAltFromMeta returns the first usable caption in meta, in order of
// preference: IPTC caption and object name, XMP description and title, the
// EXIF descriptions, then plain title/description text chunks.
func PickAltFromMeta(meta *Metadata) (string, bool) {
	if meta == nil {
		return "", false
	}
	candidates := []string{
		meta.IPTC.Caption,
		meta.IPTC.ObjectName,
		meta.XMP.Description,
		meta.XMP.Title,
		meta.ImageDescription,
		meta.XPTitle,
		meta.XPComment,
		meta.Title,
		meta.Description,
	}
	for _, c := range candidates {
		if s := strings.TrimSpace(c); s != "" {
			return s, true
		}
	}
	return "", false
}

// assetURL accepts the shapes an asset reference comes in: a plain URL,
// something carrying a src, or anything printable.
func assetURL(u any) string {
	switch v := u.(type) {
	case string:
		return v
	case Asset:
		return v.Src
	case *Asset:
		if v != nil {
			return v.Src
		}
	case map[string]string:
		if src, ok := v["src"]; ok {
			return src
		}
	case map[string]any:
		if src, ok := v["src"]; ok {
			if s, ok := src.(string); ok {
				return s
			}
			return fmt.Sprint(src)
		}
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(u)
}

// NormalizeModules turns a path → asset reference map into items whose alt
// text comes from the path, sorted by src.
func NormalizeModules(modules map[string]any, typ Type) []Item {
	items := make([]Item, 0, len(modules))
	for p, u := range modules {
		items = append(items, Item{
			Src:  assetURL(u),
			Alt:  HumanizeFromPath(p),
			Type: typ,
		})
	}
	SortBySrc(items)
	return items
}

// MergeAssetsOrFallback prefers discovered assets; when there are none the
// fallback entries are resolved against basePublic.
func MergeAssetsOrFallback(assets []Item, fallback []Fallback, basePublic string) []Item {
	if len(assets) > 0 {
		return assets
	}
	base := basePublic
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	out := make([]Item, 0, len(fallback))
	for _, f := range fallback {
		out = append(out, Item{
			Src:  base + f.Src,
			Alt:  f.Alt,
			Type: f.Type,
		})
	}
	return out
}

// SortBySrc orders items by src using locale-aware comparison, so case and
// accents do not dominate the order. Percent-encoded srcs compare by the
// names they encode.
func SortBySrc(items []Item) {
	keys := make(map[string]string, len(items))
	for _, item := range items {
		keys[item.Src] = sortKey(item.Src)
	}

	c := collate.New(language.Und)
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := c.CompareString(keys[items[i].Src], keys[items[j].Src]); cmp != 0 {
			return cmp < 0
		}
		return items[i].Src < items[j].Src
	})
}

func sortKey(src string) string {
	if name, err := url.PathUnescape(src); err == nil {
		return name
	}
	return src
}
