package config

import (
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Target describes where a build is deployed.
type Target struct {
	Name     string
	SiteURL  string
	BasePath string
}

// Targets lists the known deployments: the custom domain at the root, and
// the GitHub Pages project site under a sub-path.
var Targets = map[string]Target{
	"prod": {Name: "prod", SiteURL: "https://rodi-kremastos.gr", BasePath: "/"},
	"gh":   {Name: "gh", SiteURL: "https://lalibi.github.io/rodi-kremastos", BasePath: "/rodi-kremastos"},
}

const DefaultTarget = "prod"

func LookupTarget(name string) (Target, error) {
	t, ok := Targets[name]
	if !ok {
		names := make([]string, 0, len(Targets))
		for n := range Targets {
			names = append(names, n)
		}
		sort.Strings(names)
		return Target{}, errors.Errorf("unknown target %q (known: %s)", name, strings.Join(names, ", "))
	}
	return t, nil
}

// Config is the runtime configuration shared by the serve and build commands.
type Config struct {
	Target    string        `mapstructure:"target"`
	SiteURL   string        `mapstructure:"site_url"`
	BasePath  string        `mapstructure:"base_path"`
	MediaDir  string        `mapstructure:"media_dir"`
	StaticDir string        `mapstructure:"static_dir"`
	OutDir    string        `mapstructure:"out_dir"`
	Port      string        `mapstructure:"port"`
	Watch     bool          `mapstructure:"watch"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// WithDefaults fills empty fields from the selected target and the
// conventional project layout.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.Target == "" {
		out.Target = DefaultTarget
	}
	if t, ok := Targets[out.Target]; ok {
		if out.SiteURL == "" {
			out.SiteURL = t.SiteURL
		}
		if out.BasePath == "" {
			out.BasePath = t.BasePath
		}
	}
	if out.SiteURL == "" {
		out.SiteURL = Site.URL
	}
	out.SiteURL = strings.TrimSuffix(out.SiteURL, "/")
	out.BasePath = normalizeBase(out.BasePath)
	if out.MediaDir == "" {
		out.MediaDir = "assets/photos"
	}
	if out.StaticDir == "" {
		out.StaticDir = "static"
	}
	if out.OutDir == "" {
		out.OutDir = "public"
	}
	if out.Port == "" {
		out.Port = "9010"
	}
	if out.CacheTTL == 0 {
		out.CacheTTL = 5 * time.Minute
	}
	return &out
}

func (c *Config) Validate() error {
	_, err := LookupTarget(c.Target)
	return err
}

// Href prefixes a site-relative href with the base path.
func (c *Config) Href(href string) string {
	base := normalizeBase(c.BasePath)
	if base == "/" {
		return "/" + strings.TrimPrefix(href, "/")
	}
	if href == "" || href == "/" {
		return base + "/"
	}
	return base + "/" + strings.TrimPrefix(href, "/")
}

func (c *Config) AbsURL(href string) string {
	return strings.TrimSuffix(c.SiteURL, "/") + "/" + strings.TrimPrefix(href, "/")
}

// normalizeBase returns "/" or a path with a leading and no trailing slash.
func normalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return "/"
	}
	return "/" + base
}
