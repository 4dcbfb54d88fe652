package utils

import (
	"path/filepath"
	"strings"

	"github.com/lalibi/rodi-kremastos/config"
)

func GenerateRobotsContent(baseURL string) string {
	if baseURL == "" {
		baseURL = config.Site.URL
	}
	base := strings.TrimSuffix(baseURL, "/")
	return "User-agent: *\nAllow: /\n\nSitemap: " + base + "/sitemap.xml\n"
}

func GenerateRobots(outDir, baseURL string) error {
	return writeFile(filepath.Join(outDir, "robots.txt"), GenerateRobotsContent(baseURL))
}
