package utils

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lalibi/rodi-kremastos/config"
	"github.com/pkg/errors"
)

const sitemapXmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ISO-8601 UTC with milliseconds.
const lastModFormat = "2006-01-02T15:04:05.000Z"

var priorityMap = map[config.PageKey]string{
	config.Home:     "1.0",
	config.Products: "0.9",
	config.About:    "0.7",
	config.Contact:  "0.6",
}

var changeFreqMap = map[config.PageKey]string{
	config.Home:     "weekly",
	config.Products: "weekly",
	config.About:    "monthly",
	config.Contact:  "monthly",
}

type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Urls    []Url    `xml:"url"`
}

type Url struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
	LastMod    string `xml:"lastmod,omitempty"`
}

func SitemapURLs(baseURL string, lastmod time.Time) []Url {
	if baseURL == "" {
		baseURL = config.Site.URL
	}
	base := strings.TrimSuffix(baseURL, "/")
	stamp := lastmod.UTC().Format(lastModFormat)

	urls := make([]Url, 0, len(config.NavOrder))
	for _, key := range config.NavOrder {
		page := config.Pages[key]
		priority, ok := priorityMap[key]
		if !ok {
			priority = "0.5"
		}
		changefreq, ok := changeFreqMap[key]
		if !ok {
			changefreq = "monthly"
		}
		urls = append(urls, Url{
			Loc:        base + "/" + strings.TrimPrefix(page.Href, "/"),
			ChangeFreq: changefreq,
			Priority:   priority,
			LastMod:    stamp,
		})
	}
	return urls
}

func GenerateSitemapContent(baseURL string, lastmod time.Time) (string, error) {
	sitemap := Sitemap{
		Xmlns: sitemapXmlns,
		Urls:  SitemapURLs(baseURL, lastmod),
	}

	xmlOutput, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshaling sitemap")
	}

	return xml.Header + string(xmlOutput) + "\n", nil
}

func GenerateSitemaps(outDir, baseURL string, lastmod time.Time) error {
	content, err := GenerateSitemapContent(baseURL, lastmod)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(outDir, "sitemap.xml"), content)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, []byte(content), 0644))
}
