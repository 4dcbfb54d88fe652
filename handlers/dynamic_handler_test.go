package handlers

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lalibi/rodi-kremastos/config"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/lalibi/rodi-kremastos/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

type testSite struct {
	*Site
	mediaDir string
}

func newTestSite(t *testing.T, target string) *testSite {
	t.Helper()
	root := t.TempDir()
	mediaDir := filepath.Join(root, "photos")
	staticDir := filepath.Join(root, "static")
	require.NoError(t, os.MkdirAll(mediaDir, 0o755))
	writeTestFile(t, filepath.Join(staticDir, "logo.svg"), []byte("<svg></svg>"))
	writeTestFile(t, filepath.Join(staticDir, "gallery", "pomegranates.svg"), []byte("<svg></svg>"))

	cfg := (&config.Config{Target: target, MediaDir: mediaDir, StaticDir: staticDir}).WithDefaults()
	lib := media.NewLibrary(mediaDir, cfg.Href("/media/"))
	lib.ThumbWidth = 4

	site, err := SetupRouter(cfg, lib, media.NewCache(lib, time.Minute))
	require.NoError(t, err)
	site.Now = func() time.Time { return testNow }

	return &testSite{Site: site, mediaDir: mediaDir}
}

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 180, G: 20, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPages(t *testing.T) {
	site := newTestSite(t, "prod")

	for _, key := range config.NavOrder {
		page := config.Pages[key]
		t.Run(string(key), func(t *testing.T) {
			resp, body := get(t, site, page.Href)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

			assert.Contains(t, body, "<title>"+config.BuildTitle(key)+"</title>")
			assert.Contains(t, body, `<link rel="canonical" href="https://rodi-kremastos.gr`+page.Href+`">`)
			assert.Contains(t, body, `href="`+page.Href+`" aria-current="page"`)
			assert.Contains(t, body, `<script type="application/ld+json">{`)
			assert.Contains(t, body, "© 2024")
		})
	}
}

func TestPageContent(t *testing.T) {
	site := newTestSite(t, "prod")

	_, about := get(t, site, "/about")
	assert.Contains(t, about, "<h1>Η ιστορία μας</h1>")

	_, products := get(t, site, "/products")
	assert.Contains(t, products, "Χυμός ροδιού")
	assert.Contains(t, products, "Λικέρ ροδιού")

	_, contact := get(t, site, "/contact")
	assert.Contains(t, contact, `href="tel:+306983384229"`)
	assert.Contains(t, contact, "mailto:"+config.Site.Organization.Email)
	assert.Contains(t, contact, "https://www.google.com/maps/search/?api=1&amp;query=")
}

func TestSubPathTarget(t *testing.T) {
	site := newTestSite(t, "gh")

	resp, body := get(t, site, "/rodi-kremastos/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/rodi-kremastos/about"`)
	assert.Contains(t, body, `href="/rodi-kremastos/"`)
	assert.Contains(t, body, `href="https://lalibi.github.io/rodi-kremastos/products"`)
	assert.Contains(t, body, `src="/rodi-kremastos/js/`+site.Script.Name+`"`)

	resp, _ = get(t, site, "/rodi-kremastos/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, site, "/rodi-kremastos")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/rodi-kremastos/", resp.Header.Get("Location"))

	resp, _ = get(t, site, "/products")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotFound(t *testing.T) {
	site := newTestSite(t, "prod")

	resp, body := get(t, site, "/no-such-page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Η σελίδα δεν βρέθηκε")
	assert.Contains(t, body, "<title>Η σελίδα δεν βρέθηκε — Ρόδι Κρεμαστός</title>")
}

func TestGalleryFallback(t *testing.T) {
	site := newTestSite(t, "gh")

	_, body := get(t, site, "/rodi-kremastos/about")
	assert.Contains(t, body, `src="/rodi-kremastos/static/gallery/pomegranates.svg"`)
	assert.Contains(t, body, config.GalleryFallback["about"][0].Alt)

	resp, _ := get(t, site, "/rodi-kremastos/static/gallery/pomegranates.svg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGalleryDiscovered(t *testing.T) {
	site := newTestSite(t, "prod")
	writeTestFile(t, filepath.Join(site.mediaDir, "about", "orchard_view.jpg"), testJPEG(t, 8, 4))
	writeTestFile(t, filepath.Join(site.mediaDir, "about", "harvest.mp4"), []byte("video"))

	_, body := get(t, site, "/about")
	assert.Contains(t, body, `<a href="/media/about/orchard_view.jpg" data-lightbox>`)
	assert.Contains(t, body, `src="/media/about/thumbs/orchard_view.jpg.jpg" alt="orchard view" loading="lazy" width="4" height="2"`)
	assert.Contains(t, body, `<video src="/media/about/harvest.mp4"`)
	assert.NotContains(t, body, "pomegranates.svg")

	resp, _ := get(t, site, "/media/about/orchard_view.jpg")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestThumbnailHandler(t *testing.T) {
	site := newTestSite(t, "prod")
	writeTestFile(t, filepath.Join(site.mediaDir, "products", "jar.jpg"), testJPEG(t, 8, 4))

	resp, body := get(t, site, "/media/products/thumbs/jar.jpg.jpg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	cfg, err := jpeg.DecodeConfig(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 2, cfg.Height)

	for _, path := range []string{
		"/media/products/thumbs/missing.jpg.jpg",
		"/media/products/thumbs/jar.jpg",
		"/media/gallery/thumbs/jar.jpg.jpg",
	} {
		resp, _ := get(t, site, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestSitemapHandler(t *testing.T) {
	site := newTestSite(t, "gh")

	resp, body := get(t, site, "/rodi-kremastos/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=86400, must-revalidate", resp.Header.Get("Cache-Control"))

	expected, err := utils.GenerateSitemapContent("https://lalibi.github.io/rodi-kremastos", testNow)
	require.NoError(t, err)
	assert.Equal(t, expected, body)
}

func TestRobotsHandler(t *testing.T) {
	site := newTestSite(t, "prod")

	resp, body := get(t, site, "/robots.txt")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "max-age=86400, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://rodi-kremastos.gr/sitemap.xml\n", body)
}

func TestScriptHandler(t *testing.T) {
	site := newTestSite(t, "prod")

	resp, body := get(t, site, "/js/"+site.Script.Name)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, string(site.Script.Contents), body)

	resp, _ = get(t, site, "/js/"+site.Script.MapName())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, site, "/js/other.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLogoRoute(t *testing.T) {
	site := newTestSite(t, "gh")

	resp, body := get(t, site, "/rodi-kremastos/logo.svg")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<svg></svg>", body)
}

func TestGetRegisteredRoutes(t *testing.T) {
	site := newTestSite(t, "gh")

	assert.Equal(t, []string{"/", "/about", "/products", "/contact"}, site.GetRegisteredRoutes())
}

func TestRenderMarkdownTemplate(t *testing.T) {
	html, title, _, err := renderMarkdownTemplate("content/about.md")
	require.NoError(t, err)
	assert.Equal(t, "Η ιστορία μας", title)
	assert.Contains(t, html, "<p>")

	_, _, _, err = renderMarkdownTemplate("content/missing.md")
	assert.Error(t, err)
}
