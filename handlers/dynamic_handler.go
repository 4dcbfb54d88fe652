package handlers

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobuffalo/plush"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/gorilla/mux"
	"github.com/lalibi/rodi-kremastos/config"
	"github.com/lalibi/rodi-kremastos/javascript"
	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/lalibi/rodi-kremastos/templates"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	discoveryCacheControl = "max-age=86400, must-revalidate"
	immutableCacheControl = "public, max-age=31536000, immutable"
)

// Site is the HTTP surface of the website: pages, discovery files, static
// files and gallery media.
type Site struct {
	Config  *config.Config
	Library *media.Library
	Media   *media.Cache
	Script  *javascript.Script
	Now     func() time.Time

	translations     map[string]string
	registeredRoutes []string
	router           *mux.Router
}

type navLink struct {
	Href   string
	Label  string
	Active bool
}

type product struct {
	Name    string
	Summary string
}

type galleryItem struct {
	Src     string
	Alt     string
	Preview string
	IsVideo bool
	HasSize bool
	Width   int
	Height  int
}

var productKeys = []string{"juice", "syrup", "ointment", "liqueur"}

func SetupRouter(cfg *config.Config, lib *media.Library, cache *media.Cache) (*Site, error) {
	s := &Site{
		Config:  cfg,
		Library: lib,
		Media:   cache,
		Now:     time.Now,
	}

	var err error
	s.translations, err = loadTranslations(path.Join("i18n", config.Site.Locale+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	source, err := fs.ReadFile(templates.FS, "js/gallery.js")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	s.Script, err = javascript.Compile("gallery", string(source))
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.Custom404Handler)
	router.Use(requestLogger)

	sub := router
	if cfg.BasePath != "/" {
		router.Handle(cfg.BasePath, http.RedirectHandler(cfg.BasePath+"/", http.StatusMovedPermanently))
		sub = router.PathPrefix(cfg.BasePath).Subrouter()
	}

	// Static files and media
	sub.PathPrefix("/static/").Handler(http.StripPrefix(cfg.Href("/static/"), http.FileServer(http.Dir(cfg.StaticDir))))
	sub.HandleFunc(config.Site.Logo, func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(cfg.StaticDir, path.Base(config.Site.Logo)))
	}).Methods("GET")
	sub.HandleFunc("/media/{section}/thumbs/{file}", s.ThumbnailHandler).Methods("GET")
	sub.PathPrefix("/media/").Handler(http.StripPrefix(cfg.Href("/media/"), http.FileServer(http.Dir(cfg.MediaDir))))
	sub.HandleFunc("/js/{name}", s.ScriptHandler).Methods("GET")

	// Discovery files
	sub.HandleFunc("/sitemap.xml", s.SitemapHandler).Methods("GET")
	sub.HandleFunc("/robots.txt", s.RobotsHandler).Methods("GET")

	// Pages
	for _, key := range config.NavOrder {
		page := config.Pages[key]
		sub.HandleFunc(page.Href, s.DynamicHandler(key)).Methods("GET")
		s.registeredRoutes = append(s.registeredRoutes, page.Href)
	}

	s.router = router
	return s, nil
}

func (s *Site) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Site) GetRegisteredRoutes() []string {
	return append([]string(nil), s.registeredRoutes...)
}

func (s *Site) DynamicHandler(key config.PageKey) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, err := s.pageContext(r, key)
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		content, err := renderPlushTemplate(path.Join("pages", string(key)+".plush.html"), ctx)
		if err != nil {
			s.serverError(w, r, errors.Wrap(err, "rendering page"))
			return
		}

		s.writeLayout(w, r, http.StatusOK, ctx, content)
	}
}

func (s *Site) baseContext(r *http.Request) *plush.Context {
	ctx := plush.NewContext()
	cfg := s.Config

	ctx.Set("site", config.Site)
	ctx.Set("currentPath", r.URL.Path)
	ctx.Set("year", s.Now().Year())
	ctx.Set("logo", cfg.Href(config.Site.Logo))
	ctx.Set("keywords", strings.Join(config.Site.Keywords, ", "))
	ctx.Set("jsonLD", template.HTML(SiteJSONLD(cfg)))
	ctx.Set("galleryScript", cfg.Href("/js/"+s.Script.Name))

	ctx.Set("href", func(p string) string {
		return cfg.Href(p)
	})
	ctx.Set("text", s.text)

	ctx.Set("title", config.BuildTitle(nil))
	ctx.Set("description", config.Site.Description)
	ctx.Set("canonical", cfg.AbsURL("/"))
	ctx.Set("nav", s.navLinks(""))

	return ctx
}

func (s *Site) pageContext(r *http.Request, key config.PageKey) (*plush.Context, error) {
	page, ok := config.ResolvePage(key)
	if !ok {
		return nil, errors.Errorf("unknown page %q", key)
	}

	ctx := s.baseContext(r)
	ctx.Set("page", page)
	ctx.Set("title", config.BuildTitle(key))
	if page.Description != "" {
		ctx.Set("description", page.Description)
	}
	ctx.Set("canonical", s.Config.AbsURL(page.Href))
	ctx.Set("nav", s.navLinks(key))

	switch key {
	case config.About:
		story, storyTitle, _, err := renderMarkdownTemplate("content/about.md")
		if err != nil {
			return nil, err
		}
		ctx.Set("story", template.HTML(story))
		ctx.Set("storyTitle", storyTitle)

		gallery, err := s.renderGallery(r, media.SectionAbout)
		if err != nil {
			return nil, err
		}
		ctx.Set("gallery", gallery)
	case config.Products:
		products := make([]product, 0, len(productKeys))
		for _, k := range productKeys {
			products = append(products, product{
				Name:    s.text("products." + k + ".name"),
				Summary: s.text("products." + k + ".summary"),
			})
		}
		ctx.Set("products", products)

		gallery, err := s.renderGallery(r, media.SectionProducts)
		if err != nil {
			return nil, err
		}
		ctx.Set("gallery", gallery)
	case config.Contact:
		org := config.Site.Organization
		ctx.Set("telHref", "tel:"+strings.ReplaceAll(org.Telephone, " ", ""))
		ctx.Set("mapURL", "https://www.google.com/maps/search/?api=1&query="+
			url.QueryEscape(org.Address.StreetAddress+", "+org.Address.PostalCode+" "+org.Address.AddressLocality))
	}

	return ctx, nil
}

func (s *Site) navLinks(active config.PageKey) []navLink {
	links := make([]navLink, 0, len(config.NavOrder))
	for _, key := range config.NavOrder {
		page := config.Pages[key]
		label := page.Label
		if label == "" {
			label = page.Title
		}
		links = append(links, navLink{
			Href:   s.Config.Href(page.Href),
			Label:  label,
			Active: key == active,
		})
	}
	return links
}

// renderGallery renders the section gallery, falling back to the static
// placeholder images while the section has no media.
func (s *Site) renderGallery(r *http.Request, section media.Section) (template.HTML, error) {
	items, err := s.Media.Items(r.Context(), section)
	if err != nil {
		return "", err
	}

	var fallback []media.Fallback
	for _, f := range config.GalleryFallback[string(section)] {
		fallback = append(fallback, media.Fallback{Src: f.Src, Alt: f.Alt, Type: media.Type(f.Type)})
	}
	items = media.MergeAssetsOrFallback(items, fallback, s.Config.Href("/static/gallery/"))

	views := make([]galleryItem, 0, len(items))
	for _, item := range items {
		views = append(views, s.galleryView(item))
	}

	ctx := s.baseContext(r)
	ctx.Set("items", views)
	ctx.Set("hasItems", len(views) > 0)

	html, err := renderPlushTemplate("partials/gallery.plush.html", ctx)
	if err != nil {
		return "", errors.Wrap(err, "rendering gallery")
	}
	return template.HTML(html), nil
}

func (s *Site) galleryView(item media.Item) galleryItem {
	v := galleryItem{
		Src:     item.Src,
		Alt:     item.Alt,
		Preview: item.Src,
		IsVideo: item.Type == media.Video,
		HasSize: item.Width > 0 && item.Height > 0,
		Width:   item.Width,
		Height:  item.Height,
	}
	if item.Thumb != "" && s.Library != nil && s.Library.ThumbWidth > 0 && item.Width > 0 {
		v.Preview = item.Thumb
		v.Width = s.Library.ThumbWidth
		v.Height = item.Height * s.Library.ThumbWidth / item.Width
	}
	return v
}

func (s *Site) writeLayout(w http.ResponseWriter, r *http.Request, status int, ctx *plush.Context, content string) {
	ctx.Set("yield", template.HTML(content))

	pageHtml, err := renderPlushTemplate("layouts/base.plush.html", ctx)
	if err != nil {
		s.serverError(w, r, errors.Wrap(err, "rendering base layout"))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(pageHtml)); err != nil {
		logging.Debug("writing response", "path", r.URL.Path, "err", err)
	}
}

func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Error("request failed", "path", r.URL.Path, "err", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (s *Site) text(key string) string {
	if t, ok := s.translations[key]; ok {
		return t
	}
	return key
}

func loadTranslations(name string) (map[string]string, error) {
	data, err := fs.ReadFile(templates.FS, name)
	if err != nil {
		return nil, err
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, err
	}

	return translations, nil
}

func renderPlushTemplate(source string, ctx *plush.Context) (string, error) {
	content, err := fs.ReadFile(templates.FS, source)
	if err != nil {
		return "", err
	}

	template, err := plush.Parse(string(content))
	if err != nil {
		return "", errors.Wrapf(err, "parsing %s", source)
	}

	return template.Exec(ctx)
}

// renderMarkdownTemplate renders a markdown file with a YAML frontmatter
// block separated from the body by a "---" line.
func renderMarkdownTemplate(source string) (string, string, string, error) {
	content, err := fs.ReadFile(templates.FS, source)
	if err != nil {
		return "", "", "", err
	}

	// Split the content into frontmatter and Markdown
	parts := strings.SplitN(string(content), "\n---\n", 2)
	if len(parts) != 2 {
		return "", "", "", fmt.Errorf("invalid Markdown file format: %s", source)
	}

	var metadata map[string]string
	err = yaml.Unmarshal([]byte(parts[0]), &metadata)
	if err != nil {
		return "", "", "", fmt.Errorf("error parsing frontmatter: %v", err)
	}

	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	htmlContent := markdown.ToHTML([]byte(parts[1]), p, nil)

	return string(htmlContent), metadata["title"], metadata["description"], nil
}
