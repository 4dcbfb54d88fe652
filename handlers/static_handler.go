package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/lalibi/rodi-kremastos/utils"
)

func (s *Site) SitemapHandler(w http.ResponseWriter, r *http.Request) {
	content, err := utils.GenerateSitemapContent(s.Config.SiteURL, s.Now())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", discoveryCacheControl)
	_, _ = w.Write([]byte(content))
}

func (s *Site) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", discoveryCacheControl)
	_, _ = w.Write([]byte(utils.GenerateRobotsContent(s.Config.SiteURL)))
}

func (s *Site) ScriptHandler(w http.ResponseWriter, r *http.Request) {
	switch mux.Vars(r)["name"] {
	case s.Script.Name:
		w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", immutableCacheControl)
		_, _ = w.Write(s.Script.Contents)
	case s.Script.MapName():
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(s.Script.SourceMap)
	default:
		s.Custom404Handler(w, r)
	}
}

func (s *Site) ThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	section, err := media.ParseSection(vars["section"])
	if err != nil || !strings.HasSuffix(vars["file"], ".jpg") {
		s.Custom404Handler(w, r)
		return
	}

	data, err := s.Library.Thumbnail(section, strings.TrimSuffix(vars["file"], ".jpg"))
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		s.Custom404Handler(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", immutableCacheControl)
	_, _ = w.Write(data)
}
