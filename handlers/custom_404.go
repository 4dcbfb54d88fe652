package handlers

import (
	"net/http"

	"github.com/lalibi/rodi-kremastos/config"
	"github.com/pkg/errors"
)

// Custom404Handler renders the not-found page inside the base layout.
func (s *Site) Custom404Handler(w http.ResponseWriter, r *http.Request) {
	ctx := s.baseContext(r)
	ctx.Set("title", config.BuildTitle(s.text("notfound.title")))

	// Execute the 404 template
	notFoundContent, err := renderPlushTemplate("404.plush.html", ctx)
	if err != nil {
		s.serverError(w, r, errors.Wrap(err, "rendering 404 page"))
		return
	}

	s.writeLayout(w, r, http.StatusNotFound, ctx, notFoundContent)
}
