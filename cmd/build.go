package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lalibi/rodi-kremastos/config"
	"github.com/lalibi/rodi-kremastos/handlers"
	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/lalibi/rodi-kremastos/media"
	"github.com/lalibi/rodi-kremastos/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a static version of the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logging.Info("Building static site...", "target", cfg.Target, "out", cfg.OutDir)
		if err := buildSite(cmd.Context(), cfg, newLibrary(cfg)); err != nil {
			return err
		}

		logging.Info("Static site generated successfully", "out", cfg.OutDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("out", "o", "public", "Output directory")
	_ = loader.Viper().BindPFlag("out_dir", buildCmd.Flags().Lookup("out"))
}

// buildSite renders every page through an in-process server and writes the
// result, together with the static files, the media and its thumbnails,
// into cfg.OutDir. The output directory maps to the base path.
func buildSite(ctx context.Context, cfg *config.Config, lib *media.Library) error {
	out := cfg.OutDir

	// Galleries are rendered once per build, so no cache expiry.
	cache := media.NewCache(lib, 24*time.Hour)
	site, err := handlers.SetupRouter(cfg, lib, cache)
	if err != nil {
		return errors.Wrap(err, "setting up router")
	}

	if err := os.MkdirAll(out, os.ModePerm); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	// Copy static files and media
	if err := copyTree(cfg.StaticDir, filepath.Join(out, "static")); err != nil {
		return errors.Wrap(err, "copying static files")
	}
	logo := path.Base(config.Site.Logo)
	if err := copyFile(filepath.Join(cfg.StaticDir, logo), filepath.Join(out, logo)); err != nil {
		return errors.Wrap(err, "copying logo")
	}
	if err := copyTree(cfg.MediaDir, filepath.Join(out, "media")); err != nil {
		return errors.Wrap(err, "copying media")
	}

	// Generate static pages
	server := httptest.NewServer(site)
	defer server.Close()

	for _, route := range site.GetRegisteredRoutes() {
		dest := filepath.Join(out, filepath.FromSlash(strings.TrimPrefix(route, "/")), "index.html")
		if err := generateStaticPage(server, cfg.Href(route), dest, http.StatusOK); err != nil {
			return errors.Wrapf(err, "generating %s", route)
		}
	}
	if err := generateStaticPage(server, cfg.Href("/404.html"), filepath.Join(out, "404.html"), http.StatusNotFound); err != nil {
		return errors.Wrap(err, "generating 404 page")
	}

	if err := generateThumbnails(ctx, server, cfg, cache, out); err != nil {
		return err
	}

	if err := site.Script.Write(filepath.Join(out, "js")); err != nil {
		return err
	}

	// Generate sitemap and robots.txt
	if err := utils.GenerateSitemaps(out, cfg.SiteURL, time.Now()); err != nil {
		return errors.Wrap(err, "generating sitemap")
	}
	if err := utils.GenerateRobots(out, cfg.SiteURL); err != nil {
		return errors.Wrap(err, "generating robots.txt")
	}
	return nil
}

// generateThumbnails fetches the preview of every gallery image that has one.
func generateThumbnails(ctx context.Context, server *httptest.Server, cfg *config.Config, cache *media.Cache, out string) error {
	mediaPrefix := cfg.Href("/media/")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, section := range media.Sections {
		items, err := cache.Items(ctx, section)
		if err != nil {
			return errors.Wrapf(err, "discovering %s media", section)
		}
		for _, item := range items {
			if item.Thumb == "" {
				continue
			}
			rel, err := url.PathUnescape(strings.TrimPrefix(item.Thumb, mediaPrefix))
			if err != nil {
				return errors.Wrapf(err, "thumbnail %s", item.Thumb)
			}
			thumb := item.Thumb
			dest := filepath.Join(out, "media", filepath.FromSlash(rel))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return generateStaticPage(server, thumb, dest, http.StatusOK)
			})
		}
	}
	return g.Wait()
}

func generateStaticPage(server *httptest.Server, route, filePath string, wantStatus int) error {
	resp, err := http.Get(server.URL + route)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("GET %s: unexpected status %d", route, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(filePath), os.ModePerm)
	if err != nil {
		return err
	}

	err = os.WriteFile(filePath, body, 0644)
	if err != nil {
		return err
	}

	logging.Debug("Generated", "file", filePath)
	return nil
}

// copyTree copies every regular file under src into dst. A missing src is
// not an error.
func copyTree(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		logging.Warn("skipping missing directory", "dir", src)
		return nil
	}

	files, err := doublestar.Glob(os.DirFS(src), "**", doublestar.WithFilesOnly())
	if err != nil {
		return errors.WithStack(err)
	}
	for _, f := range files {
		if err := copyFile(filepath.Join(src, filepath.FromSlash(f)), filepath.Join(dst, filepath.FromSlash(f))); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(os.WriteFile(dst, input, 0644))
}
