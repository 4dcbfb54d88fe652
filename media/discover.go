package media

import (
	"bytes"
	"context"
	"io/fs"
	"net/url"
	"os"
	"path"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type Section string

const (
	SectionAbout    Section = "about"
	SectionProducts Section = "products"
)

// Sections lists every gallery section.
var Sections = []Section{SectionAbout, SectionProducts}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	for _, sec := range Sections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", errors.Errorf("unknown media section %q", s)
}

const (
	ImagePattern = "*.{jpg,jpeg,png,webp,avif}"
	VideoPattern = "*.{mp4,webm,ogv}"
)

// Library discovers gallery media under Root, one directory per section,
// and publishes it under URLPrefix.
type Library struct {
	Root        string
	URLPrefix   string
	ThumbWidth  int
	Concurrency int

	fsys fs.FS
}

// NewLibrary creates a library rooted at the directory root.
func NewLibrary(root, urlPrefix string) *Library {
	return &Library{
		Root:        root,
		URLPrefix:   urlPrefix,
		ThumbWidth:  DefaultThumbWidth,
		Concurrency: runtime.NumCPU(),
		fsys:        os.DirFS(root),
	}
}

// Discover lists the images and videos of a section sorted by src. Image
// captions come from embedded metadata when present; any failure to read or
// parse it falls back to a caption derived from the filename. A missing
// section directory yields an empty gallery.
func (l *Library) Discover(ctx context.Context, section Section) ([]Item, error) {
	imagePaths, err := l.glob(section, ImagePattern)
	if err != nil {
		return nil, err
	}
	videoPaths, err := l.glob(section, VideoPattern)
	if err != nil {
		return nil, err
	}

	images := make([]Item, len(imagePaths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency())
	for i, rel := range imagePaths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			images[i] = l.describeImage(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "discovering %s media", section)
	}

	videoMods := make(map[string]any, len(videoPaths))
	for _, rel := range videoPaths {
		videoMods[rel] = Asset{Src: l.src(rel)}
	}
	videos := NormalizeModules(videoMods, Video)

	items := append(images, videos...)
	SortBySrc(items)

	logging.Debug("discovered media", "section", section, "images", len(images), "videos", len(videos))
	return items, nil
}

func (l *Library) describeImage(rel string) Item {
	item := Item{Type: Image, Src: l.src(rel)}

	data, err := fs.ReadFile(l.fsys, rel)
	if err != nil {
		logging.Debug("reading media", "path", rel, "err", err)
	} else {
		if meta, err := ExtractMetadata(data); err != nil {
			logging.Debug("reading media metadata", "path", rel, "err", err)
		} else {
			item.Alt, _ = PickAltFromMeta(meta)
		}
		item.Width, item.Height = Dimensions(data)
		if l.ThumbWidth > 0 && item.Width > l.ThumbWidth {
			item.Thumb = l.thumbSrc(rel)
		}
	}

	if item.Alt == "" {
		item.Alt = HumanizeFromPath(rel)
	}
	return item
}

// Thumbnail renders the scaled preview of a section image.
func (l *Library) Thumbnail(section Section, name string) ([]byte, error) {
	rel := path.Join(string(section), name)
	if strings.Contains(name, "/") || !fs.ValidPath(rel) {
		return nil, errors.Wrapf(fs.ErrInvalid, "thumbnail %q", name)
	}
	if ok, _ := doublestar.Match(ImagePattern, name); !ok {
		return nil, errors.Wrapf(fs.ErrNotExist, "thumbnail %q", name)
	}
	data, err := fs.ReadFile(l.fsys, rel)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Thumbnail(bytes.NewReader(data), l.ThumbWidth)
}

func (l *Library) glob(section Section, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(l.fsys, path.Join(string(section), pattern), doublestar.WithFilesOnly())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "globbing %s", pattern)
	}
	return matches, nil
}

func (l *Library) concurrency() int {
	if l.Concurrency > 0 {
		return l.Concurrency
	}
	return 1
}

func (l *Library) prefix() string {
	if strings.HasSuffix(l.URLPrefix, "/") {
		return l.URLPrefix
	}
	return l.URLPrefix + "/"
}

func (l *Library) src(rel string) string {
	return l.prefix() + escapePath(rel)
}

func (l *Library) thumbSrc(rel string) string {
	dir, name := path.Split(rel)
	return l.prefix() + escapePath(dir+"thumbs/"+name+".jpg")
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
