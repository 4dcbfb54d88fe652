// Package javascript minifies the site's client scripts with esbuild and
// names them by content hash.
package javascript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/errors"
)

type Script struct {
	// Name is the hashed public file name, e.g. "gallery_AB12CD34.js".
	Name      string
	Contents  []byte
	SourceMap []byte
}

func (s *Script) MapName() string {
	return s.Name + ".map"
}

func Compile(targetName, source string) (*Script, error) {
	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   source,
			Sourcefile: targetName + ".js",
			Loader:     api.LoaderJS,
		},
		Bundle:            true,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Engines: []api.Engine{
			{Name: api.EngineChrome, Version: "100"},
			{Name: api.EngineFirefox, Version: "100"},
			{Name: api.EngineSafari, Version: "15"},
			{Name: api.EngineEdge, Version: "100"},
		},
		Sourcemap: api.SourceMapExternal,
		Write:     false,
		Outdir:    "js",
	})

	if len(result.Errors) > 0 {
		msg := result.Errors[0].Text
		if loc := result.Errors[0].Location; loc != nil {
			msg = fmt.Sprintf("%s:%d:%d: %s", loc.File, loc.Line, loc.Column, msg)
		}
		return nil, errors.Errorf("compiling %s: %s", targetName, msg)
	}

	// Separate the code from its .map output
	var code, srcMap *api.OutputFile
	for i := range result.OutputFiles {
		out := &result.OutputFiles[i]
		if strings.EqualFold(filepath.Ext(out.Path), ".map") {
			srcMap = out
		} else {
			code = out
		}
	}
	if code == nil {
		return nil, errors.Errorf("compiling %s: no output", targetName)
	}

	safeHash := strings.ReplaceAll(code.Hash, "/", "")
	name := fmt.Sprintf("%s_%s.js", targetName, safeHash)

	script := &Script{
		Name:     name,
		Contents: []byte(string(code.Contents) + fmt.Sprintf("//# sourceMappingURL=%s.map", name)),
	}
	if srcMap != nil {
		script.SourceMap = srcMap.Contents
	}
	return script, nil
}

func (s *Script) Write(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(filepath.Join(dir, s.Name), s.Contents, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", s.Name)
	}
	if s.SourceMap == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(dir, s.MapName()), s.SourceMap, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", s.MapName())
	}
	return nil
}
