// Command minify writes minified copies of the templates and static assets
// into dist/, which the server prefers in production. With -input it
// minifies a single file instead.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const (
	mediaHTML = "text/html"
	mediaCSS  = "text/css"
	mediaJS   = "application/javascript"
)

var mediaTypes = map[string]string{
	".html": mediaHTML,
	".css":  mediaCSS,
	".js":   mediaJS,
}

func main() {
	var (
		inputFile  = flag.String("input", "", "Input file path (single-file mode)")
		outputFile = flag.String("output", "", "Output file path (single-file mode)")
		fileType   = flag.String("type", "", "File type in single-file mode: css, js or html")
		distDir    = flag.String("dist", "dist", "Output root for the full build")
	)
	flag.Parse()

	m := newMinifier()

	if *inputFile != "" {
		if *outputFile == "" || *fileType == "" {
			log.Fatal("Usage: minify -input=<file> -output=<file> -type=<css|js|html>")
		}
		mediaType, ok := mediaTypes["."+strings.ToLower(*fileType)]
		if !ok {
			log.Fatalf("Unsupported file type: %s (supported: css, js, html)", *fileType)
		}
		if _, err := minifyFile(m, *inputFile, *outputFile, mediaType); err != nil {
			log.Fatalf("Failed to minify %s: %v", *inputFile, err)
		}
		fmt.Printf("Successfully minified %s -> %s\n", *inputFile, *outputFile)
		return
	}

	var total report
	for _, dir := range []string{"templates", "static"} {
		r, err := minifyTree(m, dir, *distDir)
		if err != nil {
			log.Fatalf("Error minifying %s: %v", dir, err)
		}
		total.add(r)
	}
	fmt.Printf("Minified %d file%s: %d bytes -> %d bytes (%.1f%% reduction), output in %s/\n",
		total.files, plural(total.files), total.before, total.after, total.reduction(), *distDir)
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mediaCSS, css.Minify)
	m.Add(mediaHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
		TemplateDelims:   html.GoTemplateDelims,
	})
	m.AddFunc(mediaJS, js.Minify)
	return m
}

type report struct {
	files  int
	before int
	after  int
}

func (r *report) add(o report) {
	r.files += o.files
	r.before += o.before
	r.after += o.after
}

func (r report) reduction() float64 {
	if r.before == 0 {
		return 0
	}
	return float64(r.before-r.after) / float64(r.before) * 100
}

// minifyTree mirrors every supported file under srcDir into dstRoot/srcDir.
// Files of other types are copied unchanged.
func minifyTree(m *minify.M, srcDir, dstRoot string) (report, error) {
	var total report
	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dst := filepath.Join(dstRoot, path)
		mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return copyFile(path, dst)
		}
		r, err := minifyFile(m, path, dst, mediaType)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		total.add(r)
		return nil
	})
	return total, err
}

func minifyFile(m *minify.M, srcPath, dstPath, mediaType string) (report, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return report{}, err
	}
	minified, err := m.Bytes(mediaType, src)
	if err != nil {
		return report{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return report{}, err
	}
	if err := os.WriteFile(dstPath, minified, 0o644); err != nil {
		return report{}, err
	}

	r := report{files: 1, before: len(src), after: len(minified)}
	log.WithFields(log.Fields{
		"file":   srcPath,
		"before": r.before,
		"after":  r.after,
	}).Infof("minified (%.1f%% reduction)", r.reduction())
	return r, nil
}

func copyFile(srcPath, dstPath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dstPath, data, 0o644)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
