// Package assets implements the build-time asset pipeline: it reads the
// landing page's source files and produces an optimized output tree, with
// CSS/JS minification, image re-encoding, gzip precompression, and a
// byte-savings report.
package assets

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/pagekit/internal/logging"
)

// Options configures an optimization run.
type Options struct {
	MinifyCSS   bool     `json:"minify_css"`
	MinifyJS    bool     `json:"minify_js"`
	Images      bool     `json:"images"`
	Precompress bool     `json:"precompress"`
	JPEGQuality int      `json:"jpeg_quality"`
	Ignore      []string `json:"ignore,omitempty"`
}

// DefaultOptions returns sensible defaults for production output.
func DefaultOptions() Options {
	return Options{
		MinifyCSS:   true,
		MinifyJS:    true,
		Images:      true,
		Precompress: true,
		JPEGQuality: 82,
		Ignore:      []string{"node_modules", ".git"},
	}
}

// FileResult records the outcome for one processed file.
type FileResult struct {
	Path          string `json:"path"`
	Action        string `json:"action"` // "minified", "reencoded", "copied"
	OriginalSize  int64  `json:"original_size_bytes"`
	OptimizedSize int64  `json:"optimized_size_bytes"`
}

// Report summarizes an optimization run.
type Report struct {
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`

	FilesProcessed  int `json:"files_processed"`
	FilesMinified   int `json:"files_minified"`
	ImagesOptimized int `json:"images_optimized"`
	FilesCopied     int `json:"files_copied"`
	GzippedFiles    int `json:"gzipped_files"`

	OriginalSize  int64   `json:"original_size_bytes"`
	OptimizedSize int64   `json:"optimized_size_bytes"`
	SavingsPct    float64 `json:"savings_pct"`

	Files    []FileResult `json:"files"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Optimizer runs the asset pipeline.
type Optimizer struct {
	options Options
	logger  logging.Logger
}

// NewOptimizer creates an Optimizer.
func NewOptimizer(options Options, logger logging.Logger) *Optimizer {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if options.JPEGQuality < 1 || options.JPEGQuality > 100 {
		options.JPEGQuality = DefaultOptions().JPEGQuality
	}

	return &Optimizer{
		options: options,
		logger:  logger.WithComponent("assets"),
	}
}

// Optimize walks sourceDir and writes the optimized tree to outputDir,
// preserving relative paths. Files it cannot process are copied as-is with a
// warning rather than failing the run.
func (o *Optimizer) Optimize(ctx context.Context, sourceDir, outputDir string) (*Report, error) {
	report := &Report{StartTime: time.Now()}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if o.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if o.ignored(rel) {
			return nil
		}

		return o.processFile(ctx, path, filepath.Join(outputDir, rel), rel, report)
	})
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(report.StartTime)
	if report.OriginalSize > 0 {
		report.SavingsPct = 100 * float64(report.OriginalSize-report.OptimizedSize) /
			float64(report.OriginalSize)
	}

	o.logger.Info(ctx, "asset optimization finished",
		"files", report.FilesProcessed,
		"original_bytes", report.OriginalSize,
		"optimized_bytes", report.OptimizedSize,
		"savings_pct", fmt.Sprintf("%.1f", report.SavingsPct),
	)

	return report, nil
}

func (o *Optimizer) ignored(rel string) bool {
	for _, pattern := range o.options.Ignore {
		if rel == pattern || strings.HasPrefix(rel, pattern+string(filepath.Separator)) {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(rel)); matched {
			return true
		}
	}

	return false
}

func (o *Optimizer) processFile(ctx context.Context, src, dst, rel string, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	var (
		output []byte
		action string
		err    error
	)

	switch strings.ToLower(filepath.Ext(src)) {
	case ".css":
		if o.options.MinifyCSS {
			output, action, err = o.minifyFile(src, MinifyCSS)
		}
	case ".js":
		if o.options.MinifyJS {
			output, action, err = o.minifyFile(src, MinifyJS)
		}
	case ".jpg", ".jpeg":
		if o.options.Images {
			output, err = reencodeJPEG(src, o.options.JPEGQuality)
			action = "reencoded"
		}
	case ".png":
		if o.options.Images {
			output, err = reencodePNG(src)
			action = "reencoded"
		}
	}

	if err != nil {
		// Degrade to a plain copy; one undecodable image must not fail
		// the whole build.
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%s: %v (copied unmodified)", rel, err))
		o.logger.Warn(ctx, err, "asset processing failed, copying as-is", "path", rel)
		output = nil
	}

	if output == nil {
		output, err = os.ReadFile(src)
		if err != nil {
			return err
		}
		action = "copied"
	}

	if err := os.WriteFile(dst, output, 0644); err != nil {
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	report.FilesProcessed++
	report.OriginalSize += info.Size()
	report.OptimizedSize += int64(len(output))
	switch action {
	case "minified":
		report.FilesMinified++
	case "reencoded":
		report.ImagesOptimized++
	default:
		report.FilesCopied++
	}
	report.Files = append(report.Files, FileResult{
		Path:          rel,
		Action:        action,
		OriginalSize:  info.Size(),
		OptimizedSize: int64(len(output)),
	})

	if o.options.Precompress && compressible(dst) {
		if err := gzipFile(dst, output); err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: gzip: %v", rel, err))
		} else {
			report.GzippedFiles++
		}
	}

	return nil
}

func (o *Optimizer) minifyFile(src string, minify func(string) string) ([]byte, string, error) {
	content, err := os.ReadFile(src)
	if err != nil {
		return nil, "", err
	}

	return []byte(minify(string(content))), "minified", nil
}

// compressible reports whether a .gz sibling is worth writing.
func compressible(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css", ".js", ".html", ".svg", ".json", ".txt", ".xml":
		return true
	default:
		return false
	}
}

func gzipFile(path string, content []byte) error {
	f, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := gzip.NewWriterLevel(f, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(content); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// WriteReport writes the run report as JSON to path.
func (r *Report) WriteReport(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
