// Package compiler turns a stylesheet into a theme container. It owns the
// build context: parsed cascade, previous output, incremental cache and
// asset pipeline of one compilation.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cn1css/assets"
	"cn1css/cache"
	"cn1css/cascade"
	"cn1css/config"
	"cn1css/css"
	"cn1css/decision"
	"cn1css/render"
	"cn1css/resfile"
)

// snapshot entry holding checksum of everything outside of the stylesheet
// rules that affects generated values
const environmentKey = "#Environment"

// Options changes compilation behavior.
type Options struct {
	// rebuild every element even when caches say nothing changed
	Force bool
	// write XML dump of the container next to the output
	XML bool
	// receives copies of stylesheets which failed to compile, may be nil
	Report *config.Report
}

// Compiler keeps what consecutive builds share.
type Compiler struct {
	cfg    *config.Config
	svc    render.Service
	parser *css.Parser
	opts   Options
	log    *zap.Logger
}

func New(cfg *config.Config, svc render.Service, opts Options, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		cfg:    cfg,
		svc:    svc,
		parser: css.NewParser(log),
		opts:   opts,
		log:    log.Named("compiler"),
	}
}

// Summary describes finished build.
type Summary struct {
	// nothing was done, output is up to date
	Skipped bool
	// every element was rebuilt
	Full    bool
	Changes cache.Changes
	Dirty   []string
	// boxes sent to render service
	Rendered int
	// images dropped from the container
	Removed []string
}

// DefaultOutput returns output path used when none is given: theme file
// next to the stylesheet.
func DefaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".res"
}

// Compile builds output container from input stylesheet. Concurrent
// compilations sharing base directory are serialized by the checksum file
// lock.
func (c *Compiler) Compile(ctx context.Context, input, output string) (summary *Summary, err error) {
	if input, err = filepath.Abs(input); err != nil {
		return nil, err
	}
	if output, err = filepath.Abs(output); err != nil {
		return nil, err
	}
	inInfo, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("unable to access input: %w", err)
	}

	baseDir := filepath.Dir(filepath.Dir(input))
	store, err := cache.Open(filepath.Join(baseDir, c.cfg.Cache.ChecksumFile), c.log)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()
	key, inKey := storeKey(baseDir, output), storeKey(baseDir, input)
	inSum, err := cache.FileChecksum(input)
	if err != nil {
		return nil, err
	}

	full := c.opts.Force
	outInfo, err := os.Stat(output)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		full = true
	case err != nil:
		return nil, fmt.Errorf("unable to access output: %w", err)
	default:
		sum, err := cache.FileChecksum(output)
		if err != nil {
			return nil, err
		}
		recorded, ok := store.Get(key)
		switch {
		case ok && recorded != sum:
			dst, err := cache.Backup(output, baseDir, c.cfg.Cache.BackupDir, time.Now())
			if err != nil {
				return nil, fmt.Errorf("unable to back up modified output: %w", err)
			}
			c.log.Warn("Output was modified outside of compiler, rebuilding", zap.String("output", output), zap.String("backup", dst))
			full = true
		case ok && !full && unchanged(store, inKey, inSum, inInfo, outInfo):
			c.log.Info("File has not changed since last compile.", zap.String("input", input))
			return &Summary{Skipped: true}, nil
		}
	}

	c.log.Info("Compiling", zap.String("input", input), zap.String("output", output), zap.Bool("full", full))
	defer func(start time.Time) {
		if err == nil {
			c.log.Info("Compilation completed", zap.Duration("elapsed", time.Since(start)))
		}
	}(time.Now())

	b, err := c.prepare(input, output)
	if err != nil {
		return nil, err
	}
	summary = &Summary{}

	cur, err := cache.Checksums(b.graph)
	if err != nil {
		return nil, locate(input, "", "", err)
	}
	snapPath := cache.SnapshotPath(input)
	prev, err := cache.LoadSnapshot(snapPath)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheCorruption) {
			return nil, err
		}
		c.log.Warn("Ignoring selector checksums", zap.Error(err))
		full = true
	}
	envSum := cache.Sum(b.environment())
	if prev[environmentKey] != envSum {
		full = true
	}
	delete(prev, environmentKey)

	prevTheme, theme, err := c.previous(output, b.themeName, full)
	if err != nil {
		c.log.Warn("Unable to reuse previous output", zap.String("output", output), zap.Error(err))
		full = true
	}
	b.theme = theme

	summary.Changes = cache.Classify(prev, cur)
	summary.Dirty = summary.Changes.Dirty(b.graph)
	if full {
		summary.Dirty = b.graph.Names()
	}
	summary.Full = full
	for _, name := range b.graph.Names() {
		c.log.Debug("Element", zap.String("name", name), zap.Stringer("status", summary.Changes[name]))
	}
	for _, name := range summary.Changes.With(cache.StatusDeleted) {
		n := b.theme.PruneElement(name)
		c.log.Debug("Element removed", zap.String("name", name), zap.Int("keys", n))
	}
	for _, name := range summary.Dirty {
		b.theme.PruneElement(name)
	}
	for _, k := range b.theme.Keys() {
		if resfile.ElementOf(k) == "" {
			b.theme.Delete(k)
		}
	}
	summary.Removed = b.theme.CollectGarbage()
	b.namer.Reserve(b.theme.ImageIDs()...)

	for _, name := range summary.Dirty {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.element(name); err != nil {
			return nil, err
		}
	}
	if err := b.constants(); err != nil {
		return nil, err
	}
	if summary.Rendered, err = b.rasterize(ctx); err != nil {
		return nil, err
	}

	summary.Removed = append(summary.Removed, b.theme.CollectGarbage()...)
	if len(summary.Removed) > 0 {
		c.log.Debug("Unused images removed", zap.Strings("ids", summary.Removed))
	}
	if err := b.theme.Stamp(prevTheme); err != nil {
		return nil, err
	}
	if err := b.theme.WriteFile(output); err != nil {
		return nil, fmt.Errorf("unable to write output: %w", err)
	}
	if c.opts.XML {
		var buf bytes.Buffer
		if err := b.theme.WriteXML(&buf); err != nil {
			return nil, err
		}
		if err := resfile.WriteAtomic(output+".xml", buf.Bytes()); err != nil {
			return nil, fmt.Errorf("unable to write XML dump: %w", err)
		}
	}

	sums := maps.Clone(cur)
	sums[environmentKey] = envSum
	if err := cache.SaveSnapshot(snapPath, sums); err != nil {
		return nil, err
	}
	outSum, err := cache.FileChecksum(output)
	if err != nil {
		return nil, err
	}
	store.Set(key, outSum)
	store.Set(inKey, inSum)

	c.log.Info("Theme written",
		zap.String("output", output),
		zap.Int("elements", len(b.graph.Names())),
		zap.Int("rebuilt", len(summary.Dirty)),
		zap.Int("images", len(b.theme.ImageIDs())),
		zap.String("build", b.theme.BuildID))
	return summary, nil
}

// unchanged reports whether input content is the same as during the last
// compilation. Stores written without input checksum fall back to
// modification times.
func unchanged(store *cache.Store, inKey, inSum string, inInfo, outInfo fs.FileInfo) bool {
	if recorded, ok := store.Get(inKey); ok {
		return recorded == inSum
	}
	return !inInfo.ModTime().After(outInfo.ModTime())
}

// storeKey returns checksum store key of the file, its path relative to
// base directory.
func storeKey(baseDir, path string) string {
	key, err := filepath.Rel(baseDir, path)
	if err != nil {
		key = filepath.Base(path)
	}
	return filepath.ToSlash(key)
}

// previous loads last output twice: untouched copy for build id comparison
// and working copy to update. Working copy is empty for full builds.
func (c *Compiler) previous(output, theme string, full bool) (*resfile.Container, *resfile.Container, error) {
	data, err := os.ReadFile(output)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, resfile.New(theme), nil
		}
		return nil, resfile.New(theme), err
	}
	prev, err := resfile.Decode(data)
	if err != nil {
		return nil, resfile.New(theme), err
	}
	if full {
		return prev, resfile.New(theme), nil
	}
	work, err := resfile.Decode(data)
	if err != nil {
		return prev, resfile.New(theme), err
	}
	return prev, work, nil
}

// prepare parses stylesheet and sets up build context.
func (c *Compiler) prepare(input, output string) (*build, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("unable to read input: %w", err)
	}
	sheet, err := c.parser.Parse(data, input)
	if err != nil {
		return nil, locate(input, "", "", err)
	}
	for _, w := range sheet.Warnings {
		c.log.Warn("Stylesheet problem", zap.String("file", input), zap.String("warning", w))
	}
	for _, imp := range sheet.Imports {
		c.log.Warn("Imports are not supported, ignoring", zap.String("url", imp))
	}

	g := cascade.New(c.log)
	if err := g.AddSheet(sheet); err != nil {
		return nil, locate(input, "", "", err)
	}

	namer, err := assets.NewNamer(c.cfg.Compiler.AssetNameTemplate)
	if err != nil {
		return nil, err
	}
	source, targets := c.densities(g.Device())
	enc := assets.Encoder{Format: c.cfg.Compiler.ImageFormat, JPEGQuality: c.cfg.Compiler.JPEGQuality}

	return &build{
		Compiler:  c,
		input:     input,
		output:    output,
		dir:       filepath.Dir(input),
		themeName: strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
		sheet:     sheet,
		graph:     g,
		namer:     namer,
		enc:       enc,
		source:    source,
		targets:   targets,
		pipeline:  assets.NewPipeline(enc, source, targets, c.log),
		env: decision.Env{
			DPI:       assets.BucketOf(source).DPI,
			RefWidth:  float64(c.cfg.Compiler.ReferenceWidth),
			RefHeight: float64(c.cfg.Compiler.ReferenceHeight),
			FontFaces: sheet.FontFaces,
		},
		loaded:  make(map[string]string),
		claimed: make(map[string]string),
	}, nil
}

// densities returns density snapshots are produced at and densities to
// generate, #Device rule overrides configuration.
func (c *Compiler) densities(dev cascade.Device) (config.Density, []config.Density) {
	minDPI, maxDPI := c.cfg.Compiler.MinDPI, c.cfg.Compiler.MaxDPI
	if dev.MinDPI > 0 {
		minDPI = dev.MinDPI
	}
	if dev.MaxDPI > 0 {
		maxDPI = dev.MaxDPI
	}
	source := c.cfg.Compiler.TargetDensity
	if dev.DPI > 0 {
		source = assets.DensityForDPI(dev.DPI)
	}
	return source, assets.Targets(minDPI, maxDPI, source)
}
