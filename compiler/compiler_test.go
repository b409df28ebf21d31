package compiler_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"cn1css/cache"
	"cn1css/compiler"
	"cn1css/config"
	"cn1css/decision"
	"cn1css/render"
	"cn1css/resfile"
	"cn1css/style"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	// single density keeps generated assets small
	cfg.Compiler.MinDPI, cfg.Compiler.MaxDPI = 160, 160
	cfg.Compiler.TargetDensity = config.DensityMedium
	cfg.Render.Width, cfg.Render.Height = 60, 40
	cfg.Render.Timeout = 20 * time.Second
	return cfg
}

// project lays out base/css/theme.css and returns input and output paths.
func project(t *testing.T, sheet string) (string, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "css")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	in := filepath.Join(dir, "theme.css")
	if err := os.WriteFile(in, []byte(sheet), 0o644); err != nil {
		t.Fatal(err)
	}
	return in, compiler.DefaultOutput(in)
}

// update replaces stylesheet and makes it newer than the output.
func update(t *testing.T, in, sheet string) {
	t.Helper()
	if err := os.WriteFile(in, []byte(sheet), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(in, future, future); err != nil {
		t.Fatal(err)
	}
}

func newCompiler(t *testing.T, cfg *config.Config, opts compiler.Options) *compiler.Compiler {
	return compiler.New(cfg, render.NewLocal(cfg.Compiler.ReferenceWidth, cfg.Compiler.ReferenceHeight, zap.NewNop()), opts, zaptest.NewLogger(t))
}

func compile(t *testing.T, c *compiler.Compiler, in, out string) *compiler.Summary {
	t.Helper()
	s, err := c.Compile(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return s
}

func load(t *testing.T, path string) *resfile.Container {
	t.Helper()
	c, err := resfile.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func value(t *testing.T, c *resfile.Container, key string) string {
	t.Helper()
	v, ok := c.Get(key)
	if !ok {
		t.Fatalf("key %s is missing, have %v", key, c.Keys())
	}
	return v.String()
}

func TestCompile_Button(t *testing.T) {
	in, out := project(t, "Button{background-color:#ff0000;border:1px solid #000000}")
	s := compile(t, newCompiler(t, testConfig(t), compiler.Options{}), in, out)

	if !s.Full || s.Rendered != 0 || !slices.Equal(s.Dirty, []string{"Button"}) {
		t.Errorf("summary = %+v", s)
	}
	theme := load(t, out)
	for key, want := range map[string]string{
		"Button.bgColor":      "FF0000",
		"Button.border":       "line,1px,#000000",
		"Button.transparency": "255",
		"Button.sel#bgColor":  "FF0000",
		"Button.press#border": "line,1px,#000000",
		"Button.dis#bgColor":  "FF0000",
	} {
		if got := value(t, theme, key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if ids := theme.ImageIDs(); len(ids) != 0 {
		t.Errorf("native styles produced images %v", ids)
	}
	if theme.Theme != "theme" || theme.BuildID == "" {
		t.Errorf("theme %q build %q", theme.Theme, theme.BuildID)
	}
}

func TestCompile_Idempotent(t *testing.T) {
	sheet := `
Button { background-color: #ff0000; border: 1px solid #000000 }
Card { border: 1px solid #000000; border-radius: 2mm 4mm; background-color: #ff0000 }
Card:pressed { background-color: #00ff00 }
`
	in, out := project(t, sheet)
	cfg := testConfig(t)
	compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	sums, err := cache.LoadSnapshot(cache.SnapshotPath(in))
	if err != nil {
		t.Fatal(err)
	}

	s := compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	if !s.Skipped {
		t.Errorf("unchanged stylesheet was compiled again: %+v", s)
	}

	s = compile(t, newCompiler(t, cfg, compiler.Options{Force: true}), in, out)
	if s.Skipped || !s.Full {
		t.Errorf("forced build summary = %+v", s)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("recompiling unchanged stylesheet changed output")
	}
	again, err := cache.LoadSnapshot(cache.SnapshotPath(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != len(sums) {
		t.Fatalf("checksums changed: %v vs %v", sums, again)
	}
	for k, v := range sums {
		if again[k] != v {
			t.Errorf("checksum of %s changed", k)
		}
	}
}

func TestCompile_Incremental(t *testing.T) {
	in, out := project(t, `
Base { color: #000000 }
Button { cn1-derive: Base; background-color: #ff0000 }
Label { color: #0000ff }
`)
	cfg := testConfig(t)
	compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	build := load(t, out).BuildID

	update(t, in, `
Base { color: #ffffff }
Button { cn1-derive: Base; background-color: #ff0000 }
Label { color: #0000ff }
`)
	s := compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	if s.Full || !slices.Equal(s.Dirty, []string{"Base", "Button"}) {
		t.Errorf("summary = %+v", s)
	}
	if s.Changes["Base"] != cache.StatusModified || s.Changes["Label"] != cache.StatusUnchanged {
		t.Errorf("changes = %v", s.Changes)
	}
	theme := load(t, out)
	if got := value(t, theme, "Base.fgColor"); got != "FFFFFF" {
		t.Errorf("Base.fgColor = %s", got)
	}
	if got := value(t, theme, "Button.sel#derive"); got != "Base.sel" {
		t.Errorf("Button.sel#derive = %s", got)
	}
	if got := value(t, theme, "Label.fgColor"); got != "0000FF" {
		t.Errorf("Label.fgColor = %s", got)
	}
	if theme.BuildID == build {
		t.Error("build id kept for changed content")
	}

	update(t, in, "Base { color: #ffffff }")
	s = compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	if s.Changes["Label"] != cache.StatusDeleted || s.Changes["Button"] != cache.StatusDeleted {
		t.Errorf("changes = %v", s.Changes)
	}
	if els := load(t, out).Elements(); !slices.Equal(els, []string{"Base"}) {
		t.Errorf("elements = %v", els)
	}
}

func TestCompile_RasterAssets(t *testing.T) {
	in, out := project(t, `
Card { border: 1px solid #000000; border-radius: 2mm 4mm; background-color: #ff0000 }
Card:pressed { background-color: #00ff00 }
Fade { border: none; background: linear-gradient(90deg, rgba(255,0,0,0.5), #0000ff) }
`)
	s := compile(t, newCompiler(t, testConfig(t), compiler.Options{}), in, out)
	// Card unselected, selected and disabled share one snapshot
	if s.Rendered != 3 {
		t.Errorf("rendered %d boxes", s.Rendered)
	}
	theme := load(t, out)

	border := value(t, theme, "Card.border")
	parts := strings.Split(border, ",")
	if parts[0] != "image" || len(parts) != 10 {
		t.Fatalf("Card.border = %s", border)
	}
	for _, id := range parts[1:] {
		img, ok := theme.Image(id)
		if !ok || len(img.Variants) != 1 || img.Variants[0].Density != 30 {
			t.Errorf("image %s = %+v", id, img)
		}
	}
	if got := value(t, theme, "Card.sel#border"); got != border {
		t.Errorf("selected state does not share image border: %s", got)
	}
	if got := value(t, theme, "Card.press#border"); got == border || !strings.HasPrefix(got, "image,") {
		t.Errorf("Card.press#border = %s", got)
	}
	if got := value(t, theme, "Card.transparency"); got != "0" {
		t.Errorf("Card.transparency = %s", got)
	}

	bg := value(t, theme, "Fade.bgImage")
	if _, ok := theme.Image(strings.TrimPrefix(bg, "image:")); !ok {
		t.Errorf("Fade.bgImage %s is not stored", bg)
	}
	if _, ok := theme.Get("Fade.bgGradient"); ok {
		t.Error("gradient kept for raster strategy")
	}

	// dropping raster styles collects their images
	update(t, in, "Card { background-color: #ff0000 }")
	s = compile(t, newCompiler(t, testConfig(t), compiler.Options{}), in, out)
	if len(s.Removed) != 9*2+1 {
		t.Errorf("removed %d images: %v", len(s.Removed), s.Removed)
	}
	if ids := load(t, out).ImageIDs(); len(ids) != 0 {
		t.Errorf("images left: %v", ids)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.NRGBA{0, 0, 255, 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCompile_ImagesAndConstants(t *testing.T) {
	in, out := project(t, `
#Constants { includeNativeBool: true; themeTitle: "Flat"; defaultFontSizeInt: 18; logoImage: url(logo.png) }
Logo { background: url("logo.png") no-repeat; border: none }
Hi { background: url("logo.png") no-repeat; border: none; cn1-source-dpi: 320 }
`)
	writePNG(t, filepath.Join(filepath.Dir(in), "logo.png"), 32, 16)

	compile(t, newCompiler(t, testConfig(t), compiler.Options{XML: true}), in, out)
	theme := load(t, out)

	for key, want := range map[string]string{
		"@includeNativeBool":  "true",
		"@themeTitle":         "Flat",
		"@defaultFontSizeInt": "18",
	} {
		if got := value(t, theme, key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	logo := value(t, theme, "Logo.bgImage")
	if got := value(t, theme, "@logoImage"); got != logo {
		t.Errorf("constant image %s is not shared with %s", got, logo)
	}
	img, ok := theme.Image(strings.TrimPrefix(logo, "image:"))
	if !ok || img.Variants[0].Width != 32 || img.Variants[0].Height != 16 {
		t.Errorf("logo image = %+v", img)
	}

	// designed for 320 dpi, scaled down for medium density
	hi := value(t, theme, "Hi.bgImage")
	if hi == logo {
		t.Error("images of different source density share id")
	}
	img, ok = theme.Image(strings.TrimPrefix(hi, "image:"))
	if !ok || img.Variants[0].Width != 16 || img.Variants[0].Height != 8 {
		t.Errorf("hi image = %+v", img)
	}

	data, err := os.ReadFile(out + ".xml")
	if err != nil {
		t.Fatalf("XML dump: %v", err)
	}
	if !bytes.Contains(data, []byte("Logo.bgImage")) {
		t.Errorf("XML dump misses keys:\n%s", data)
	}
}

func TestCompile_DistinctGradients(t *testing.T) {
	tests := []struct {
		name  string
		sheet string
	}{
		{"angle", `
Red { border: none; background: linear-gradient(45deg, #ff0000, #0000ff) }
Green { border: none; background: linear-gradient(45deg, #00ff00, #ffff00) }
`},
		{"three stops", `
Red { border: none; background: linear-gradient(to bottom, #ff0000, #ffffff, #0000ff) }
Green { border: none; background: linear-gradient(to bottom, #00ff00, #000000, #ffff00) }
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := project(t, tt.sheet)
			s := compile(t, newCompiler(t, testConfig(t), compiler.Options{}), in, out)
			if s.Rendered != 2 {
				t.Errorf("rendered %d boxes, want one per gradient", s.Rendered)
			}
			theme := load(t, out)
			red, green := value(t, theme, "Red.bgImage"), value(t, theme, "Green.bgImage")
			if red == green {
				t.Fatalf("different gradients share image %s", red)
			}
			ri, ok := theme.Image(strings.TrimPrefix(red, "image:"))
			if !ok {
				t.Fatalf("image %s is not stored", red)
			}
			gi, ok := theme.Image(strings.TrimPrefix(green, "image:"))
			if !ok {
				t.Fatalf("image %s is not stored", green)
			}
			if bytes.Equal(ri.Variants[0].Data, gi.Variants[0].Data) {
				t.Error("different gradients produce identical bitmaps")
			}
			// states of one element still share the snapshot
			if got := value(t, theme, "Red.sel#bgImage"); got != red {
				t.Errorf("Red.sel#bgImage = %s, want %s", got, red)
			}
		})
	}
}

func TestCompile_ImageStorageOverrides(t *testing.T) {
	in, out := project(t, `
Logo { background: url(logo.png) no-repeat; border: none; cn1-densities: none; cn1-image-id: brand }
Icon { background: url(logo.png) no-repeat; border: none }
`)
	writePNG(t, filepath.Join(filepath.Dir(in), "logo.png"), 32, 16)
	cfg := testConfig(t)
	cfg.Compiler.MinDPI, cfg.Compiler.MaxDPI = 120, 320

	compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	theme := load(t, out)

	if got := value(t, theme, "Logo.bgImage"); got != "image:brand" {
		t.Errorf("Logo.bgImage = %s", got)
	}
	img, ok := theme.Image("brand")
	if !ok || !img.Single || len(img.Variants) != 1 {
		t.Fatalf("brand image = %+v", img)
	}
	if v := img.Variants[0]; v.Density != 30 || v.Width != 32 || v.Height != 16 {
		t.Errorf("brand variant = %+v", v)
	}

	icon := value(t, theme, "Icon.bgImage")
	if icon == "image:brand" {
		t.Fatal("image without overrides shares id with single image")
	}
	img, ok = theme.Image(strings.TrimPrefix(icon, "image:"))
	if !ok || img.Single || len(img.Variants) < 2 {
		t.Errorf("icon image = %+v", img)
	}
}

func TestCompile_ImageStorageErrors(t *testing.T) {
	tests := []struct {
		name     string
		sheet    string
		selector string
		property string
	}{
		{"densities list", "Logo { background: url(logo.png) no-repeat; border: none; cn1-densities: low }", "Logo", "cn1-densities"},
		{"id clash", `
Logo { background: url(logo.png) no-repeat; border: none; cn1-image-id: brand }
Mark { background: url(mark.png) no-repeat; border: none; cn1-image-id: brand }
`, "Mark", "background-image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := project(t, tt.sheet)
			writePNG(t, filepath.Join(filepath.Dir(in), "logo.png"), 8, 8)
			writePNG(t, filepath.Join(filepath.Dir(in), "mark.png"), 4, 4)
			_, err := newCompiler(t, testConfig(t), compiler.Options{}).Compile(context.Background(), in, out)
			var ce *compiler.CompileError
			if !errors.As(err, &ce) || !errors.Is(err, decision.ErrUnsupportedValue) {
				t.Fatalf("Compile() error = %v", err)
			}
			if ce.Selector != tt.selector || ce.Property != tt.property {
				t.Errorf("error = %+v", ce)
			}
			if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("output written on failure: %v", err)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	in, out := project(t, "Label { color: red }\nButton { float: left }")
	_, err := newCompiler(t, testConfig(t), compiler.Options{}).Compile(context.Background(), in, out)
	var ce *compiler.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("Compile() error = %v, want CompileError", err)
	}
	if ce.File != in || ce.Selector != "Button" || ce.Property != "float" || !errors.Is(err, style.ErrUnsupportedProperty) {
		t.Errorf("error = %+v", ce)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output written on failure: %v", err)
	}

	in, out = project(t, "Logo { background: url(missing.png) no-repeat; border: none }")
	_, err = newCompiler(t, testConfig(t), compiler.Options{}).Compile(context.Background(), in, out)
	if !errors.As(err, &ce) || ce.Selector != "Logo" || ce.Property != "background-image" {
		t.Errorf("Compile() error = %v", err)
	}
}

type stalled struct{}

func (stalled) Submit(context.Context, render.Request) *render.Future {
	return render.NewFuture()
}

func TestCompile_RenderTimeout(t *testing.T) {
	in, out := project(t, "Card { border: 1px dashed #000000 }")
	cfg := testConfig(t)
	cfg.Render.Timeout = 50 * time.Millisecond
	_, err := compiler.New(cfg, stalled{}, compiler.Options{}, zap.NewNop()).Compile(context.Background(), in, out)
	if !errors.Is(err, render.ErrRenderTimeout) {
		t.Fatalf("Compile() error = %v, want timeout", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output written on failure: %v", err)
	}
}

func TestCompile_ModifiedOutput(t *testing.T) {
	in, out := project(t, "Button { color: #000000 }")
	cfg := testConfig(t)
	compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)

	if err := os.WriteFile(out, []byte("edited by hand"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	if s.Skipped || !s.Full {
		t.Errorf("summary = %+v", s)
	}
	base := filepath.Dir(filepath.Dir(in))
	backups, err := filepath.Glob(filepath.Join(base, cfg.Cache.BackupDir, "theme.res.*.bak"))
	if err != nil || len(backups) != 1 {
		t.Fatalf("backups = %v, %v", backups, err)
	}
	if data, _ := os.ReadFile(backups[0]); string(data) != "edited by hand" {
		t.Errorf("backup content = %q", data)
	}
	if got := value(t, load(t, out), "Button.fgColor"); got != "000000" {
		t.Errorf("Button.fgColor = %s", got)
	}

	data, err := os.ReadFile(filepath.Join(base, cfg.Cache.ChecksumFile))
	if err != nil {
		t.Fatal(err)
	}
	sum, _ := cache.FileChecksum(out)
	if want := "css/theme.res:" + sum; !strings.Contains(string(data), want) {
		t.Errorf("checksum file %q does not record %q", data, want)
	}
}

func TestCompile_SkipByContent(t *testing.T) {
	in, out := project(t, "Button { color: #000000 }")
	cfg := testConfig(t)
	compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)

	// touched but not changed
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(in, future, future); err != nil {
		t.Fatal(err)
	}
	if s := compile(t, newCompiler(t, cfg, compiler.Options{}), in, out); !s.Skipped {
		t.Errorf("touched stylesheet was compiled again: %+v", s)
	}

	// changed but looks older than the output
	if err := os.WriteFile(in, []byte("Button { color: #ff0000 }"), 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(in, past, past); err != nil {
		t.Fatal(err)
	}
	if s := compile(t, newCompiler(t, cfg, compiler.Options{}), in, out); s.Skipped {
		t.Error("changed stylesheet was skipped")
	}
	if got := value(t, load(t, out), "Button.fgColor"); got != "FF0000" {
		t.Errorf("Button.fgColor = %s", got)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(filepath.Dir(in)), cfg.Cache.ChecksumFile))
	if err != nil {
		t.Fatal(err)
	}
	sum, _ := cache.FileChecksum(in)
	if want := "css/theme.css:" + sum; !strings.Contains(string(data), want) {
		t.Errorf("checksum file %q does not record %q", data, want)
	}
}

func TestCompile_CorruptedSnapshot(t *testing.T) {
	in, out := project(t, "Button { color: #000000 }\nLabel { color: #ffffff }")
	cfg := testConfig(t)
	compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)

	if err := os.WriteFile(cache.SnapshotPath(in), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	update(t, in, "Button { color: #000000 }\nLabel { color: #ffff00 }")
	s := compile(t, newCompiler(t, cfg, compiler.Options{}), in, out)
	if !s.Full || len(s.Dirty) != 2 {
		t.Errorf("summary = %+v", s)
	}
	if _, err := cache.LoadSnapshot(cache.SnapshotPath(in)); err != nil {
		t.Errorf("snapshot not restored: %v", err)
	}
}

func TestWatch(t *testing.T) {
	in, out := project(t, "Button { color: #000000 }")
	c := newCompiler(t, testConfig(t), compiler.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx, in, out) }()

	waitFor := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.Now().Add(10 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				cancel()
				t.Fatalf("timed out waiting for %s", what)
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
	has := func(key, want string) func() bool {
		return func() bool {
			theme, err := resfile.Load(out)
			if err != nil {
				return false
			}
			v, ok := theme.Get(key)
			return ok && v.String() == want
		}
	}
	waitFor("initial build", has("Button.fgColor", "000000"))

	// broken stylesheet is reported, watching goes on
	update(t, in, "Button { float: left }")
	time.Sleep(500 * time.Millisecond)
	update(t, in, "Button { color: #ff0000 }")
	waitFor("rebuild", has("Button.fgColor", "FF0000"))

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch() did not stop")
	}
}

func TestDefaultOutput(t *testing.T) {
	if got := compiler.DefaultOutput(filepath.Join("a", "theme.css")); got != filepath.Join("a", "theme.res") {
		t.Errorf("DefaultOutput() = %s", got)
	}
}
