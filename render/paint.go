package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"cn1css/assets"
	"cn1css/css"
	"cn1css/decision"
	"cn1css/style"
	"cn1css/units"
)

// maxSnapshotDim limits snapshot size regardless of declared box size.
const maxSnapshotDim = 4096

// rect is painted box with corner radii (tl, tr, br, bl; x and y).
type rect struct {
	x, y, w, h float64
	radii      [4][2]float64
}

// fit scales radii down so adjacent ones do not overlap.
func (r rect) fit() rect {
	f := 1.0
	for _, p := range [][3]float64{
		{r.w, r.radii[0][0], r.radii[1][0]},
		{r.w, r.radii[3][0], r.radii[2][0]},
		{r.h, r.radii[0][1], r.radii[3][1]},
		{r.h, r.radii[1][1], r.radii[2][1]},
	} {
		if sum := p[1] + p[2]; sum > p[0] && sum > 0 {
			f = math.Min(f, p[0]/sum)
		}
	}
	for i := range r.radii {
		r.radii[i][0] *= f
		r.radii[i][1] *= f
	}
	return r
}

func (r rect) inset(d float64) rect {
	res := rect{x: r.x + d, y: r.y + d, w: math.Max(r.w-2*d, 0), h: math.Max(r.h-2*d, 0)}
	for i, c := range r.radii {
		res.radii[i] = [2]float64{math.Max(c[0]-d, 0), math.Max(c[1]-d, 0)}
	}
	return res
}

func (r rect) outset(d float64) rect {
	res := rect{x: r.x - d, y: r.y - d, w: r.w + 2*d, h: r.h + 2*d}
	for i, c := range r.radii {
		if c[0] > 0 || c[1] > 0 {
			res.radii[i] = [2]float64{c[0] + d, c[1] + d}
		}
	}
	return res
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// path returns SVG path data of the rounded rectangle.
func (r rect) path() string {
	var sb strings.Builder
	tl, tr, br, bl := r.radii[0], r.radii[1], r.radii[2], r.radii[3]
	arc := func(c [2]float64, x, y float64) {
		if c[0] > 0 && c[1] > 0 {
			fmt.Fprintf(&sb, " A %s %s 0 0 1 %s %s", num(c[0]), num(c[1]), num(x), num(y))
			return
		}
		fmt.Fprintf(&sb, " L %s %s", num(x), num(y))
	}
	fmt.Fprintf(&sb, "M %s %s", num(r.x+tl[0]), num(r.y))
	fmt.Fprintf(&sb, " L %s %s", num(r.x+r.w-tr[0]), num(r.y))
	arc(tr, r.x+r.w, r.y+tr[1])
	fmt.Fprintf(&sb, " L %s %s", num(r.x+r.w), num(r.y+r.h-br[1]))
	arc(br, r.x+r.w-br[0], r.y+r.h)
	fmt.Fprintf(&sb, " L %s %s", num(r.x+bl[0]), num(r.y+r.h))
	arc(bl, r.x, r.y+r.h-bl[1])
	fmt.Fprintf(&sb, " L %s %s", num(r.x), num(r.y+tl[1]))
	arc(tl, r.x+tl[0], r.y)
	sb.WriteString(" Z")
	return sb.String()
}

func paint(attr string, c style.Color) string {
	return fmt.Sprintf(`%s="#%s" %s-opacity="%s"`, attr, c.Hex(), attr, num(c.A))
}

func svgDocument(w, h int, body string) []byte {
	return fmt.Appendf(nil, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">%s</svg>`, w, h, w, h, body)
}

// rasterize draws SVG document onto transparent canvas.
func rasterize(svg []byte, w, h int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("unable to read box drawing: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return dst, nil
}

func pixels(l units.Length, env decision.Env, ref float64) (float64, error) {
	px, err := l.Pixels(env.DPI, ref)
	return float64(px), err
}

// Paint draws element box described by flattened style. Box is w x h
// pixels unless style sets its size, snapshot is extended by room for outer
// shadow. Background image is stretched over the box when not nil.
func Paint(t *style.Table, env decision.Env, w, h int, bg image.Image) (*image.RGBA, error) {
	d, err := decision.Describe(t)
	if err != nil {
		return nil, err
	}
	bw, bh := float64(w), float64(h)
	if !d.Width.IsZero() {
		if bw, err = pixels(d.Width, env, env.RefWidth); err != nil {
			return nil, fmt.Errorf("width: %w", err)
		}
	}
	if !d.Height.IsZero() {
		if bh, err = pixels(d.Height, env, env.RefHeight); err != nil {
			return nil, fmt.Errorf("height: %w", err)
		}
	}
	bw, bh = math.Min(math.Max(bw, 1), maxSnapshotDim), math.Min(math.Max(bh, 1), maxSnapshotDim)

	pad, err := decision.ShadowPadding(d, env)
	if err != nil {
		return nil, fmt.Errorf("box-shadow: %w", err)
	}
	sw, sh := int(bw)+pad.Left+pad.Right, int(bh)+pad.Top+pad.Bottom

	r := rect{x: float64(pad.Left), y: float64(pad.Top), w: bw, h: bh}
	for i, c := range d.Corners {
		if r.radii[i][0], err = pixels(c.X, env, bw); err != nil {
			return nil, fmt.Errorf("border-radius: %w", err)
		}
		if r.radii[i][1], err = pixels(c.Y, env, bh); err != nil {
			return nil, fmt.Errorf("border-radius: %w", err)
		}
	}
	r = r.fit()

	dst := image.NewRGBA(image.Rect(0, 0, sw, sh))
	if err := paintShadow(dst, d, env, r); err != nil {
		return nil, err
	}

	var body strings.Builder
	if g, ok := decision.GradientOf(t); ok {
		def, err := gradientDef(g, "bg")
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&body, `<defs>%s</defs><path d="%s" fill="url(#bg)"/>`, def, r.path())
	} else if d.HasBg {
		fmt.Fprintf(&body, `<path d="%s" %s/>`, r.path(), paint("fill", d.Background))
	}
	if body.Len() > 0 {
		layer, err := rasterize(svgDocument(sw, sh, body.String()), sw, sh)
		if err != nil {
			return nil, err
		}
		draw.Draw(dst, dst.Bounds(), layer, image.Point{}, draw.Over)
	}
	if bg != nil {
		img := assets.Resize(bg, int(bw), int(bh))
		at := image.Rect(pad.Left, pad.Top, pad.Left+int(bw), pad.Top+int(bh))
		draw.Draw(dst, at, img, img.Bounds().Min, draw.Over)
	}

	borders, err := borderBody(d, env, r)
	if err != nil {
		return nil, err
	}
	if borders != "" {
		layer, err := rasterize(svgDocument(sw, sh, borders), sw, sh)
		if err != nil {
			return nil, err
		}
		draw.Draw(dst, dst.Bounds(), layer, image.Point{}, draw.Over)
	}
	return dst, nil
}

func paintShadow(dst *image.RGBA, d decision.Descriptor, env decision.Env, r rect) error {
	s := d.Shadow
	if !s.Set || s.Inset {
		return nil
	}
	var v [4]float64
	for i, l := range []units.Length{s.H, s.V, s.Blur, s.Spread} {
		px, err := pixels(l, env, env.RefWidth)
		if err != nil {
			return fmt.Errorf("box-shadow: %w", err)
		}
		v[i] = px
	}
	h, vert, blur, spread := v[0], v[1], v[2], v[3]
	sr := r.outset(spread)
	sr.x += h
	sr.y += vert

	b := dst.Bounds()
	layer, err := rasterize(svgDocument(b.Dx(), b.Dy(), fmt.Sprintf(`<path d="%s" %s/>`, sr.path(), paint("fill", s.Color))), b.Dx(), b.Dy())
	if err != nil {
		return err
	}
	var img image.Image = layer
	if blur > 0 {
		img = imaging.Blur(layer, blur/2)
	}
	draw.Draw(dst, b, img, image.Point{}, draw.Over)
	return nil
}

var blackColor = style.Color{A: 1}

func sideColor(s decision.Side) style.Color {
	if s.HasColor {
		return s.Color
	}
	return blackColor
}

// borderBody returns SVG elements painting visible borders.
func borderBody(d decision.Descriptor, env decision.Env, r rect) (string, error) {
	var w [4]float64
	visible := false
	for i, s := range d.Sides {
		if !s.Visible() {
			continue
		}
		px, err := pixels(s.Width, env, env.RefWidth)
		if err != nil {
			return "", fmt.Errorf("border-%s-width: %w", style.Sides[i], err)
		}
		w[i], visible = px, true
	}
	if !visible {
		return "", nil
	}

	top := d.Sides[0]
	uniform := true
	for _, s := range d.Sides[1:] {
		if s != top {
			uniform = false
		}
	}
	if uniform {
		width := w[0]
		dash := ""
		switch top.Style {
		case "dashed":
			dash = fmt.Sprintf(` stroke-dasharray="%s,%s"`, num(3*width), num(3*width))
		case "dotted":
			dash = fmt.Sprintf(` stroke-dasharray="%s,%s"`, num(width), num(width))
		}
		return fmt.Sprintf(`<path d="%s" fill="none" stroke-width="%s" %s%s/>`,
			r.inset(width/2).path(), num(width), paint("stroke", sideColor(top)), dash), nil
	}

	// unequal sides are painted as trapezoids meeting at corner diagonals
	x0, y0, x1, y1 := r.x, r.y, r.x+r.w, r.y+r.h
	t, rt, b, l := w[0], w[1], w[2], w[3]
	polys := [4][8]float64{
		{x0, y0, x1, y0, x1 - rt, y0 + t, x0 + l, y0 + t},
		{x1, y0, x1, y1, x1 - rt, y1 - b, x1 - rt, y0 + t},
		{x1, y1, x0, y1, x0 + l, y1 - b, x1 - rt, y1 - b},
		{x0, y1, x0, y0, x0 + l, y0 + t, x0 + l, y1 - b},
	}
	var sb strings.Builder
	for i, s := range d.Sides {
		if w[i] == 0 {
			continue
		}
		p := polys[i]
		fmt.Fprintf(&sb, `<path d="M %s %s L %s %s L %s %s L %s %s Z" %s/>`,
			num(p[0]), num(p[1]), num(p[2]), num(p[3]), num(p[4]), num(p[5]), num(p[6]), num(p[7]), paint("fill", sideColor(s)))
	}
	return sb.String(), nil
}

type colorStop struct {
	color  style.Color
	offset float64
	set    bool
}

// gradientDef returns SVG gradient definition of CSS gradient function.
func gradientDef(v style.Value, id string) (string, error) {
	groups := v.Func.SplitArgs()
	var head []css.Token
	if len(groups) > 0 && len(groups[0]) > 0 {
		if _, err := stopOf(groups[0]); err != nil {
			head, groups = groups[0], groups[1:]
		}
	}
	var stops []colorStop
	for _, g := range groups {
		s, err := stopOf(g)
		if err != nil {
			return "", fmt.Errorf("%s: %w", v.Text, err)
		}
		stops = append(stops, s)
	}
	if len(stops) < 2 {
		return "", fmt.Errorf("%s: at least two color stops expected", v.Text)
	}
	distribute(stops)

	var sb strings.Builder
	switch v.Text {
	case "linear-gradient":
		angle, err := linearAngle(head)
		if err != nil {
			return "", err
		}
		rad := angle * math.Pi / 180
		dx, dy := math.Sin(rad)/2, -math.Cos(rad)/2
		fmt.Fprintf(&sb, `<linearGradient id="%s" x1="%s" y1="%s" x2="%s" y2="%s">`,
			id, num(0.5-dx), num(0.5-dy), num(0.5+dx), num(0.5+dy))
	case "radial-gradient":
		cx, cy := radialCenter(head)
		fmt.Fprintf(&sb, `<radialGradient id="%s" cx="%s" cy="%s" r="0.5" fx="%s" fy="%s">`, id, num(cx), num(cy), num(cx), num(cy))
	default:
		return "", fmt.Errorf("unsupported function %s", v.Text)
	}
	for _, s := range stops {
		fmt.Fprintf(&sb, `<stop offset="%s" stop-color="#%s" stop-opacity="%s"/>`, num(s.offset/100), s.color.Hex(), num(s.color.A))
	}
	if v.Text == "linear-gradient" {
		sb.WriteString("</linearGradient>")
	} else {
		sb.WriteString("</radialGradient>")
	}
	return sb.String(), nil
}

func stopOf(group []css.Token) (colorStop, error) {
	if len(group) == 0 || len(group) > 2 {
		return colorStop{}, fmt.Errorf("invalid color stop")
	}
	v, err := style.FromToken(group[0])
	if err != nil {
		return colorStop{}, err
	}
	c, ok := v.AsColor()
	if !ok {
		return colorStop{}, fmt.Errorf("color expected, got %s", group[0])
	}
	s := colorStop{color: c}
	if len(group) == 2 {
		if group[1].Kind != css.Percentage {
			return colorStop{}, fmt.Errorf("percentage expected, got %s", group[1])
		}
		s.offset, s.set = group[1].Number, true
	}
	return s, nil
}

// distribute assigns missing stop offsets evenly between known ones.
func distribute(stops []colorStop) {
	if !stops[0].set {
		stops[0].offset, stops[0].set = 0, true
	}
	if last := len(stops) - 1; !stops[last].set {
		stops[last].offset, stops[last].set = 100, true
	}
	for i := 1; i < len(stops); {
		if stops[i].set {
			i++
			continue
		}
		j := i
		for !stops[j].set {
			j++
		}
		from, to := stops[i-1].offset, stops[j].offset
		for k := i; k < j; k++ {
			stops[k].offset = from + (to-from)*float64(k-i+1)/float64(j-i+1)
			stops[k].set = true
		}
		i = j
	}
}

var sideAngles = map[string]float64{
	"top": 0, "top right": 45, "right": 90, "bottom right": 135,
	"bottom": 180, "bottom left": 225, "left": 270, "top left": 315,
}

func linearAngle(head []css.Token) (float64, error) {
	if len(head) == 0 {
		return 180, nil
	}
	if deg, ok := decision.Angle(head[0]); ok && len(head) == 1 {
		return deg, nil
	}
	if head[0].IsIdent("to") && len(head) > 1 {
		var parts []string
		for _, tok := range head[1:] {
			parts = append(parts, strings.ToLower(tok.Text))
		}
		key := strings.Join(parts, " ")
		if a, ok := sideAngles[key]; ok {
			return a, nil
		}
		// "to right top" is the same corner as "to top right"
		if len(parts) == 2 {
			if a, ok := sideAngles[parts[1]+" "+parts[0]]; ok {
				return a, nil
			}
		}
	}
	return 0, fmt.Errorf("linear-gradient: unsupported direction %s", css.JoinTokens(head))
}

// radialCenter returns gradient center relative to the box, ignoring shape
// and size keywords.
func radialCenter(head []css.Token) (float64, float64) {
	cx, cy := 0.5, 0.5
	at := -1
	for i, tok := range head {
		if tok.IsIdent("at") {
			at = i
			break
		}
	}
	if at < 0 {
		return cx, cy
	}
	pos := head[at+1:]
	for i, tok := range pos {
		switch {
		case tok.IsIdent("left"):
			cx = 0
		case tok.IsIdent("right"):
			cx = 1
		case tok.IsIdent("top"):
			cy = 0
		case tok.IsIdent("bottom"):
			cy = 1
		case tok.Kind == css.Percentage && i == 0:
			cx = tok.Number / 100
		case tok.Kind == css.Percentage:
			cy = tok.Number / 100
		}
	}
	return cx, cy
}
