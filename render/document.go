package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
)

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
{{- if .BaseURL }}
<base href="{{ .BaseURL | html }}">
{{- end }}
<style>
body { margin: 0; padding: 0; background: transparent; }
.cn1-box { box-sizing: border-box; width: {{ .Width }}px; height: {{ .Height }}px; margin: {{ .Gap }}px; }
</style>
</head>
<body data-dpi="{{ .DPI }}" data-width="{{ .Width }}" data-height="{{ .Height }}">
{{- range .Boxes }}
<div class="cn1-box" id="{{ .ID | html }}" style="{{ .Style | trim | html }}"></div>
{{- end }}
</body>
</html>
`

var docTmpl = template.Must(template.New("capture").Funcs(sprig.FuncMap()).Parse(documentTemplate))

// Document builds the HTML capture document of the request.
func Document(req Request) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		Request
		Gap int
	}{Request: req, Gap: max(req.Width, req.Height) / 2}
	if err := docTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("unable to build capture document: %w", err)
	}
	return buf.Bytes(), nil
}

// DocumentHash identifies capture document content.
func DocumentHash(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}
