package service

import (
	"html/template"
	"io"
)

// The printable sheet is an HTML grid, one cell per tag: the payload is
// embedded in a data attribute for the print pipeline to rasterize
// into a QR image, with the human-readable code printed underneath.
// PDF conversion and QR rasterization happen downstream; this service
// only emits the artifact.
const sheetTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Tag Sheet {{.BatchID}}</title>
<style>
body { font-family: sans-serif; }
.grid { display: flex; flex-wrap: wrap; }
.cell { width: 180px; margin: 8px; padding: 12px; border: 1px dashed #999; text-align: center; page-break-inside: avoid; }
.qr { font-size: 9px; word-break: break-all; color: #555; min-height: 90px; }
.code { font-weight: bold; letter-spacing: 1px; margin-top: 6px; }
</style>
</head>
<body>
<h1>Batch {{.BatchID}} ({{len .Tags}} tags)</h1>
<div class="grid">
{{range .Tags}}<div class="cell" data-qr-payload="{{.Payload}}">
<div class="qr">{{.Payload}}</div>
<div class="code">{{.Code}}</div>
</div>
{{end}}</div>
</body>
</html>
`

var sheetTmpl = template.Must(template.New("sheet").Parse(sheetTemplate))

// WriteSheet renders the printable sheet for a batch to w.
func WriteSheet(w io.Writer, batchID string, tags []IssuedTag) error {
	return sheetTmpl.Execute(w, struct {
		BatchID string
		Tags    []IssuedTag
	}{BatchID: batchID, Tags: tags})
}
