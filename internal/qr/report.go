package qr

import (
	"bytes"
	"html/template"
	"time"

	"github.com/farmchainx/dashboard/internal/domain/product"
)

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:Arial,sans-serif;margin:20px;color:#333}
.header{text-align:center;border-bottom:2px solid #10b981;padding-bottom:20px;margin-bottom:30px}
.details{display:grid;grid-template-columns:1fr 1fr;gap:15px;margin-bottom:30px}
.field{padding:10px;border:1px solid #e5e7eb;border-radius:5px}
.label{font-weight:bold;color:#374151}
.qr{text-align:center;margin:30px 0}
.footer{text-align:center;margin-top:40px;font-size:12px;color:#6b7280}
@media print{body{margin:0}}
</style>
</head>
<body>
<div class="header">
<h1>Product Quality Report</h1>
<h2>{{.ProductName}}</h2>
<p>FarmChainX - Generated on: {{.GeneratedOn}}</p>
</div>
<div class="details">
{{- range .Fields}}
<div class="field"><div class="label">{{.Label}}:</div><div>{{.Value}}</div></div>
{{- end}}
</div>
<div class="qr">
<h3>Product QR Code</h3>
{{- if .QRImage}}
<img src="{{.QRImage}}" alt="QR code for {{.ProductName}}" width="200" height="200">
{{- else}}
<div>QR code unavailable</div>
{{- end}}
<p>Scan this QR code to verify product authenticity and access detailed information</p>
</div>
<div class="footer">
<p>FarmChainX - Blockchain Verified Product</p>
<p>This report was generated automatically from our secure system</p>
</div>
</body>
</html>
`))

type reportData struct {
	Title       string
	ProductName string
	GeneratedOn string
	Fields      []Field
	QRImage     template.URL
}

// BuildReport renders a self-contained printable document. qrPNG may be nil,
// in which case the QR section shows a placeholder.
func BuildReport(p product.Product, fields []Field, qrPNG []byte, now time.Time, f Formatter) ([]byte, error) {
	data := reportData{
		Title:       "Product Quality Report - " + p.Name,
		ProductName: p.Name,
		GeneratedOn: now.Format(f.dateLayout()),
		Fields:      fields,
	}
	if len(qrPNG) > 0 {
		data.QRImage = DataURI(qrPNG)
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
