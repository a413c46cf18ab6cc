// Package label renders the printable sticker attached to each device: its
// QR code, name, location and the address the code opens.
package label

import (
	"bytes"
	"fmt"
	"html/template"

	"inspectlog/model"
)

var labelTmpl = template.Must(template.New("label").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Device.ID}} label</title>
<style>
  @page { size: 62mm 90mm; margin: 4mm; }
  body { font-family: sans-serif; text-align: center; margin: 0; }
  .id { font-size: 20pt; font-weight: bold; margin: 2mm 0; }
  .meta { font-size: 9pt; }
  .url { font-size: 7pt; word-break: break-all; color: #444; }
  img { width: 48mm; height: 48mm; }
</style>
</head>
<body>
<div class="label">
  <div class="id">{{.Device.ID}}</div>
  {{if .QR}}<img src="{{.QR}}" alt="QR code for {{.Device.ID}}">{{else}}<p class="meta">No QR code generated yet.</p>{{end}}
  <div class="meta">{{.Device.Name}}</div>
  <div class="meta">{{.Device.Location}}</div>
  <div class="meta">Scan to record the daily inspection</div>
  <div class="url">{{.LogURL}}</div>
</div>
</body>
</html>
`))

// HTML returns a standalone page for device. logURL is printed under the code
// for staff without a scanner.
func HTML(device model.Device, logURL string) (string, error) {
	var buf bytes.Buffer
	err := labelTmpl.Execute(&buf, struct {
		Device model.Device
		QR     template.URL
		LogURL string
	}{
		Device: device,
		QR:     template.URL(device.QRCodeURL),
		LogURL: logURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render label for %s: %w", device.ID, err)
	}
	return buf.String(), nil
}
