package maps

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"
)

// DefaultZoom is the initial zoom level of interactive maps.
const DefaultZoom = 12

var interactiveTmpl = template.Must(template.New("map").Parse(`<div id="{{.ID}}" class="weatherbeats-map" style="width:100%;height:100%;min-height:400px;"></div>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script>
(function () {
  var map = L.map({{.ID}}).setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
  L.tileLayer("https://tile.openstreetmap.org/{z}/{x}/{y}.png", {
    maxZoom: 19,
    attribution: "&copy; OpenStreetMap contributors"
  }).addTo(map);
  L.marker([{{.Lat}}, {{.Lon}}]).addTo(map);
})();
</script>
`))

// RenderInteractive returns an embeddable HTML fragment showing an
// OpenStreetMap map centred on the coordinates. Each call gets a fresh
// element id so several fragments can share a page.
func RenderInteractive(lat, lon float64) (string, error) {
	data := struct {
		ID   string
		Lat  template.JS
		Lon  template.JS
		Zoom int
	}{
		ID:   "map_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Lat:  template.JS(formatCoord(lat)),
		Lon:  template.JS(formatCoord(lon)),
		Zoom: DefaultZoom,
	}

	var buf bytes.Buffer
	if err := interactiveTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render map: %w", err)
	}
	return buf.String(), nil
}
