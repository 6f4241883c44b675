package sharing

import (
	"fmt"
	"net/url"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"

	"stationmap/internal/modules/markers/types"
)

const DefaultSize = 256

// GeoURI returns an RFC 5870 geo URI that opens the marker in a maps app.
func GeoURI(m types.Marker) string {
	lat := strconv.FormatFloat(m.Position.Lat(), 'f', -1, 64)
	lng := strconv.FormatFloat(m.Position.Lng(), 'f', -1, 64)
	uri := fmt.Sprintf("geo:%s,%s?q=%s,%s", lat, lng, lat, lng)
	if m.Details.Name != "" {
		uri += "(" + url.QueryEscape(m.Details.Name) + ")"
	}
	return uri
}

// QRCode renders the marker's geo URI as a PNG of size x size pixels.
func QRCode(m types.Marker, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(GeoURI(m), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr for %q: %w", m.Details.Name, err)
	}
	return png, nil
}
