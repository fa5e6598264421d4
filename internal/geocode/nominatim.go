package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"aoi-bknd/internal/geom"
)

// Result holds one place-name match from the geocoding provider. Lat, lon and
// bounding box are parsed from the provider's string encoding; the geojson
// outline, when present, is kept raw for later confirm actions.
type Result struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"displayName"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	BoundingBox *geom.BoundingBox `json:"boundingBox,omitempty"`
	GeoJSON     json.RawMessage   `json:"geojson,omitempty"`
}

// Client wraps a Nominatim-compatible search endpoint. Requests carry the
// configured User-Agent; the provider requires a distinguishing one.
type Client struct {
	baseURL    string
	userAgent  string
	limit      int
	httpClient *http.Client
}

func NewClient(baseURL, userAgent string, limit int) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		limit:     limit,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchItem struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	BoundingBox []string        `json:"boundingbox"`
	GeoJSON     json.RawMessage `json:"geojson"`
}

// Search looks up a free-form place query. Provider result order is
// preserved; the provider already caps results at the configured limit.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	params := url.Values{
		"q":               {query},
		"format":          {"json"},
		"limit":           {strconv.Itoa(c.limit)},
		"polygon_geojson": {"1"},
		"addressdetails":  {"1"},
	}
	u := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d", resp.StatusCode)
	}

	var items []searchItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		lat, latErr := strconv.ParseFloat(item.Lat, 64)
		lon, lonErr := strconv.ParseFloat(item.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		results = append(results, Result{
			Name:        item.Name,
			DisplayName: item.DisplayName,
			Lat:         lat,
			Lon:         lon,
			BoundingBox: parseBoundingBox(item.BoundingBox),
			GeoJSON:     item.GeoJSON,
		})
	}
	return results, nil
}

// parseBoundingBox converts the provider's [south, north, west, east] string
// quadruple; a malformed box yields nil rather than an error.
func parseBoundingBox(box []string) *geom.BoundingBox {
	if len(box) != 4 {
		return nil
	}
	vals := make([]float64, 4)
	for i, s := range box {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		vals[i] = v
	}
	return &geom.BoundingBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}
}
