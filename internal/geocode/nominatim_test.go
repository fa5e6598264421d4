package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	var gotUA, gotQuery, gotLimit string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		if r.URL.Query().Get("polygon_geojson") != "1" {
			t.Error("expected polygon_geojson=1")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"name": "Düsseldorf",
				"display_name": "Düsseldorf, Nordrhein-Westfalen, Deutschland",
				"lat": "51.2254018",
				"lon": "6.7763137",
				"boundingbox": ["51.1243747", "51.3521411", "6.6865872", "6.9398848"],
				"geojson": {"type":"Polygon","coordinates":[[[6.6,51.1],[6.9,51.1],[6.9,51.3],[6.6,51.1]]]}
			},
			{
				"name": "bad",
				"display_name": "unparseable coordinates",
				"lat": "not-a-number",
				"lon": "6.0"
			}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "aoi-tool/1.0", 5)
	results, err := client.Search(context.Background(), "Düsseldorf")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotUA != "aoi-tool/1.0" {
		t.Errorf("expected distinguishing User-Agent, got %q", gotUA)
	}
	if gotQuery != "Düsseldorf" {
		t.Errorf("expected query forwarded, got %q", gotQuery)
	}
	if gotLimit != "5" {
		t.Errorf("expected limit=5, got %q", gotLimit)
	}

	// The unparseable entry is dropped, order preserved.
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	r := results[0]
	if r.DisplayName != "Düsseldorf, Nordrhein-Westfalen, Deutschland" {
		t.Errorf("unexpected display name %q", r.DisplayName)
	}
	if r.Lat != 51.2254018 || r.Lon != 6.7763137 {
		t.Errorf("unexpected coordinates (%v, %v)", r.Lat, r.Lon)
	}
	if r.BoundingBox == nil {
		t.Fatal("expected bounding box")
	}
	if r.BoundingBox.South != 51.1243747 || r.BoundingBox.East != 6.9398848 {
		t.Errorf("unexpected bounding box %+v", *r.BoundingBox)
	}
	if len(r.GeoJSON) == 0 {
		t.Error("expected raw geojson retained")
	}
}

func TestSearchProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "aoi-tool/1.0", 5)
	if _, err := client.Search(context.Background(), "anywhere"); err == nil {
		t.Fatal("expected error on HTTP 503")
	}
}

func TestParseBoundingBoxMalformed(t *testing.T) {
	if parseBoundingBox([]string{"1", "2", "3"}) != nil {
		t.Error("expected nil for short box")
	}
	if parseBoundingBox([]string{"1", "x", "3", "4"}) != nil {
		t.Error("expected nil for non-numeric box")
	}
}
