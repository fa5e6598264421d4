package geom

import (
	"encoding/json"
)

// BoundingBox holds latitude/longitude extremes in the [south, north, west,
// east] order used by the geocoding provider. Callers must not assume the
// GeoJSON [minLon, minLat, maxLon, maxLat] convention.
type BoundingBox struct {
	South float64
	North float64
	West  float64
	East  float64
}

// Center returns the midpoint of the box as (lat, lon).
func (b BoundingBox) Center() (float64, float64) {
	return (b.South + b.North) / 2, (b.West + b.East) / 2
}

func (b BoundingBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.South, b.North, b.West, b.East})
}

func (b *BoundingBox) UnmarshalJSON(data []byte) error {
	var arr [4]float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	b.South, b.North, b.West, b.East = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// bareGeometryTypes are the geometry types accepted without a Feature wrapper.
var bareGeometryTypes = map[string]bool{
	"Point":              true,
	"LineString":         true,
	"Polygon":            true,
	"MultiLineString":    true,
	"MultiPolygon":       true,
	"GeometryCollection": true,
}

type geoEnvelope struct {
	Type     string `json:"type"`
	Features []struct {
		Geometry json.RawMessage `json:"geometry"`
	} `json:"features"`
	Geometry json.RawMessage `json:"geometry"`
}

// ExtractGeometry reduces arbitrary GeoJSON input to a single bare geometry.
// A FeatureCollection yields the geometry of its first feature only; extra
// features are ignored, not fanned out. Unsupported or malformed input yields
// nil rather than an error.
func ExtractGeometry(raw []byte) json.RawMessage {
	var env geoEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}

	switch {
	case env.Type == "FeatureCollection" && len(env.Features) > 0:
		return nonNull(env.Features[0].Geometry)
	case env.Type == "Feature":
		return nonNull(env.Geometry)
	case bareGeometryTypes[env.Type]:
		return json.RawMessage(raw)
	}
	return nil
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}

// ComputeBoundingBox collects every coordinate pair reachable from the input
// and reduces to min/max latitude and longitude. Returns nil when no
// coordinates are found; structural surprises are swallowed, never raised.
func ComputeBoundingBox(raw []byte) *BoundingBox {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}

	var box *BoundingBox
	collectCoords(doc, func(lat, lon float64) {
		if box == nil {
			box = &BoundingBox{South: lat, North: lat, West: lon, East: lon}
			return
		}
		if lat < box.South {
			box.South = lat
		}
		if lat > box.North {
			box.North = lat
		}
		if lon < box.West {
			box.West = lon
		}
		if lon > box.East {
			box.East = lon
		}
	})
	return box
}

func collectCoords(node any, visit func(lat, lon float64)) {
	switch v := node.(type) {
	case map[string]any:
		switch v["type"] {
		case "Feature":
			collectCoords(v["geometry"], visit)
		case "FeatureCollection":
			if features, ok := v["features"].([]any); ok {
				for _, f := range features {
					collectCoords(f, visit)
				}
			}
		case "GeometryCollection":
			if geoms, ok := v["geometries"].([]any); ok {
				for _, g := range geoms {
					collectCoords(g, visit)
				}
			}
		default:
			collectCoords(v["coordinates"], visit)
		}
	case []any:
		// A position is [lon, lat, ...]; anything deeper recurses.
		if len(v) >= 2 {
			lon, lonOK := v[0].(float64)
			lat, latOK := v[1].(float64)
			if lonOK && latOK {
				visit(lat, lon)
				return
			}
		}
		for _, child := range v {
			collectCoords(child, visit)
		}
	}
}
