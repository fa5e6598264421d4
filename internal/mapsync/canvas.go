package mapsync

import (
	"sync"

	"aoi-bknd/internal/geom"
)

// Viewport is the last framing command a MemoryCanvas received.
type Viewport struct {
	Lat     float64           `json:"lat"`
	Lon     float64           `json:"lon"`
	Zoom    int               `json:"zoom"`
	Bounds  *geom.BoundingBox `json:"bounds,omitempty"`
	Padding int               `json:"padding,omitempty"`
}

// MemoryCanvas records layer and viewport commands in order. It backs the
// map-session HTTP surface and the engine tests; a browser client reads the
// recorded state and mirrors it onto the real map widget.
type MemoryCanvas struct {
	mu       sync.Mutex
	order    []string
	layers   map[string]Layer
	viewport Viewport
}

func NewMemoryCanvas() *MemoryCanvas {
	return &MemoryCanvas{layers: make(map[string]Layer)}
}

func (c *MemoryCanvas) AddLayer(layer Layer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.layers[layer.ID]; !exists {
		c.order = append(c.order, layer.ID)
	}
	c.layers[layer.ID] = layer
}

func (c *MemoryCanvas) RemoveLayer(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.layers[id]; !exists {
		return
	}
	delete(c.layers, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *MemoryCanvas) SetView(lat, lon float64, zoom int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = Viewport{Lat: lat, Lon: lon, Zoom: zoom}
}

func (c *MemoryCanvas) FitBounds(box geom.BoundingBox, padding int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lat, lon := box.Center()
	c.viewport = Viewport{Lat: lat, Lon: lon, Zoom: c.viewport.Zoom, Bounds: &box, Padding: padding}
}

// Layers returns the rendered layers in add order.
func (c *MemoryCanvas) Layers() []Layer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Layer, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.layers[id])
	}
	return out
}

// Viewport returns the last framing state.
func (c *MemoryCanvas) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport
}
