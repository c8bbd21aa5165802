package radio

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind discriminates how a station's audio is obtained.
type SourceKind int

const (
	// DirectStream is a single continuously served audio URL.
	DirectStream SourceKind = iota
	// SegmentedStream is audio delivered as sequentially numbered short
	// segments behind a playlist index.
	SegmentedStream
)

// DirectSource holds the payload of a DirectStream station.
type DirectSource struct {
	StreamURL string
}

// SegmentedSource holds the payload of a SegmentedStream station. The
// current segment sequence number is read from the index resource; segment
// URLs are derived as SegmentBase + sequence + SegmentExt.
type SegmentedSource struct {
	IndexURL     string
	SegmentBase  string
	SegmentExt   string
	PollInterval time.Duration
	Prefetch     int
}

// SegmentURL returns the URL of the segment with the given sequence number.
func (s *SegmentedSource) SegmentURL(seq int64) string {
	return fmt.Sprintf("%s%d%s", s.SegmentBase, seq, s.SegmentExt)
}

// Station is an immutable catalog entry. Exactly one of Direct and Segmented
// is populated, matching Kind.
type Station struct {
	Name      string
	Thumbnail string
	Kind      SourceKind
	Direct    *DirectSource
	Segmented *SegmentedSource
}

// Catalog maps case-insensitive station keys to descriptors, preserving
// insertion order for menu rendering.
type Catalog struct {
	keys  []string
	byKey map[string]*Station
}

func NewCatalog() *Catalog {
	return &Catalog{byKey: make(map[string]*Station)}
}

// Add registers a station under the given key. Re-adding an existing key
// replaces the descriptor but keeps its original position.
func (c *Catalog) Add(key string, st *Station) {
	key = strings.ToLower(key)
	if _, exists := c.byKey[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.byKey[key] = st
}

// Resolve looks a station up by key, case-insensitively.
func (c *Catalog) Resolve(name string) (*Station, bool) {
	st, ok := c.byKey[strings.ToLower(name)]
	return st, ok
}

// Stations returns all descriptors in insertion order.
func (c *Catalog) Stations() []*Station {
	out := make([]*Station, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.byKey[k])
	}
	return out
}

// Keys returns all station keys in insertion order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Catalog) Len() int { return len(c.keys) }
