// Package surface is the map drawing surface: streets, units and agents addressable by identity,
// rendered onto a tcell screen once per host frame
package surface

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

var (
	ErrDuplicateFeature = errors.New("feature already exists")
	ErrUnknownFeature   = errors.New("unknown feature")
	ErrShortPath        = errors.New("street path needs at least two points")
)

// FeatureID addresses a feature on the surface
type FeatureID string

// Kind classifies drawable features
type Kind uint8

const (
	KindStreet Kind = iota
	KindUnit
	KindAgent
)

func (k Kind) String() string {
	switch k {
	case KindStreet:
		return "street"
	case KindUnit:
		return "unit"
	case KindAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// Point is a position in map cells; fractional parts are truncated when drawn
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned cell rectangle
type Rect struct {
	X, Y, W, H int
}

// Feature is one drawable item
type Feature struct {
	ID    FeatureID
	Kind  Kind
	Glyph rune
	Style tcell.Style
	Path  []Point // Street polyline
	Rect  Rect    // Unit outline
	Pos   Point   // Agent position
}

var (
	streetStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	unitStyle   = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	agentStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// Surface owns every feature and draws them; safe for concurrent use
type Surface struct {
	mu       sync.RWMutex
	screen   tcell.Screen
	features map[FeatureID]*Feature
	status   func() string
	logger   *zap.Logger
}

// New creates an empty surface drawing to screen, which the caller has initialized
func New(screen tcell.Screen, logger *zap.Logger) *Surface {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Surface{
		screen:   screen,
		features: make(map[FeatureID]*Feature),
		logger:   logger,
	}
}

// AddStreet adds a polyline street
func (s *Surface) AddStreet(id FeatureID, path []Point) error {
	if len(path) < 2 {
		return fmt.Errorf("street %s: %w", id, ErrShortPath)
	}
	cp := make([]Point, len(path))
	copy(cp, path)
	return s.add(&Feature{ID: id, Kind: KindStreet, Glyph: '·', Style: streetStyle, Path: cp})
}

// AddUnit adds a rectangular unit outline labeled with glyph
func (s *Surface) AddUnit(id FeatureID, r Rect, glyph rune) error {
	if glyph == 0 {
		glyph = '#'
	}
	return s.add(&Feature{ID: id, Kind: KindUnit, Glyph: glyph, Style: unitStyle, Rect: r})
}

// AddAgent places an agent marker at pos
func (s *Surface) AddAgent(id FeatureID, glyph rune, pos Point) error {
	if glyph == 0 {
		glyph = '@'
	}
	return s.add(&Feature{ID: id, Kind: KindAgent, Glyph: glyph, Style: agentStyle, Pos: pos})
}

func (s *Surface) add(f *Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.features[f.ID]; ok {
		return fmt.Errorf("%s %s: %w", f.Kind, f.ID, ErrDuplicateFeature)
	}
	s.features[f.ID] = f
	return nil
}

// Move repositions an agent
func (s *Surface) Move(id FeatureID, pos Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.features[id]
	if !ok || f.Kind != KindAgent {
		return fmt.Errorf("agent %s: %w", id, ErrUnknownFeature)
	}
	f.Pos = pos
	return nil
}

// Remove deletes a feature and reports whether it existed
func (s *Surface) Remove(id FeatureID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.features[id]; !ok {
		return false
	}
	delete(s.features, id)
	return true
}

// Feature returns a copy of the feature with id
func (s *Surface) Feature(id FeatureID) (Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.features[id]
	if !ok {
		return Feature{}, false
	}
	return *f, true
}

// Count returns how many features of kind exist
func (s *Surface) Count(kind Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, f := range s.features {
		if f.Kind == kind {
			n++
		}
	}
	return n
}

// SetStatusLine installs the text provider for the bottom row, nil hides the row
func (s *Surface) SetStatusLine(fn func() string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = fn
}

// Render redraws the screen: streets, then units, then agents, then the status line
func (s *Surface) Render() {
	s.mu.RLock()
	layers := [3][]*Feature{}
	for _, f := range s.features {
		layers[f.Kind] = append(layers[f.Kind], f)
	}
	status := s.status
	s.mu.RUnlock()

	s.screen.Clear()
	w, h := s.screen.Size()

	for _, layer := range layers {
		// Stable draw order keeps overlapping agents from flickering
		sort.Slice(layer, func(i, j int) bool { return layer[i].ID < layer[j].ID })
		for _, f := range layer {
			s.draw(f, w, h)
		}
	}

	if status != nil && h > 0 {
		s.drawText(0, h-1, w, status(), statusStyle)
	}
	s.screen.Show()
}

func (s *Surface) draw(f *Feature, w, h int) {
	put := func(x, y int, r rune, st tcell.Style) {
		if x >= 0 && y >= 0 && x < w && y < h {
			s.screen.SetContent(x, y, r, nil, st)
		}
	}

	switch f.Kind {
	case KindStreet:
		for i := 1; i < len(f.Path); i++ {
			a, b := f.Path[i-1], f.Path[i]
			line(int(a.X), int(a.Y), int(b.X), int(b.Y), func(x, y int) {
				put(x, y, f.Glyph, f.Style)
			})
		}
	case KindUnit:
		r := f.Rect
		for x := r.X; x < r.X+r.W; x++ {
			put(x, r.Y, '─', f.Style)
			put(x, r.Y+r.H-1, '─', f.Style)
		}
		for y := r.Y; y < r.Y+r.H; y++ {
			put(r.X, y, '│', f.Style)
			put(r.X+r.W-1, y, '│', f.Style)
		}
		put(r.X+r.W/2, r.Y+r.H/2, f.Glyph, f.Style)
	case KindAgent:
		put(int(f.Pos.X), int(f.Pos.Y), f.Glyph, f.Style)
	}
}

func (s *Surface) drawText(x, y, w int, text string, st tcell.Style) {
	col := x
	for _, r := range text {
		if col >= w {
			break
		}
		s.screen.SetContent(col, y, r, nil, st)
		col++
	}
	for ; col < w; col++ {
		s.screen.SetContent(col, y, ' ', nil, st)
	}
}

// line walks the cells of a Bresenham segment
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
