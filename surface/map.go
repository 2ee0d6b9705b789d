package surface

import (
	"fmt"

	"github.com/lixenwraith/mapsim/config"
)

// LoadMap adds every configured street and unit to s
func LoadMap(s *Surface, m config.MapConfig) error {
	for _, st := range m.Streets {
		pts := make([]Point, len(st.Points))
		for i, p := range st.Points {
			pts[i] = Point{X: p[0], Y: p[1]}
		}
		if err := s.AddStreet(FeatureID(st.ID), pts); err != nil {
			return fmt.Errorf("load map: %w", err)
		}
	}
	for _, u := range m.Units {
		r := Rect{X: u.X, Y: u.Y, W: u.W, H: u.H}
		if err := s.AddUnit(FeatureID(u.ID), r, config.Glyph(u.Glyph, '#')); err != nil {
			return fmt.Errorf("load map: %w", err)
		}
	}
	return nil
}
