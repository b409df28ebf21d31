package units

import (
	"errors"
	"math"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	for _, density := range []int{120, 160, 240, 320, 480, 640} {
		for px := 0; px <= 500; px += 7 {
			mm, err := ToMillimeters(float64(px), UnitPx, density, 0)
			if err != nil {
				t.Fatalf("ToMillimeters(%d px @%d) error = %v", px, density, err)
			}
			back, err := ToPixels(mm, UnitMm, density, 0)
			if err != nil {
				t.Fatalf("ToPixels(%g mm @%d) error = %v", mm, density, err)
			}
			if d := back - px; d < -1 || d > 1 {
				t.Errorf("round trip %d px @%d dpi = %d px", px, density, back)
			}
		}
	}
}

func TestToMillimeters(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		unit    Unit
		density int
		ref     float64
		want    float64
	}{
		{"px", 160, UnitPx, 160, 0, 25.4},
		{"unitless as px", 320, UnitNone, 320, 0, 25.4},
		{"pt", 72, UnitPt, 160, 0, 25.4},
		{"mm", 3, UnitMm, 160, 0, 3},
		{"cm", 1.5, UnitCm, 160, 0, 15},
		{"in", 2, UnitIn, 160, 0, 50.8},
		{"percent", 50, UnitPercent, 160, 320, 25.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMillimeters(tt.value, tt.unit, tt.density, tt.ref)
			if err != nil {
				t.Fatalf("ToMillimeters() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ToMillimeters() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToPixels(t *testing.T) {
	tests := []struct {
		name    string
		length  Length
		density int
		ref     float64
		want    int
	}{
		{"px identity", Length{12.4, UnitPx}, 480, 0, 12},
		{"mm", Length{2, UnitMm}, 254, 0, 20},
		{"pt", Length{72, UnitPt}, 480, 0, 480},
		{"in", Length{1, UnitIn}, 320, 0, 320},
		{"percent of reference", Length{25, UnitPercent}, 480, 200, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.length.Pixels(tt.density, tt.ref)
			if err != nil {
				t.Fatalf("Pixels() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Pixels() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	if _, err := ToPixels(10, UnitPercent, 160, 0); !errors.Is(err, ErrNoReference) {
		t.Errorf("percentage without reference: got %v", err)
	}
	if _, err := ToMillimeters(10, UnitPercent, 160, 0); !errors.Is(err, ErrNoReference) {
		t.Errorf("percentage without reference: got %v", err)
	}
	if _, err := ToMillimeters(10, Unit(42), 160, 0); !errors.Is(err, ErrUnsupportedUnit) {
		t.Errorf("unknown unit: got %v", err)
	}
	if _, err := ToMillimeters(10, UnitMm, 0, 0); !errors.Is(err, ErrBadDensity) {
		t.Errorf("zero density: got %v", err)
	}
	for _, s := range []string{"em", "rem", "vh", "percent"} {
		if _, err := FromSuffix(s); !errors.Is(err, ErrUnsupportedUnit) {
			t.Errorf("FromSuffix(%q) error = %v, want ErrUnsupportedUnit", s, err)
		}
	}
}

func TestFromSuffix(t *testing.T) {
	tests := map[string]Unit{"": UnitNone, "px": UnitPx, "PT": UnitPt, "mm": UnitMm, "cm": UnitCm, "in": UnitIn, "%": UnitPercent}
	for s, want := range tests {
		got, err := FromSuffix(s)
		if err != nil {
			t.Fatalf("FromSuffix(%q) error = %v", s, err)
		}
		if got != want {
			t.Errorf("FromSuffix(%q) = %s, want %s", s, got, want)
		}
		if s != "PT" && got.Suffix() != s {
			t.Errorf("Suffix() = %q, want %q", got.Suffix(), s)
		}
	}
}
