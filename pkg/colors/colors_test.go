package colors

import (
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    color.NRGBA
		wantErr bool
	}{
		{"name", "black", color.NRGBA{A: 255}, false},
		{"name case", "White", color.NRGBA{R: 255, G: 255, B: 255, A: 255}, false},
		{"hex", "#ff0000", color.NRGBA{R: 255, A: 255}, false},
		{"short hex", "#0f0", color.NRGBA{G: 255, A: 255}, false},
		{"gray level", "0.5", color.NRGBA{R: 128, G: 128, B: 128, A: 255}, false},
		{"palette ref", "C0", color.NRGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 255}, false},
		{"none", "none", color.NRGBA{}, false},
		{"bad hex", "#zzzzzz", color.NRGBA{}, true},
		{"gray out of range", "1.5", color.NRGBA{}, true},
		{"unknown", "blurple", color.NRGBA{}, true},
		{"empty", "", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			n := color.NRGBAModel.Convert(got).(color.NRGBA)
			if n != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.spec, n, tt.want)
			}
		})
	}
}

func TestWithAlpha(t *testing.T) {
	c := WithAlpha(color.NRGBA{R: 10, G: 20, B: 30, A: 255}, 0.5)
	n := c.(color.NRGBA)
	if n.A != 128 || n.R != 10 {
		t.Errorf("WithAlpha = %v, want alpha 128 with rgb preserved", n)
	}
	if WithAlpha(nil, 0.5) != nil {
		t.Error("WithAlpha(nil) should be nil")
	}
}

func TestPalette(t *testing.T) {
	for _, name := range PaletteNames() {
		p, err := Palette(name)
		if err != nil {
			t.Errorf("Palette(%q) error: %v", name, err)
		}
		if len(p) == 0 {
			t.Errorf("Palette(%q) is empty", name)
		}
	}
	if _, err := Palette("nope"); err == nil {
		t.Error("Palette(nope) should fail")
	}
}

func TestCycle(t *testing.T) {
	p, _ := Palette(DefaultPalette)
	got := Cycle(p, 6, 4)
	if got[4] != p[0] || got[5] != p[1] || got[3] != p[3] {
		t.Error("Cycle should restart every period entries")
	}
	if len(Cycle(nil, 3, 2)) != 0 {
		t.Error("Cycle(nil) should be empty")
	}
}
