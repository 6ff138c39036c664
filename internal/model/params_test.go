package model

import "testing"

func TestRectValidate(t *testing.T) {
	tests := []struct {
		name    string
		rect    Rect
		wantErr bool
	}{
		{name: "zero", rect: Rect{}},
		{name: "default", rect: Rect{X: 91, Y: 97, Width: 8, Height: 2}},
		{name: "upper bound", rect: Rect{X: 65535, Y: 65535, Width: 65535, Height: 65535}},
		{name: "negative x", rect: Rect{X: -1}, wantErr: true},
		{name: "negative height", rect: Rect{Height: -5}, wantErr: true},
		{name: "x too large", rect: Rect{X: 65536}, wantErr: true},
		{name: "y too large", rect: Rect{Y: 1 << 20}, wantErr: true},
		{name: "width too large", rect: Rect{Width: 70000}, wantErr: true},
		{name: "height too large", rect: Rect{Height: 65536}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rect.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%+v) error = %v, wantErr %v", tt.rect, err, tt.wantErr)
			}
		})
	}
}
