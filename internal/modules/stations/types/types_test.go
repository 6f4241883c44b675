package types

import "testing"

func ptr[T any](v T) *T { return &v }

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		createErr bool
		updateErr bool
	}{
		{"full", Input{Lat: ptr(54.0), Lng: ptr(21.0), Name: ptr("A")}, false, false},
		{"text only", Input{Name: ptr("A")}, true, false},
		{"lat only", Input{Lat: ptr(1.0)}, true, false},
		{"lat too big", Input{Lat: ptr(90.5), Lng: ptr(0.0)}, true, true},
		{"lng too small", Input{Lat: ptr(0.0), Lng: ptr(-181.0)}, true, true},
		{"empty", Input{}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.in.ValidateCreate(); (err != nil) != tt.createErr {
				t.Errorf("ValidateCreate() = %v; want error %v", err, tt.createErr)
			}
			if err := tt.in.ValidateUpdate(); (err != nil) != tt.updateErr {
				t.Errorf("ValidateUpdate() = %v; want error %v", err, tt.updateErr)
			}
		})
	}
}
