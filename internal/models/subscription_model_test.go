package models

import "testing"

func TestValidPackage(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "Basic", want: true},
		{in: "Premium", want: true},
		{in: "basic", want: false},
		{in: "Platinum", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := ValidPackage(tt.in); got != tt.want {
			t.Fatalf("ValidPackage(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
