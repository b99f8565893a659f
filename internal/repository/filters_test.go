package repository

import (
	"reflect"
	"testing"
)

func TestDigitsOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "RO-000042", want: "000042"},
		{in: "№42", want: "42"},
		{in: "8 (999) 111-22-33", want: "89991112233"},
		{in: "laptop", want: ""},
	}
	for _, tc := range tests {
		if got := digitsOf(tc.in); got != tc.want {
			t.Errorf("digitsOf(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPhoneVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "89991112233", want: []string{"89991112233", "79991112233"}},
		{in: "79991112233", want: []string{"79991112233"}},
		{in: "8999", want: []string{"8999"}},
	}
	for _, tc := range tests {
		if got := phoneVariants(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("phoneVariants(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
