package validator

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path", true},
		{"http://sub.example.co.uk/a/b?c=d", true},
		{"https://my-site.example.org/", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"https://bad_domain", false},
		{"https://localhost", false},
		{"https://example.com:8443", false},
		{"https://example.c", false},
		{"https://example.com/with space", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Validate(tt.url); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestURLValidatorMatchesValidate(t *testing.T) {
	var v URLValidator
	for _, url := range []string{"https://example.com", "ftp://example.com"} {
		if v.Validate(url) != Validate(url) {
			t.Errorf("URLValidator.Validate(%q) disagrees with Validate", url)
		}
	}
}
