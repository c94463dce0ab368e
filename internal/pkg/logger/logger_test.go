package logger

import "testing"

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"supersecretkey", "su***"},
		{"abcd", "***"},
		{"", "***"},
		{"12345", "12***"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactValue(t *testing.T) {
	if got := redactValue("app_key", "1234567890"); got != "12***" {
		t.Errorf("app_key not redacted: %q", got)
	}
	if got := redactValue("omie_secret", "1234567890"); got != "12***" {
		t.Errorf("secret not redacted: %q", got)
	}
	if got := redactValue("codigo", "XBZ-1001"); got != "XBZ-1001" {
		t.Errorf("non-credential field redacted: %q", got)
	}
}
