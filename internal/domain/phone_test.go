package domain

import "testing"

func TestNewPhoneNumber(t *testing.T) {
	testCases := []struct {
		name        string
		countryCode string
		number      string
		wantCode    string
		wantNumber  string
		wantErr     bool
	}{
		{"plain digits", "+55", "11987654321", "+55", "11987654321", false},
		{"code without plus", "55", "11987654321", "+55", "11987654321", false},
		{"number with separators", "+55", "(11) 98765-4321", "+55", "11987654321", false},
		{"empty code", "  ", "11987654321", "", "", true},
		{"empty number", "+55", "  ", "", "", true},
		{"code too long", "+12345", "11987654321", "", "", true},
		{"too few digits", "+55", "1234567", "", "", true},
		{"too many digits", "+55", "1234567890123456", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPhoneNumber(tc.countryCode, tc.number)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.CountryCode() != tc.wantCode || p.Number() != tc.wantNumber {
				t.Errorf("got %s %s, want %s %s", p.CountryCode(), p.Number(), tc.wantCode, tc.wantNumber)
			}
		})
	}
}

func TestPhoneNumber_Formats(t *testing.T) {
	p, err := NewBrazilianPhone("11 98765-4321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := p.InternationalFormat(); got != "+55 11 98765-4321" {
		t.Errorf("unexpected international format: %q", got)
	}
	if got := p.WhatsAppFormat(); got != "+5511987654321" {
		t.Errorf("unexpected whatsapp format: %q", got)
	}

	// Non-Brazilian numbers fall back to the generic rendering.
	us, err := NewPhoneNumber("+1", "2025550123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := us.InternationalFormat(); got != "+1 2025550123" {
		t.Errorf("unexpected international format: %q", got)
	}
}
