package phone

import "testing"

func TestDigitsStripsFormatting(t *testing.T) {
	got := Digits("+971 50-123 4567")
	if got != "971501234567" {
		t.Fatalf("expected 971501234567, got %q", got)
	}
}

func TestDigitsEmptyInput(t *testing.T) {
	if got := Digits("call me"); got != "" {
		t.Fatalf("expected empty digits, got %q", got)
	}
}

func TestComparableRejectsShortNumbers(t *testing.T) {
	if Comparable("123") {
		t.Fatal("expected 3 digits to be non-comparable")
	}
	if !Comparable("1234") {
		t.Fatal("expected 4 digits to be comparable")
	}
}

func TestNormalizeE164LocalNumber(t *testing.T) {
	got := NormalizeE164("0501234567", "AE")
	if got != "+971501234567" {
		t.Fatalf("expected +971501234567, got %q", got)
	}
}

func TestNormalizeE164AlreadyInternational(t *testing.T) {
	got := NormalizeE164("+971501234567", "US")
	if got != "+971501234567" {
		t.Fatalf("expected +971501234567, got %q", got)
	}
}

func TestNormalizeE164FallsBackOnGarbage(t *testing.T) {
	got := NormalizeE164("  not-a-number  ", "AE")
	if got != "not-a-number" {
		t.Fatalf("expected trimmed original, got %q", got)
	}
}

func TestNormalizeE164Empty(t *testing.T) {
	if got := NormalizeE164("   ", "AE"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestCountryCode(t *testing.T) {
	if got := CountryCode("+971501234567", "US"); got != "971" {
		t.Fatalf("expected 971, got %q", got)
	}
}
