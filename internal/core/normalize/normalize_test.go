package normalize

import (
	"math"
	"testing"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOk bool
	}{
		{"1.234,56", 1234.56, true},
		{"1234.56", 1234.56, true},
		{"2.404.273,51", 2404273.51, true},
		{"1,5", 1.5, true},
		{"1,234.56", 1234.56, true},
		{"42", 42, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.wantOk || (ok && math.Abs(got-tt.want) > 1e-9) {
			t.Errorf("ParseNumber(%q) = %v, %v; esperado %v, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseMonetary(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"R$ 9.939,84", 9939.84},
		{"9.939,84", 9939.84},
		{"1234.56", 1234.56},
		{"abc", 0},
	}
	for _, tt := range tests {
		if got := ParseMonetary(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseMonetary(%q) = %v; esperado %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateISO(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOk bool
	}{
		{"31/12/2027", "2027-12-31", true},
		{"1/2/2025", "2025-02-01", true},
		{"2025-02-01", "2025-02-01", true},
		{"00/00/0000", "", false},
		{"abc", "", false},
		{"", "", false},
		{"32/01/2025", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDateISO(tt.in)
		if ok != tt.wantOk || got != tt.want {
			t.Errorf("ParseDateISO(%q) = %q, %v; esperado %q, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseDateISOSerial(t *testing.T) {
	// serial Excel 45678 = 21/01/2025
	got, ok := ParseDateISO("45678")
	if !ok || got != "2025-01-21" {
		t.Fatalf("ParseDateISO(45678) = %q, %v; esperado 2025-01-21", got, ok)
	}
	// anos soltos nunca viram data
	if _, ok := ParseDateISO("2024"); ok {
		t.Fatal("ParseDateISO(2024) não deveria reconhecer um ano como serial")
	}
}

func TestParseDecimalHours(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOk bool
	}{
		{"1,5", 1.5, true},
		{"318.55", 318.55, true}, // ponto aqui é decimal, não milhar
		{"1.318,55", 1318.55, true},
		{"0.5", 0.5, true}, // coluna decimal: meia hora, sem heurística de serial
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDecimalHours(tt.in)
		if ok != tt.wantOk || (ok && math.Abs(got-tt.want) > 1e-9) {
			t.Errorf("ParseDecimalHours(%q) = %v, %v; esperado %v, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseDurationHours(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOk bool
	}{
		{"10:30:00", 10.5, true},
		{"5:00:00", 5.0, true},
		{"1:30", 1.5, true},
		{"0.5", 12.0, true}, // serial de tempo: meio dia
		{"2,5", 2.5, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDurationHours(tt.in)
		if ok != tt.wantOk || (ok && math.Abs(got-tt.want) > 1e-9) {
			t.Errorf("ParseDurationHours(%q) = %v, %v; esperado %v, %v", tt.in, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestParseSerialDayHours(t *testing.T) {
	// 80,51 dias de serial = 1932,24 horas
	got, ok := ParseSerialDayHours("80,51")
	if !ok || math.Abs(got-1932.24) > 1e-9 {
		t.Fatalf("ParseSerialDayHours(80,51) = %v, %v; esperado 1932.24", got, ok)
	}
	got, ok = ParseSerialDayHours("1932:16:00")
	if !ok || math.Abs(got-1932.27) > 1e-9 {
		t.Fatalf("ParseSerialDayHours(1932:16:00) = %v, %v; esperado 1932.27", got, ok)
	}
}

func TestNormalizeCNPJ(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12.345.678/0001-95", "12345678000195"},
		{"12345678000195999", "12345678000195"},
		{"123", "123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCNPJ(tt.in); got != tt.want {
			t.Errorf("NormalizeCNPJ(%q) = %q; esperado %q", tt.in, got, tt.want)
		}
	}
}
