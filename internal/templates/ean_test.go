// internal/templates/ean_test.go
package templates

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestEANCheckDigit(t *testing.T) {
	tests := []struct {
		payload string
		want    int
		ok      bool
	}{
		{"1234567890123", 1, true}, // GTIN-14 12345678901231
		{"400638133393", 1, true},  // EAN-13 4006381333931
		{"9638507", 4, true},       // EAN-8 96385074
		{"212345000500", 0, true},
		{"", 0, false},
		{"12a4", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := EANCheckDigit(tt.payload)
			if ok != tt.ok || got != tt.want {
				t.Errorf("EANCheckDigit(%q) = %v, %v; want %v, %v", tt.payload, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValidEAN(t *testing.T) {
	tests := []struct {
		code   string
		length int
		want   bool
	}{
		{"4006381333931", 13, true},
		{"4006381333932", 13, false},
		{"96385074", 8, true},
		{"12345678901231", 14, true},
		{"12345678901232", 14, false},
		{"400638133393", 13, false},
		{"400638133393X", 13, false},
		{"5", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ValidEAN(tt.code, tt.length); got != tt.want {
				t.Errorf("ValidEAN(%q, %d) = %v, want %v", tt.code, tt.length, got, tt.want)
			}
		})
	}
}

func TestInternalChecksum5(t *testing.T) {
	tests := []struct {
		digits string
		want   int
		ok     bool
	}{
		{"00000", 0, true},
		{"00500", 6, true},
		{"12345", 8, true},
		{"1234", 0, false},
		{"123456", 0, false},
		{"12a45", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.digits, func(t *testing.T) {
			got, ok := InternalChecksum5(tt.digits)
			if ok != tt.ok || got != tt.want {
				t.Errorf("InternalChecksum5(%q) = %v, %v; want %v, %v", tt.digits, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// Property-based test: the check digit balances the weighted sum to a multiple of ten
func TestInternalChecksum5_PropertyBalancesSum(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("weighted sum plus 5- weighted check digit is 0 mod 10", prop.ForAll(
		func(n int) bool {
			digits := fmt.Sprintf("%05d", n)
			check, ok := InternalChecksum5(digits)
			if !ok {
				return false
			}
			d := make([]int, 5)
			for i := range d {
				d[i] = int(digits[i] - '0')
			}
			sum := weight5Plus[d[0]] + weight2Minus[d[1]] + weight5Minus[d[2]] + weight5Plus[d[3]] + weight2Minus[d[4]]
			return (sum+weight5Minus[check])%10 == 0
		},
		gen.IntRange(0, 99999),
	))

	properties.TestingRun(t)
}

// Property-based test: appending the computed check digit yields a valid EAN-13
func TestEANCheckDigit_PropertyProducesValidEAN13(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("payload plus check digit validates", prop.ForAll(
		func(hi, lo int) bool {
			payload := fmt.Sprintf("%06d%06d", hi, lo)
			check, ok := EANCheckDigit(payload)
			if !ok {
				return false
			}
			return ValidEAN(fmt.Sprintf("%s%d", payload, check), 13)
		},
		gen.IntRange(0, 999999),
		gen.IntRange(0, 999999),
	))

	properties.TestingRun(t)
}
