// internal/templates/ean.go
package templates

/*
 * GS1 check digit helpers.
 *
 * EANCheckDigit implements the standard mod-10 check digit shared by EAN-8,
 * EAN-13 and GTIN-14: digits are weighted 3,1,3,1... starting from the digit
 * adjacent to the check digit.
 *
 * InternalChecksum5 implements the GS1 price check digit for 5-digit embedded
 * values (weights 5+, 2-, 5-, 5+, 2-). Each weighting is a lookup table:
 *   5+ : units digit of 5*d plus its tens digit
 *   2- : 2*d with the tens subtracted from the units (mod 10)
 *   5- : 5*d with the tens subtracted from the units (mod 10)
 * The check digit c is the one whose 5- weighting brings the sum to a
 * multiple of ten.
 */

var (
	weight5Plus        = [10]int{0, 5, 1, 6, 2, 7, 3, 8, 4, 9}
	weight2Minus       = [10]int{0, 2, 4, 6, 8, 9, 1, 3, 5, 7}
	weight5Minus       = [10]int{0, 5, 9, 4, 8, 3, 7, 2, 6, 1}
	check5MinusReverse = [10]int{0, 9, 7, 5, 3, 1, 8, 6, 4, 2}
)

// EANCheckDigit computes the GS1 mod-10 check digit for payload, which must
// be all digits and exclude the check digit itself.
func EANCheckDigit(payload string) (int, bool) {
	if payload == "" {
		return 0, false
	}
	sum := 0
	for i := 0; i < len(payload); i++ {
		c := payload[len(payload)-1-i]
		if c < '0' || c > '9' {
			return 0, false
		}
		d := int(c - '0')
		if i%2 == 0 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10, true
}

// ValidEAN reports whether code is a length-digit GS1 code with a correct check digit.
func ValidEAN(code string, length int) bool {
	if length < 2 || len(code) != length {
		return false
	}
	last := code[length-1]
	if last < '0' || last > '9' {
		return false
	}
	want, ok := EANCheckDigit(code[:length-1])
	return ok && int(last-'0') == want
}

// InternalChecksum5 computes the price check digit over exactly five digits.
func InternalChecksum5(digits string) (int, bool) {
	if len(digits) != 5 {
		return 0, false
	}
	var d [5]int
	for i := 0; i < 5; i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
		d[i] = int(digits[i] - '0')
	}

	sum := weight5Plus[d[0]] +
		weight2Minus[d[1]] +
		weight5Minus[d[2]] +
		weight5Plus[d[3]] +
		weight2Minus[d[4]]

	return check5MinusReverse[(10-sum%10)%10], true
}
