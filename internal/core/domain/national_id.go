package domain

import "strings"

const nationalIDLength = 11

// NormalizeNationalID strips formatting characters ("123.456.789-09").
func NormalizeNationalID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WellFormedNationalID reports whether s is exactly eleven digits, with no
// formatting. This is what the eligibility oracle accepts.
func WellFormedNationalID(s string) bool {
	if len(s) != nationalIDLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidNationalID checks the two CPF verification digits. Repeated-digit
// sequences such as 11111111111 pass the checksum but are rejected.
func ValidNationalID(s string) bool {
	if !WellFormedNationalID(s) {
		return false
	}
	if strings.Count(s, s[:1]) == nationalIDLength {
		return false
	}

	digits := make([]int, nationalIDLength)
	for i, r := range s {
		digits[i] = int(r - '0')
	}

	return digits[9] == checkDigit(digits[:9]) && digits[10] == checkDigit(digits[:10])
}

func checkDigit(digits []int) int {
	sum := 0
	weight := len(digits) + 1
	for i, d := range digits {
		sum += d * (weight - i)
	}
	v := 11 - sum%11
	if v >= 10 {
		return 0
	}
	return v
}
