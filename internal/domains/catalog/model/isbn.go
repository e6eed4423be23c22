package model

import (
	"strings"
)

// NormalizeISBN bỏ dấu gạch/khoảng trắng, kiểm tra checksum và trả về ISBN-13.
// ISBN-10 hợp lệ được convert sang 978-prefixed ISBN-13.
func NormalizeISBN(raw string) (string, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '‐', '−':
			return -1
		case 'x':
			return 'X'
		}
		return r
	}, strings.TrimSpace(raw))

	switch len(s) {
	case 10:
		if !validISBN10(s) {
			return "", ErrInvalidISBN
		}
		body := "978" + s[:9]
		return body + isbn13CheckDigit(body), nil
	case 13:
		if !allDigits(s) || isbn13CheckDigit(s[:12]) != s[12:] {
			return "", ErrInvalidISBN
		}
		return s, nil
	}
	return "", ErrInvalidISBN
}

func validISBN10(s string) bool {
	sum := 0
	for i := 0; i < 10; i++ {
		c := s[i]
		var d int
		switch {
		case c >= '0' && c <= '9':
			d = int(c - '0')
		case c == 'X' && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// isbn13CheckDigit tính check digit cho 12 chữ số đầu
func isbn13CheckDigit(body string) string {
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return string(rune('0' + (10-sum%10)%10))
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
