package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule normalizes a raw value into its canonical string form or rejects it.
// Rules are pure and idempotent: applying a rule to its own output yields the same output.
type Rule func(raw any) (string, error)

// RejectError carries a user-facing reason for a rejected value.
type RejectError struct {
	Reason string
}

func (e *RejectError) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &RejectError{Reason: fmt.Sprintf(format, args...)}
}

var (
	digitsRe    = regexp.MustCompile(`\d+`)
	nonDigitRe  = regexp.MustCompile(`\D`)
	uaPhoneRe   = regexp.MustCompile(`^\+380\d{9}$`)
	whitespaces = regexp.MustCompile(`\s+`)
)

// text converts a scalar raw value to a string. Numbers decoded from JSON arrive as float64.
func text(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return text(float64(v))
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	default:
		return "", reject("Некоректне значення.")
	}
}

// Text accepts any scalar and trims surrounding whitespace.
func Text(raw any) (string, error) {
	s, err := text(raw)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// MinLength trims the value and requires at least n characters.
func MinLength(n int) Rule {
	return func(raw any) (string, error) {
		s, err := Text(raw)
		if err != nil {
			return "", err
		}
		if utf8.RuneCountInString(s) < n {
			return "", reject("Мінімальна довжина: %d %s.", n, plural(n, "символ", "символи", "символів"))
		}
		return s, nil
	}
}

// City capitalizes the first letter and leaves the rest untouched ("смт. Ворохта" stays as typed).
func City(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", reject("Вкажіть назву міста.")
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:], nil
}

// FullName collapses whitespace, requires at least two words and title-cases every word.
func FullName(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	s = whitespaces.ReplaceAllString(s, " ")
	if len(strings.Split(s, " ")) < 2 {
		return "", reject("Введіть прізвище та ім'я (мінімум 2 слова).")
	}
	// Casers keep state between calls and must not be shared across goroutines.
	return cases.Title(language.Ukrainian).String(s), nil
}

// Address requires at least three characters.
func Address(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(s) < 3 {
		return "", reject("Адреса занадто коротка.")
	}
	return s, nil
}

// OrganizationCode accepts an EDRPOU (8 digits) or an individual tax number (10 digits).
func OrganizationCode(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	if s == "" || nonDigitRe.MatchString(s) {
		return "", reject("Код має містити тільки цифри.")
	}
	if n := len(s); n != 8 && n != 10 {
		return "", reject("Код має містити 8 (ЄДРПОУ) або 10 (ІПН) цифр. Ви ввели: %d.", n)
	}
	return s, nil
}

// IBAN removes spaces, upper-cases and checks the UA prefix and the 29 character length.
// The checksum is not verified.
func IBAN(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	s = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	if !strings.HasPrefix(s, "UA") {
		return "", reject("IBAN має починатися з UA.")
	}
	if n := utf8.RuneCountInString(s); n != 29 {
		return "", reject("IBAN має містити 29 символів. Ви ввели: %d.", n)
	}
	return s, nil
}

// Phone rewrites Ukrainian numbers into +380XXXXXXXXX. Numbers it cannot recognise are kept
// as "+digits" as long as at least ten digits are present.
func Phone(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	digits := nonDigitRe.ReplaceAllString(s, "")

	switch {
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		return "+38" + digits, nil
	case len(digits) == 12 && strings.HasPrefix(digits, "380"):
		return "+" + digits, nil
	case len(digits) == 9:
		return "+380" + digits, nil
	}

	full := "+" + digits
	if !uaPhoneRe.MatchString(full) && len(digits) < 10 {
		return "", reject("Номер телефону занадто короткий.")
	}
	return full, nil
}

// Integer accepts a number or free text and keeps the first run of digits ("до 5 числа" -> "5").
// Text without digits, such as "в день підписання акту", is a valid term and is kept as trimmed text.
func Integer(raw any) (string, error) {
	s, err := Text(raw)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", reject("Вкажіть число або строк.")
	}
	d := digitsRe.FindString(s)
	if d == "" {
		return s, nil
	}
	if t := strings.TrimLeft(d, "0"); t != "" {
		return t, nil
	}
	return "0", nil
}

func plural(n int, one, few, many string) string {
	switch {
	case n%10 == 1 && n%100 != 11:
		return one
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 10 || n%100 >= 20):
		return few
	default:
		return many
	}
}
