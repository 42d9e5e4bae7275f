// Package validate holds the pure validation rules shared by the HTTP
// boundary and mirrored in the browser client (web/static/app.js). The
// two copies must agree; this package is the source of truth.
package validate

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var (
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrPasswordNoLetter  = errors.New("password must contain at least one letter")
	ErrPasswordNoDigit   = errors.New("password must contain at least one number")
	ErrPasswordNoSpecial = errors.New("password must contain at least one special character (!@#$%^&*...)")

	ErrBirthDateFuture = errors.New("birth date cannot be in the future")
	ErrBirthDateTooOld = errors.New("birth date is not valid")
	ErrChildTooYoung   = errors.New("child must be at least 3 years old")
	ErrChildTooOld     = errors.New("maximum age for children is 18 years")
)

// Password checks strength rules in order: length, letter, digit, special
// character. The first unmet rule is returned.
func Password(pw string) error {
	if len(pw) < 6 {
		return ErrPasswordTooShort
	}
	hasLetter := false
	hasDigit := false
	for _, r := range pw {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	if !hasLetter {
		return ErrPasswordNoLetter
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	if !strings.ContainsAny(pw, specialChars) {
		return ErrPasswordNoSpecial
	}
	return nil
}

// BirthDate checks that birth is a plausible child birth date: not in the
// future, not more than 100 years back, and representing an age between
// 3 and 18 years inclusive. Rules are checked in that order.
func BirthDate(birth time.Time) error {
	return birthDateAt(birth, time.Now())
}

func birthDateAt(birth, now time.Time) error {
	if birth.After(now) {
		return ErrBirthDateFuture
	}
	if birth.Before(now.AddDate(-100, 0, 0)) {
		return ErrBirthDateTooOld
	}
	if birth.After(now.AddDate(-3, 0, 0)) {
		return ErrChildTooYoung
	}
	if birth.Before(now.AddDate(-18, 0, 0)) {
		return ErrChildTooOld
	}
	return nil
}

// Age returns full years elapsed since birth, accounting for whether the
// birthday has been reached this year.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}
