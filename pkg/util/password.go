package util

import (
	"errors"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used for new digests.
var PasswordCost = 14

var (
	ErrWeakPassword = errors.New("Passwords must match, have at least 8 characters at least 1 number and letter")

	passwordRun = regexp.MustCompile(`\w{8,}\d`)
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", errors.New("unable to hash and encrypt password")
	}

	return string(bytes), nil
}

func CheckPassword(digest, givenPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(givenPassword))
}

// ValidatePasswordPair checks that both entries match and that the password
// holds an ASCII letter, a digit and a run of at least eight word characters
// ending in a digit.
func ValidatePasswordPair(password, password2 string) error {
	if password != password2 {
		return ErrWeakPassword
	}

	var letter, digit bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit || !passwordRun.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
