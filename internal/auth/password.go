package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

var (
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("password does not match")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
	ErrPasswordTooLong = bcrypt.ErrPasswordTooLong
)

// MaxPasswordLength is the longest password, in bytes, HashPassword accepts.
const MaxPasswordLength = 72

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword checks password against a stored hash. Besides bcrypt it
// understands the werkzeug formats written by the previous deployment:
// "pbkdf2:sha256:<iterations>$<salt>$<hex>" and "scrypt:<n>:<r>:<p>$<salt>$<hex>".
func VerifyPassword(encoded, password string) error {
	if strings.HasPrefix(encoded, "pbkdf2:") || strings.HasPrefix(encoded, "scrypt:") {
		return verifyWerkzeug(encoded, password)
	}
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

func verifyWerkzeug(encoded, password string) error {
	method, salt, want, ok := splitWerkzeug(encoded)
	if !ok {
		return errors.New("invalid hash format")
	}
	expected, err := hex.DecodeString(want)
	if err != nil {
		return fmt.Errorf("invalid hash format: %w", err)
	}

	params := strings.Split(method, ":")
	var computed []byte
	switch params[0] {
	case "pbkdf2":
		if len(params) != 3 {
			return errors.New("invalid pbkdf2 parameters")
		}
		var h func() hash.Hash
		switch params[1] {
		case "sha256":
			h = sha256.New
		case "sha512":
			h = sha512.New
		default:
			return fmt.Errorf("unsupported pbkdf2 digest %q", params[1])
		}
		iterations, err := strconv.Atoi(params[2])
		if err != nil || iterations <= 0 {
			return errors.New("invalid pbkdf2 iterations")
		}
		computed = pbkdf2.Key([]byte(password), []byte(salt), iterations, len(expected), h)
	case "scrypt":
		if len(params) != 4 {
			return errors.New("invalid scrypt parameters")
		}
		n, errN := strconv.Atoi(params[1])
		r, errR := strconv.Atoi(params[2])
		p, errP := strconv.Atoi(params[3])
		if errN != nil || errR != nil || errP != nil {
			return errors.New("invalid scrypt parameters")
		}
		computed, err = scrypt.Key([]byte(password), []byte(salt), n, r, p, len(expected))
		if err != nil {
			return fmt.Errorf("scrypt: %w", err)
		}
	default:
		return fmt.Errorf("unsupported hash method %q", params[0])
	}

	if !hmac.Equal(computed, expected) {
		return ErrPasswordMismatch
	}
	return nil
}

func splitWerkzeug(encoded string) (method, salt, hexHash string, ok bool) {
	parts := strings.SplitN(encoded, "$", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
