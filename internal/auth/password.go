package auth

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrCompareTimeout reports that password verification did not finish within
// the deadline. It is a service condition, not an authentication verdict, and
// callers must surface it separately from a mismatch.
var ErrCompareTimeout = errors.New("password verification timed out")

// HashPassword hashes a plaintext password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ComparePasswordWithTimeout runs ComparePassword but stops waiting after the
// given timeout, returning ErrCompareTimeout. The bcrypt computation is not
// cancelled; the goroutine finishes on its own and touches nothing shared.
func ComparePasswordWithTimeout(hashed, plain string, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- ComparePassword(hashed, plain)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrCompareTimeout
	}
}
