package domain

import "time"

// User is the domain model for account holders.
//
// VerifyOTP and VerifyOTPExpireAt are either both active (non-empty code,
// future expiry) or both cleared (empty string, zero). VerifyOTPExpireAt is a
// millisecond epoch timestamp.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	IsAccountVerified bool
	VerifyOTP         string
	VerifyOTPExpireAt int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClearVerification resets the pending OTP state after a successful check.
func (u *User) ClearVerification() {
	u.IsAccountVerified = true
	u.VerifyOTP = ""
	u.VerifyOTPExpireAt = 0
}

// SetVerification arms a pending OTP on the account.
func (u *User) SetVerification(code string, expireAt time.Time) {
	u.VerifyOTP = code
	u.VerifyOTPExpireAt = expireAt.UnixMilli()
}
