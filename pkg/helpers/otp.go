package helpers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPTTL is how long a verification code stays valid after issuance.
const OTPTTL = 10 * time.Minute

// GenOTPCode generates a secure random 6-digit verification code drawn
// uniformly from [100000, 999999].
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
