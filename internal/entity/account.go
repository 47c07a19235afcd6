package entity

import "encoding/hex"

// AccountAddressLength is the byte length of an on-chain account address.
const AccountAddressLength = 32

// AccountAddress is an account as it appears inside decoded contract state.
// The wallet provider's account identity is a separate, opaque string.
type AccountAddress [AccountAddressLength]byte

func (that AccountAddress) String() string {
	return hex.EncodeToString(that[:])
}

// Short - an abbreviated form for display next to the board.
func (that AccountAddress) Short() string {
	s := that.String()
	return s[:8] + ".." + s[len(s)-4:]
}
