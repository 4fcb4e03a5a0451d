// Package entitlement answers the one question the scheduling core asks
// about purchases: is the current user premium.
package entitlement

// Oracle reports whether the current user has premium access.
type Oracle interface {
	IsPremium() bool
}

// Static is a fixed answer, typically taken from configuration.
type Static bool

func (s Static) IsPremium() bool { return bool(s) }
