package x

import (
	"github.com/iov-one/drip"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hard-coding one for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want GetAddresses helper
	GetConditions(drip.Context) []drip.Condition
	// HasAddress checks if any condition matches this address
	HasAddress(drip.Context, drip.Address) bool
}

// MultiAuth chains together many Authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticator
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all Authenticators
func (m MultiAuth) GetConditions(ctx drip.Context) []drip.Condition {
	var res []drip.Condition
	for _, impl := range m.impls {
		for _, c := range impl.GetConditions(ctx) {
			if !hasCondition(res, c) {
				res = append(res, c)
			}
		}
	}
	return res
}

// HasAddress returns true iff any Authenticator support this
func (m MultiAuth) HasAddress(ctx drip.Context, addr drip.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses wraps the GetConditions method of any Authenticator
func GetAddresses(ctx drip.Context, auth Authenticator) []drip.Address {
	perms := auth.GetConditions(ctx)
	addrs := make([]drip.Address, len(perms))
	for i, p := range perms {
		addrs[i] = p.Address()
	}
	return addrs
}

// MainSigner returns the first permission if any, otherwise nil
func MainSigner(ctx drip.Context, auth Authenticator) drip.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllAddresses returns true if all elements in required are
// also in context.
func HasAllAddresses(ctx drip.Context, auth Authenticator, required []drip.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAnyAddress returns true if at least one of the given addresses is
// authenticated.
func HasAnyAddress(ctx drip.Context, auth Authenticator, allowed ...drip.Address) bool {
	for _, a := range allowed {
		if auth.HasAddress(ctx, a) {
			return true
		}
	}
	return false
}

func hasCondition(conds []drip.Condition, c drip.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
