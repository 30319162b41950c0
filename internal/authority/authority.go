// Package authority implements C4: the gate resolving an optional session
// token to a claim set and checking a link commit against it. Token
// validation itself (HMAC/signature/lookup against the identity store) is
// delegated to the external Identity/Agent Session collaborator per
// spec.md §1 — this package only consumes the resolved claim set.
package authority

import (
	"fmt"
	"math/big"
	"time"

	"github.com/certen/ledger-core/internal/intentclass"
	"github.com/certen/ledger-core/internal/ledger"
	"github.com/certen/ledger-core/internal/ledgercore"
)

// Claims is the resolved Agent Session/ASC the external identity
// collaborator hands back for a presented bearer token.
type Claims struct {
	SID            string
	Containers     map[string]struct{}
	AllowedClasses map[intentclass.Class]struct{}
	DeltaBounds    *big.Int // nil means unbounded
	Expiry         time.Time
}

// Resolver resolves an opaque bearer token to Claims. The concrete
// implementation (HMAC verification, database lookup, or a call to a
// remote identity service) is the external collaborator's responsibility;
// this interface is the only surface the gate depends on.
type Resolver interface {
	Resolve(token string) (Claims, error)
}

// ErrTokenNotFound is returned by a Resolver when the token does not
// correspond to any known session.
var ErrTokenNotFound = fmt.Errorf("authority: token not found")

// Gate checks a link commit against an optional bearer token.
//
// requireSession is the single deployment-time boolean of spec.md §4.4/§9:
// when true, a missing token is rejected (production); when false, a
// missing token is accepted unauthenticated (development). No other
// branch in this package or its callers may condition on
// production-vs-development.
func Gate(resolver Resolver, token string, requireSession bool, link *ledger.LinkCommit, now time.Time) error {
	if token == "" {
		if requireSession {
			return fmt.Errorf("authority: session required: %w", ledgercore.ErrUnauthorizedEvolution)
		}
		return nil
	}

	claims, err := resolver.Resolve(token)
	if err != nil {
		return fmt.Errorf("authority: resolve token: %w", ledgercore.ErrUnauthorizedEvolution)
	}

	if !claims.Expiry.IsZero() && now.After(claims.Expiry) {
		return fmt.Errorf("authority: session expired: %w", ledgercore.ErrUnauthorizedEvolution)
	}

	if _, ok := claims.Containers[link.ContainerID]; !ok {
		return fmt.Errorf("authority: container %q not in session scope: %w", link.ContainerID, ledgercore.ErrUnauthorizedEvolution)
	}

	class, err := intentclass.Parse(link.IntentClass)
	if err != nil {
		return fmt.Errorf("authority: %v: %w", err, ledgercore.ErrUnauthorizedEvolution)
	}
	if _, ok := claims.AllowedClasses[class]; !ok {
		return fmt.Errorf("authority: intent class %q not allowed: %w", link.IntentClass, ledgercore.ErrUnauthorizedEvolution)
	}

	if claims.DeltaBounds != nil && link.PhysicsDelta != nil {
		abs := new(big.Int).Abs(link.PhysicsDelta)
		if abs.Cmp(claims.DeltaBounds) > 0 {
			return fmt.Errorf("authority: physics_delta exceeds session bound: %w", ledgercore.ErrUnauthorizedEvolution)
		}
	}

	return nil
}
