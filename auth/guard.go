// Package auth decides who may act on a record.
//
// The guard compares a caller identity with a record's stored authority. The
// caller identity itself comes from a signed request envelope: the hash of
// the signer's compressed secp256k1 public key.
package auth

import (
	"context"
	"fmt"

	"github.com/bitfsorg/libibom-go/identity"
)

// RequireAuthority fails unless caller is the recorded authority.
func RequireAuthority(recorded, caller identity.ID) error {
	if recorded != caller {
		return fmt.Errorf("%w: caller %s, authority %s", ErrUnauthorized, caller.Short(), recorded.Short())
	}
	return nil
}

type callerKey struct{}

// WithCaller attaches an authenticated caller identity to ctx.
func WithCaller(ctx context.Context, caller identity.ID) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the authenticated caller stored by WithCaller.
func CallerFrom(ctx context.Context) (identity.ID, bool) {
	id, ok := ctx.Value(callerKey{}).(identity.ID)
	return id, ok
}
