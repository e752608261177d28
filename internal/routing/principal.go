package routing

import "context"

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p as the acting principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the acting principal, or SystemPrincipal when
// none was attached.
func PrincipalFromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok && p.Email != "" {
		if p.Role == "" {
			p.Role = SystemPrincipal.Role
		}
		return p
	}
	return SystemPrincipal
}
