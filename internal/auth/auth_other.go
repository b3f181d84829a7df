//go:build !darwin

package auth

import "context"

type openAuthenticator struct{}

func systemAuthenticator() Authenticator {
	return openAuthenticator{}
}

func (openAuthenticator) Authenticate(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}
