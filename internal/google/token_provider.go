package google

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenProvider supplies OAuth tokens for named Google accounts.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// StaticTokenProvider serves a single fixed token for every account. It is
// used for service tokens passed through the environment and in tests.
type StaticTokenProvider struct {
	Token *oauth2.Token
}

// GetTokenForAccount returns the fixed token.
func (p StaticTokenProvider) GetTokenForAccount(context.Context, string) (*oauth2.Token, error) {
	if p.Token == nil {
		return nil, ErrNoToken
	}
	return p.Token, nil
}

// HasTokenForAccount reports whether a token is set.
func (p StaticTokenProvider) HasTokenForAccount(string) bool {
	return p.Token != nil
}

var (
	_ TokenProvider = (*FileTokenProvider)(nil)
	_ TokenProvider = StaticTokenProvider{}
)
