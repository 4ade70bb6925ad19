package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is the account name used when none is given.
const DefaultAccount = "default"

// ErrNoToken is returned when no token has been saved for an account.
var ErrNoToken = errors.New("no Google OAuth token found")

var accountNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateAccountName(account string) error {
	if !accountNamePattern.MatchString(account) {
		return fmt.Errorf("invalid account name %q: use letters, digits, '-' or '_'", account)
	}
	return nil
}

// OAuthConfig returns the OAuth2 configuration for the Calendar API. The
// client credentials come from GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET;
// GOOGLE_REDIRECT_URL defaults to http://localhost.
func OAuthConfig() *oauth2.Config {
	redirect := os.Getenv("GOOGLE_REDIRECT_URL")
	if redirect == "" {
		redirect = "http://localhost"
	}
	return &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       DefaultOAuthScopes,
	}
}

// GetAuthURL returns the consent page URL for the user to visit.
func GetAuthURL(account string) string {
	return OAuthConfig().AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// FileTokenProvider stores tokens as JSON files in a directory.
type FileTokenProvider struct {
	dir string
}

// NewFileTokenProvider returns a provider using the default cache directory.
func NewFileTokenProvider() *FileTokenProvider {
	return NewFileTokenProviderAt(filepath.Join(userCacheDir(), "shiftclaim"))
}

// NewFileTokenProviderAt returns a provider storing tokens in dir.
func NewFileTokenProviderAt(dir string) *FileTokenProvider {
	return &FileTokenProvider{dir: dir}
}

func (p *FileTokenProvider) path(account string) string {
	return filepath.Join(p.dir, "google-"+account+".token")
}

// GetTokenForAccount reads the saved token for account.
func (p *FileTokenProvider) GetTokenForAccount(_ context.Context, account string) (*oauth2.Token, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p.path(account))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w for account %s; run 'shiftclaim auth'", ErrNoToken, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file for account %s: %w", account, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("%w for account %s: token file is empty", ErrNoToken, account)
	}
	return &tok, nil
}

// HasTokenForAccount reports whether a token file exists for account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(p.path(account))
	return err == nil
}

// SaveTokenForAccount writes tok for account, readable only by the owner.
func (p *FileTokenProvider) SaveTokenForAccount(account string, tok *oauth2.Token) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.MkdirAll(p.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(p.path(account), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// ExchangeAndSave trades an authorization code for a token and stores it.
func (p *FileTokenProvider) ExchangeAndSave(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	tok, err := OAuthConfig().Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return p.SaveTokenForAccount(account, tok)
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		return os.TempDir()
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
