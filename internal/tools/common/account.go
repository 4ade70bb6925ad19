package common

import (
	"fmt"
	"time"

	"github.com/teemow/shiftclaim/internal/google"
)

// GetAccountFromArgs returns the "account" argument, or the default account.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return google.DefaultAccount
}

// GetStringArg returns a string argument or "".
func GetStringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return v
}

// GetTimeArg parses an optional RFC 3339 argument. A missing argument yields
// fallback.
func GetTimeArg(args map[string]interface{}, name string, fallback time.Time) (time.Time, error) {
	raw := GetStringArg(args, name)
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be an RFC 3339 timestamp: %w", name, err)
	}
	return t, nil
}
