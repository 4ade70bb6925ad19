// Package google_tools provides MCP tools for Google Calendar authorization.
//
// The OAuth flow:
//  1. Call google_get_auth_url to get the authorization URL
//  2. User visits the URL and authorizes calendar access
//  3. User provides the authorization code
//  4. Call google_save_auth_code with the code to save the token
//
// Once authenticated, the availability and claim tools use the saved token,
// which is refreshed as needed.
package google_tools
