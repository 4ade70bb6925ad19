package google_tools

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/shiftclaim/internal/claim"
	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/server"
)

func newServerContext(t *testing.T, p google.TokenProvider) *server.ServerContext {
	t.Helper()
	cfg := claim.Config{
		PollInterval: time.Second,
		Timezone:     "UTC",
		ReplyText:    claim.DefaultReplyText,
		EventTitle:   claim.DefaultEventTitle,
	}
	sc, err := server.NewServerContext(context.Background(), cfg, server.WithTokenProvider(p))
	require.NoError(t, err)
	return sc
}

func request(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleGetAuthURL(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	sc := newServerContext(t, google.NewFileTokenProviderAt(t.TempDir()))

	res, err := handleGetAuthURL(context.Background(), request(map[string]interface{}{"account": "work"}), sc)
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `account "work"`)
	assert.Contains(t, text(t, res), "client_id=client-id")
}

func TestHandleGetAuthURL_AlreadyAuthorized(t *testing.T) {
	sc := newServerContext(t, google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: "x"}})

	res, err := handleGetAuthURL(context.Background(), request(nil), sc)
	require.NoError(t, err)
	assert.Contains(t, text(t, res), "already authorized")
}

func TestHandleSaveAuthCode(t *testing.T) {
	sc := newServerContext(t, google.StaticTokenProvider{})

	res, err := handleSaveAuthCode(context.Background(), request(map[string]interface{}{}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "authCode is required", text(t, res))

	res, err = handleSaveAuthCode(context.Background(), request(map[string]interface{}{"authCode": "abc"}), sc)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "cannot store new tokens")
}
