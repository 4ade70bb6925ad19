package google_tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/shiftclaim/internal/google"
	"github.com/teemow/shiftclaim/internal/logging"
	"github.com/teemow/shiftclaim/internal/server"
	"github.com/teemow/shiftclaim/internal/tools/common"
)

// codeExchanger is implemented by token providers that can complete the
// OAuth flow and persist the result.
type codeExchanger interface {
	ExchangeAndSave(ctx context.Context, account, authCode string) error
}

// RegisterGoogleTools registers the Google OAuth tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google Calendar access for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", true, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google Calendar authentication for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)

	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", false, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	return nil
}

func handleGetAuthURL(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments())

	if sc.TokenProvider().HasTokenForAccount(account) {
		return mcp.NewToolResultText(fmt.Sprintf("Account %q is already authorized for Google Calendar.", account)), nil
	}

	result := fmt.Sprintf(`To authorize Google Calendar access for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to your calendar events
4. Copy the "code" parameter from the page you are redirected to

5. Call the google_save_auth_code tool with the code and account name to complete authentication`, account, google.GetAuthURL(account))

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	authCode := common.GetStringArg(args, "authCode")
	if authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	exchanger, ok := sc.TokenProvider().(codeExchanger)
	if !ok {
		return mcp.NewToolResultError("the configured token provider cannot store new tokens"), nil
	}

	logger := logging.WithOperation(sc.Logger(), "save_auth_code")
	logger.Debug("exchanging authorization code",
		logging.Account(account),
		slog.String("code", logging.SanitizeToken(authCode)))

	if err := exchanger.ExchangeAndSave(ctx, account, authCode); err != nil {
		logger.Warn("authorization code exchange failed", logging.Account(account), logging.Err(err))
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	logger.Info("calendar token saved", logging.Account(account))
	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. Google Calendar token saved.", account)), nil
}
