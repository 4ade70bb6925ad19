package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teemow/shiftclaim/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		account string
		code    string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access",
		Long: `Authorize shiftclaim to read and write your Google Calendar.

Without --code, prints the consent URL. Open it, approve access and copy the
code from the redirect. Then run the command again with --code to save the
token for the account.

GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set to the credentials of
a Google OAuth client.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := google.NewFileTokenProvider()
			out := cmd.OutOrStdout()

			if code == "" {
				printAuthURL(out, store.HasTokenForAccount(account) && !force, account)
				return nil
			}

			if err := store.ExchangeAndSave(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			fmt.Fprintf(out, "Calendar access for account %q saved.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Google account name to authorize")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent page")
	cmd.Flags().BoolVar(&force, "force", false, "Print the consent URL even if the account is already authorized")

	return cmd
}

func printAuthURL(out io.Writer, authorized bool, account string) {
	if authorized {
		fmt.Fprintf(out, "Account %q is already authorized. Use --force to authorize again.\n", account)
		return
	}
	fmt.Fprintf(out, "Visit this URL to authorize calendar access for account %q:\n\n%s\n\n", account, google.GetAuthURL(account))
	fmt.Fprintf(out, "Then run: shiftclaim auth --account %s --code <code>\n", account)
}
