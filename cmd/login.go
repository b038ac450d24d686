package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/habedi/exactly/auth"
	"github.com/habedi/exactly/client"
	"github.com/habedi/exactly/db"
	"github.com/habedi/exactly/operations"
	"github.com/spf13/cobra"
)

// loginCmd creates a new cobra.Command for authenticating against the provider.
func loginCmd() *cobra.Command {
	var useBrowser bool
	var headless bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the accounting API",
		Long: "Authenticate using the OAuth2 authorization-code flow. " +
			"Visit the printed URL, sign in, and paste the authorization code back, " +
			"or pass --browser to let exactly watch the browser for the redirect.",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := client.ConfigFromEnv()
			if cfg.ClientID == "" {
				cfg.ClientID = promptForInput("Client ID: ")
			}
			if cfg.ClientSecret == "" {
				cfg.ClientSecret = promptForSecret("Client secret: ")
			}
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				cmd.PrintErrln("Error: Client ID and client secret cannot be empty.")
				return
			}

			api := client.New(cfg)
			store := db.NewFileTokenStore(db.DefaultTokenPath())
			session := operations.NewSession(api, auth.NewService(store, api))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var code string
			if useBrowser {
				cmd.Println("Complete the sign-in in the browser window...")
				captured, err := client.CaptureAuthCode(ctx, session.GetAuthURL(), cfg.RedirectURI, headless)
				if err != nil {
					cmd.PrintErrln("Error: Failed to capture the authorization code:", err)
					return
				}
				code = captured
			} else {
				cmd.Println("Open this URL in your browser and sign in:")
				cmd.Println()
				cmd.Println("  " + session.GetAuthURL())
				cmd.Println()
				code = promptForInput("Paste the authorization code: ")
			}

			if code == "" {
				cmd.PrintErrln("Error: Authorization code cannot be empty.")
				return
			}

			if err := session.AuthenticateWithCode(ctx, code); err != nil {
				reportError(cmd.PrintErrln, err)
				return
			}
			cmd.Println("Login was successful.")
		},
	}

	cmd.Flags().BoolVarP(&useBrowser, "browser", "b", false, "Capture the authorization code from a browser window")
	cmd.Flags().BoolVarP(&headless, "headless", "n", false, "Run the browser in headless mode (only useful for testing)")

	return cmd
}

// logoutCmd creates a new cobra.Command for discarding the stored credential.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored credential",
		Run: func(cmd *cobra.Command, args []string) {
			session := newSession()
			if err := session.Logout(); err != nil {
				reportError(cmd.PrintErrln, err)
				return
			}
			cmd.Println("Logged out.")
		},
	}
}
