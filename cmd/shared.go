package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/habedi/exactly/auth"
	"github.com/habedi/exactly/client"
	"github.com/habedi/exactly/db"
	"github.com/habedi/exactly/operations"
	"github.com/habedi/exactly/pkg/clierr"
	"golang.org/x/term"
)

// newSession wires the default stack: env-driven API config, the JSON file
// token store, and the auth service sharing one API client.
func newSession() *operations.Session {
	api := client.New(client.ConfigFromEnv())
	store := db.NewFileTokenStore(db.DefaultTokenPath())
	authService := auth.NewService(store, api)
	return operations.NewSession(api, authService)
}

// reportError prints a user-facing message for any error from the engine.
func reportError(println func(i ...interface{}), err error) {
	if cliErr := clierr.FromError(err); cliErr != nil {
		println("Error: " + cliErr.Message)
	}
}

// promptForInput prompts the user for input and returns the trimmed string.
func promptForInput(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println("Error: Failed to read input.")
		os.Exit(1)
	}
	return strings.TrimSpace(input)
}

// promptForSecret prompts the user for a secret without echoing it.
func promptForSecret(prompt string) string {
	fmt.Print(prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println("Error: Failed to read secret.")
		os.Exit(1)
	}
	fmt.Println() // Print a newline for better formatting
	return strings.TrimSpace(string(secret))
}
