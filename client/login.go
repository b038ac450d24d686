package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// loginTimeout bounds how long the user gets to complete the provider
// sign-in before the browser window is torn down.
const loginTimeout = 4 * time.Minute

// CaptureAuthCode opens the provider's authorization page in a browser,
// lets the user sign in, and watches the address bar until the provider
// redirects back to redirectURI with an authorization code attached.
// It is the assisted alternative to pasting the code by hand.
func CaptureAuthCode(parent context.Context, authURL, redirectURI string, headless bool) (string, error) {
	ctx, cancel := createChromeContext(parent, headless)
	if ctx == nil {
		return "", errors.New("no Chrome or Chromium binary found in PATH")
	}
	defer cancel()

	finalURL, err := waitForRedirect(ctx, authURL, redirectURI)
	if err != nil {
		return "", fmt.Errorf("failed during browser login: %w", err)
	}
	return ExtractAuthCode(finalURL)
}

// createChromeContext creates a new ChromeDP context.
func createChromeContext(parent context.Context, headless bool) (context.Context, context.CancelFunc) {
	var execPath string
	if path, err := exec.LookPath("google-chrome"); err == nil {
		execPath = path
	} else if path, err := exec.LookPath("chromium"); err == nil {
		execPath = path
	} else if path, err := exec.LookPath("chrome"); err == nil {
		execPath = path
	} else {
		log.Error().Msg("Neither Google Chrome nor Chromium is available in the path. Please install one of them.")
		return nil, nil
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
	)
	if !headless {
		opts = append(opts, chromedp.Flag("headless", false), chromedp.Flag("disable-gpu", false),
			chromedp.Flag("start-maximized", true))
	}

	allocatorCtx, cancelAllocator := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelContext := chromedp.NewContext(allocatorCtx, chromedp.WithLogf(log.Info().Msgf))

	return ctx, func() {
		cancelContext()
		cancelAllocator()
	}
}

// waitForRedirect navigates to the authorization page and polls the current
// location until it lands on the redirect URI carrying a code parameter.
func waitForRedirect(ctx context.Context, authURL, redirectURI string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	var finalURL string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(authURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for {
				var currentURL string
				if err := chromedp.Location(&currentURL).Do(ctx); err != nil {
					return err
				}
				if strings.HasPrefix(currentURL, redirectURI) && strings.Contains(currentURL, "code=") {
					finalURL = currentURL
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(500 * time.Millisecond):
				}
			}
		}),
	)
	return finalURL, err
}

// ExtractAuthCode extracts the authorization code from a redirect URL.
func ExtractAuthCode(redirectURL string) (string, error) {
	parsedURL, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL: %w", err)
	}

	code := parsedURL.Query().Get("code")
	if code == "" {
		return "", errors.New("authorization code not found in URL")
	}
	return code, nil
}
