// ABOUTME: OAuth configuration and token storage for Google Drive backups
// ABOUTME: Runs the local callback flow and keeps the token at an XDG path
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// CallbackAddr is where the OAuth redirect lands during Authorize.
const CallbackAddr = "localhost:8085"

// NewOAuthConfig builds the Drive OAuth config from GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET.
func NewOAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET environment variables")
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  "http://" + CallbackAddr + "/oauth/callback",
		Scopes:       []string{drive.DriveFileScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenPath returns the XDG location of the saved Drive token.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "commandcenter", "google-drive-token.json")
}

func SaveToken(token *oauth2.Token) error {
	path := TokenPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}

func LoadToken() (*oauth2.Token, error) {
	f, err := os.Open(TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// Authorize runs the browser consent flow. showURL receives the consent URL;
// the function blocks until the redirect arrives or ctx ends.
func Authorize(ctx context.Context, cfg *oauth2.Config, showURL func(string)) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}

	tokens := make(chan *oauth2.Token, 1)
	errs := make(chan error, 1)
	fail := func(err error) {
		select {
		case errs <- err:
		default:
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			fail(fmt.Errorf("no authorization code received"))
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		token, err := cfg.Exchange(ctx, code)
		if err != nil {
			fail(fmt.Errorf("failed to exchange code: %w", err))
			http.Error(w, "exchange failed", http.StatusBadGateway)
			return
		}
		select {
		case tokens <- token:
		default:
		}
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail(err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	showURL(cfg.AuthCodeURL("state", oauth2.AccessTypeOffline))

	select {
	case token := <-tokens:
		return token, nil
	case err := <-errs:
		return nil, fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
