package strava

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Endpoint is Strava's OAuth2 endpoint. Strava wants client credentials in
// the form body.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.strava.com/oauth/authorize",
	TokenURL:  "https://www.strava.com/api/v3/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Scope grants read access to private activities. Strava separates scopes
// with commas, so it is passed as a single value.
const Scope = "read_all,activity:read_all"

// OAuthConfig builds the OAuth2 config for the Strava application.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{Scope},
		Endpoint:     Endpoint,
		RedirectURL:  redirectURL,
	}
}

// RunBrowserAuth performs the OAuth2 browser flow: it listens for the
// callback on port, opens the consent page and exchanges the returned code.
// Port 0 picks a free port, which must then be allowed by the Strava app's
// callback domain.
func RunBrowserAuth(ctx context.Context, clientID, clientSecret string, port int) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("starting local server: %w", err)
	}
	port = listener.Addr().(*net.TCPAddr).Port
	conf := OAuthConfig(clientID, clientSecret, fmt.Sprintf("http://localhost:%d/callback", port))

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		code := q.Get("code")
		if code == "" {
			msg := q.Get("error")
			if msg == "" {
				msg = "no authorization code received"
			}
			fmt.Fprintf(w, "<html><body><h2>Authorization failed</h2><p>%s</p></body></html>", msg)
			once.Do(func() { errCh <- fmt.Errorf("strava authorization failed: %s", msg) })
			return
		}
		fmt.Fprint(w, "<html><body><p>Authentication complete. This browser window can be closed.</p></body></html>")
		once.Do(func() { codeCh <- code })
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("local server error: %w", err)
		}
	}()
	defer server.Close()

	authURL := conf.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force"))
	fmt.Printf("\nOpening browser for Strava authorization...\n")
	fmt.Printf("If the browser doesn't open, visit this URL:\n%s\n\n", authURL)
	openBrowser(authURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timed out after 5 minutes")
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// TokenSource returns an auto-refreshing token source seeded from the
// stored token. Refreshed tokens are written back to store.
func TokenSource(ctx context.Context, conf *oauth2.Config, store *Store) (oauth2.TokenSource, error) {
	tok, err := store.Token(ctx)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, fmt.Errorf("strava is not authorized; run `blog strava auth`")
	}
	return &persistingSource{
		ctx:    ctx,
		base:   conf.TokenSource(ctx, tok),
		store:  store,
		access: tok.AccessToken,
	}, nil
}

type persistingSource struct {
	ctx   context.Context
	base  oauth2.TokenSource
	store *Store

	mu     sync.Mutex
	access string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.access {
		if err := p.store.SaveToken(p.ctx, tok); err != nil {
			logrus.WithError(err).Warn("strava: persisting refreshed token")
		} else {
			p.access = tok.AccessToken
		}
	}
	return tok, nil
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
