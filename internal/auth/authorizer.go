package auth

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	// DefaultAuthTimeout bounds how long the user has to finish authorization.
	DefaultAuthTimeout = 2 * time.Minute

	shutdownTimeout = 5 * time.Second
)

var (
	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")
	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
	// ErrNoRefreshToken is returned when the exchange did not grant a refresh token.
	ErrNoRefreshToken = errors.New("authorization did not return a refresh token")
	// ErrMissingCode is returned when the redirect carries neither a code nor an error.
	ErrMissingCode = errors.New("redirect URL has no authorization code")
)

// TokenStorer receives the credential obtained by an authorization.
type TokenStorer interface {
	Store(ctx context.Context, record *TokenRecord) error
}

// Authorizer runs the interactive authorization-code flow.
type Authorizer struct {
	provider    OAuthProvider
	storer      TokenStorer
	redirectURL string
	timeout     time.Duration
	logger      *zap.Logger

	openBrowser func(url string) error
	in          io.Reader
	out         io.Writer

	// One reader goroutine owns in for the Authorizer's lifetime, so a line
	// typed after a timed-out attempt reaches the next one.
	readOnce sync.Once
	lines    chan callbackResult
	readErr  error
}

// AuthorizerOption customizes an Authorizer.
type AuthorizerOption func(*Authorizer)

// WithAuthTimeout bounds how long Authorize waits for the user.
func WithAuthTimeout(timeout time.Duration) AuthorizerOption {
	return func(a *Authorizer) {
		a.timeout = timeout
	}
}

// WithBrowserOpener replaces the function used to open the consent page.
func WithBrowserOpener(open func(url string) error) AuthorizerOption {
	return func(a *Authorizer) {
		a.openBrowser = open
	}
}

// WithPrompt sets where instructions are printed and the pasted redirect URL is read.
func WithPrompt(in io.Reader, out io.Writer) AuthorizerOption {
	return func(a *Authorizer) {
		a.in = in
		a.out = out
	}
}

// NewAuthorizer creates an Authorizer that stores the resulting credential in storer.
func NewAuthorizer(
	provider OAuthProvider,
	storer TokenStorer,
	redirectURL string,
	logger *zap.Logger,
	opts ...AuthorizerOption,
) *Authorizer {
	a := &Authorizer{
		provider:    provider,
		storer:      storer,
		redirectURL: redirectURL,
		timeout:     DefaultAuthTimeout,
		logger:      logger,
		openBrowser: OpenBrowser,
		in:          strings.NewReader(""),
		out:         io.Discard,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize sends the user to the consent page and stores the exchanged credential.
// Loopback redirect URLs are served by a temporary callback server; any other
// redirect URL is pasted back by the user.
func (a *Authorizer) Authorize(ctx context.Context) error {
	redirect, err := url.Parse(a.redirectURL)
	if err != nil {
		return fmt.Errorf("parsing redirect URL: %w", err)
	}

	state, err := generateState()
	if err != nil {
		return fmt.Errorf("generating state: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	authURL := a.provider.AuthURL(state)

	var code string
	if isLoopback(redirect) {
		code, err = a.awaitCallback(ctx, redirect, state, authURL)
	} else {
		code, err = a.awaitPastedRedirect(ctx, state, authURL)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrAuthTimeout
		}
		return err
	}

	token, err := a.provider.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging code for token: %w", err)
	}
	if token.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	if err := a.storer.Store(ctx, RecordFromToken(token)); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	a.logger.Info("Authorization complete", zap.Time("expiresAt", token.Expiry))
	return nil
}

func (a *Authorizer) showAuthURL(authURL string) {
	fmt.Fprintln(a.out, "\nTo authenticate, open this URL in your browser:")
	fmt.Fprintln(a.out, authURL)

	if err := a.openBrowser(authURL); err != nil {
		a.logger.Warn("Failed to open browser", zap.Error(err))
	}
}

type callbackResult struct {
	code string
	err  error
}

// awaitCallback serves the redirect path on the loopback address until the
// browser returns with a code.
func (a *Authorizer) awaitCallback(ctx context.Context, redirect *url.URL, state, authURL string) (string, error) {
	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return "", fmt.Errorf("starting callback server on %s: %w", redirect.Host, err)
	}

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           a.callbackRouter(redirect.Path, state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case results <- callbackResult{err: fmt.Errorf("callback server error: %w", err)}:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	a.logger.Info("Waiting for authorization callback", zap.String("address", listener.Addr().String()))
	a.showAuthURL(authURL)
	fmt.Fprintln(a.out, "\nWaiting for authentication...")

	select {
	case result := <-results:
		return result.code, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Authorizer) callbackRouter(path, state string, results chan<- callbackResult) http.Handler {
	if path == "" {
		path = "/"
	}

	r := chi.NewRouter()
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		code, err := codeFromQuery(req.URL.Query(), state)
		if err != nil {
			http.Error(w, "Authentication failed: "+err.Error(), http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, callbackSuccessPage)
		}

		select {
		case results <- callbackResult{code: code, err: err}:
		default:
		}
	})
	return r
}

// awaitPastedRedirect asks the user to paste the URL the browser was redirected to.
func (a *Authorizer) awaitPastedRedirect(ctx context.Context, state, authURL string) (string, error) {
	lines := a.pastedLines()

	// Drop a line pasted for an earlier attempt.
	select {
	case <-lines:
	default:
	}

	a.showAuthURL(authURL)
	fmt.Fprintln(a.out, "\nAfter approving, paste the full URL you were redirected to:")

	select {
	case line, ok := <-lines:
		if !ok {
			return "", a.readErr
		}
		return CodeFromRedirect(line.code, state)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// pastedLines starts the prompt reader on first use. The channel is closed
// once in fails, with the failure in readErr.
func (a *Authorizer) pastedLines() <-chan callbackResult {
	a.readOnce.Do(func() {
		a.lines = make(chan callbackResult)
		go a.readLines()
	})
	return a.lines
}

func (a *Authorizer) readLines() {
	defer close(a.lines)

	reader := bufio.NewReader(a.in)
	for {
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			a.lines <- callbackResult{code: line}
		}
		if err != nil {
			a.readErr = fmt.Errorf("reading redirect URL: %w", err)
			return
		}
	}
}

// CodeFromRedirect extracts the authorization code from a redirect URL and
// checks its state.
func CodeFromRedirect(rawURL, state string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parsing redirect URL: %w", err)
	}
	return codeFromQuery(u.Query(), state)
}

func codeFromQuery(query url.Values, state string) (string, error) {
	if query.Get("state") != state {
		return "", ErrStateMismatch
	}
	if errMsg := query.Get("error"); errMsg != "" {
		return "", fmt.Errorf("spotify auth error: %s", errMsg)
	}
	code := query.Get("code")
	if code == "" {
		return "", ErrMissingCode
	}
	return code, nil
}

func isLoopback(u *url.URL) bool {
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// generateState creates a random state string for CSRF protection.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

const callbackSuccessPage = `<!DOCTYPE html>
<html>
<head><title>Spotify Quick Actions</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 50px;">
<h1>Signed in to Spotify</h1>
<p>You can close this window and return to your shortcuts.</p>
</body>
</html>`
