// Package oauth implements the redirect-based sign-in handoff to the
// identity provider: PKCE authorize URL, a loopback callback listener and the
// code-for-session exchange.
package oauth

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CallbackPath is where the provider redirects back to.
const CallbackPath = "/auth/callback"

// Config configures the identity provider.
type Config struct {
	// ProviderURL is the auth server root, e.g. https://xyz.supabase.co.
	ProviderURL string
	// AnonKey is sent as the apikey header.
	AnonKey string
	// Provider is the upstream identity provider, e.g. "google".
	Provider string
	// CallbackAddr is the loopback host:port to listen on. Port 0 picks one.
	CallbackAddr string

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Error describes a failed sign-in step.
type Error struct {
	Stage   string // "authorize", "callback" or "exchange"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("oauth %s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("oauth %s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Identity is the signed-in user as reported by the provider.
type Identity struct {
	UserID      string
	Name        string
	Email       string
	AccessToken string
}

// Client runs sign-in flows against one provider.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.ProviderURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("oauth provider url %q is not an absolute URL", cfg.ProviderURL)
	}
	cfg.ProviderURL = strings.TrimRight(cfg.ProviderURL, "/")
	if cfg.Provider == "" {
		cfg.Provider = "google"
	}
	if cfg.CallbackAddr == "" {
		cfg.CallbackAddr = "127.0.0.1:0"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, http: hc, logger: logger.Named("oauth")}, nil
}

// Flow is one sign-in attempt. It owns the callback listener until Close.
type Flow struct {
	AuthURL     string
	RedirectURL string

	verifier string
	state    string
	server   *http.Server
	codes    chan string
	errs     chan error
}

// Begin generates the PKCE pair, starts the callback listener and builds
// the authorize URL the user must open.
func (c *Client) Begin(ctx context.Context) (*Flow, error) {
	verifier, err := randomString(32)
	if err != nil {
		return nil, &Error{Stage: "authorize", Message: "generate verifier", Err: err}
	}
	state, err := randomString(16)
	if err != nil {
		return nil, &Error{Stage: "authorize", Message: "generate state", Err: err}
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", c.cfg.CallbackAddr)
	if err != nil {
		return nil, &Error{Stage: "callback", Message: "listen on " + c.cfg.CallbackAddr, Err: err}
	}

	f := &Flow{
		verifier: verifier,
		state:    state,
		codes:    make(chan string, 1),
		errs:     make(chan error, 1),
	}
	f.RedirectURL = (&url.URL{
		Scheme:   "http",
		Host:     ln.Addr().String(),
		Path:     CallbackPath,
		RawQuery: url.Values{"state": {state}}.Encode(),
	}).String()

	q := url.Values{}
	q.Set("provider", c.cfg.Provider)
	q.Set("redirect_to", f.RedirectURL)
	q.Set("code_challenge", challenge(verifier))
	q.Set("code_challenge_method", "s256")
	f.AuthURL = c.cfg.ProviderURL + "/auth/v1/authorize?" + q.Encode()

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, f.handleCallback)
	f.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := f.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			f.fail(&Error{Stage: "callback", Message: "serve", Err: err})
		}
	}()

	c.logger.Debug("oauth flow started", zap.String("redirect", f.RedirectURL))
	return f, nil
}

const donePage = `<html><head><title>Signed in</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>You're signed in</h1><p>Return to the terminal to continue.</p>
<script>window.close();</script></body></html>`

func (f *Flow) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if q.Get("state") != f.state {
		http.Error(w, "Invalid state", http.StatusBadRequest)
		f.fail(&Error{Stage: "callback", Message: "state mismatch"})
		return
	}
	if e := q.Get("error"); e != "" {
		msg := q.Get("error_description")
		if msg == "" {
			msg = e
		}
		http.Error(w, "Sign-in failed: "+msg, http.StatusBadRequest)
		f.fail(&Error{Stage: "callback", Message: msg})
		return
	}
	code := q.Get("code")
	if code == "" {
		http.Error(w, "No code received", http.StatusBadRequest)
		f.fail(&Error{Stage: "callback", Message: "no code received"})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, donePage)

	select {
	case f.codes <- code:
	default:
	}
}

func (f *Flow) fail(err error) {
	select {
	case f.errs <- err:
	default:
	}
}

// Wait blocks until the callback delivers a code, fails, or ctx ends.
func (f *Flow) Wait(ctx context.Context) (string, error) {
	select {
	case code := <-f.codes:
		return code, nil
	case err := <-f.errs:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the callback listener. It is safe to call more than once.
func (f *Flow) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.server.Shutdown(ctx)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			FullName string `json:"full_name"`
			Name     string `json:"name"`
		} `json:"user_metadata"`
	} `json:"user"`
}

// Exchange trades the callback code for a session.
func (c *Client) Exchange(ctx context.Context, f *Flow, code string) (*Identity, error) {
	body, err := json.Marshal(map[string]string{
		"auth_code":     code,
		"code_verifier": f.verifier,
	})
	if err != nil {
		return nil, &Error{Stage: "exchange", Message: "encode request", Err: err}
	}

	endpoint := c.cfg.ProviderURL + "/auth/v1/token?grant_type=pkce"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Stage: "exchange", Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.cfg.AnonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Stage: "exchange", Message: "could not reach the identity provider", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &Error{Stage: "exchange", Message: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Stage: "exchange", Message: providerMessage(resp.StatusCode, raw)}
	}

	var tok tokenResponse
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, &Error{Stage: "exchange", Message: "decode session", Err: err}
	}
	if tok.AccessToken == "" || tok.User.ID == "" {
		return nil, &Error{Stage: "exchange", Message: "session is missing user or token"}
	}

	id := &Identity{
		UserID:      tok.User.ID,
		Email:       tok.User.Email,
		AccessToken: tok.AccessToken,
		Name:        tok.User.UserMetadata.FullName,
	}
	if id.Name == "" {
		id.Name = tok.User.UserMetadata.Name
	}
	if id.Name == "" {
		id.Name = id.Email
	}

	c.logger.Info("oauth sign-in complete", zap.String("user_id", id.UserID))
	return id, nil
}

// SignIn runs a whole flow: open the browser, wait for the callback and
// exchange the code.
func (c *Client) SignIn(ctx context.Context, open func(string) error) (*Identity, error) {
	f, err := c.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if open != nil {
		if err := open(f.AuthURL); err != nil {
			c.logger.Warn("open browser", zap.Error(err), zap.String("url", f.AuthURL))
		}
	}

	code, err := f.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return c.Exchange(ctx, f, code)
}

func providerMessage(status int, raw []byte) string {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	if json.Unmarshal(raw, &body) == nil {
		for _, m := range []string{body.ErrorDescription, body.Msg, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// OpenBrowser opens url with the platform's default handler.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
