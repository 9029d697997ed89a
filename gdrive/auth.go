// Package gdrive wraps the Google Drive and Docs APIs used to fetch lecture
// audio and to append notes to class documents.
package gdrive

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
)

// Scopes cover moving audio in Drive and editing notes documents.
var Scopes = []string{drive.DriveScope, docs.DocumentsScope}

// ErrNoToken means the consent flow has not been run yet.
var ErrNoToken = errors.New("no saved token; run `lawnotes auth` first")

// Auth loads OAuth client credentials and the saved user token.
type Auth struct {
	CredentialsFile string
	TokenFile       string
	Logger          *zap.Logger
}

func (a *Auth) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// Config reads the OAuth client from the credentials file downloaded from the
// Cloud Console.
func (a *Auth) Config() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.CredentialsFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Errorf("%s not found; download it from Google Cloud Console", a.CredentialsFile)
		}
		return nil, errors.Wrap(err, "read credentials")
	}
	cfg, err := google.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, errors.Wrap(err, "parse credentials")
	}
	return cfg, nil
}

// Client returns an HTTP client authorized with the saved token. Refreshed
// tokens are written back to the token file.
func (a *Auth) Client(ctx context.Context) (*http.Client, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}
	tok, err := LoadToken(a.TokenFile)
	if err != nil {
		return nil, err
	}
	src := &savingTokenSource{
		base:   cfg.TokenSource(ctx, tok),
		path:   a.TokenFile,
		last:   tok.AccessToken,
		logger: a.logger(),
	}
	return oauth2.NewClient(ctx, src), nil
}

// Authorize runs the copy and paste consent flow. The user opens the printed
// URL, approves access and pastes back either the code or the whole redirect
// URL.
func (a *Auth) Authorize(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	state := genState()
	fmt.Fprintf(out, "Open this URL in a browser and approve access:\n\n%s\n\nPaste the code or the redirect URL: ",
		cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		return errors.Wrap(err, "read authorization code")
	}
	code, err := parseCode(strings.TrimSpace(line), state)
	if err != nil {
		return err
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(err, "exchange authorization code")
	}
	if err := SaveToken(a.TokenFile, tok); err != nil {
		return err
	}
	a.logger().Info("token saved", zap.String("path", a.TokenFile))
	return nil
}

// parseCode accepts a bare code or a redirect URL carrying code and state.
func parseCode(input, state string) (string, error) {
	if input == "" {
		return "", errors.New("empty authorization code")
	}
	if !strings.Contains(input, "://") {
		return input, nil
	}
	u, err := url.Parse(input)
	if err != nil {
		return "", errors.Wrap(err, "parse redirect URL")
	}
	q := u.Query()
	if msg := q.Get("error"); msg != "" {
		return "", errors.Errorf("authorization denied: %s", msg)
	}
	if got := q.Get("state"); got != "" && got != state {
		return "", errors.New("state mismatch in redirect URL")
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect URL has no code parameter")
	}
	return code, nil
}

func genState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// LoadToken reads a JSON token file.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, errors.Wrap(err, "read token")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, errors.Wrapf(err, "parse token %s", path)
	}
	return &tok, nil
}

// SaveToken writes tok as JSON, readable only by the owner.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode token")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o600), "write token %s", path)
}

// savingTokenSource persists a token whenever the wrapped source refreshes it.
type savingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, errors.Wrap(err, "refresh token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.logger.Warn("failed to save refreshed token", zap.Error(err))
		} else {
			s.logger.Debug("refreshed token saved", zap.String("path", s.path))
		}
	}
	return tok, nil
}
