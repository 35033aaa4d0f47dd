package smokecheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL  string
	email    string
	password string
	remember bool
	timeout  time.Duration
	ci       bool
}

// NewRootCommand builds the smokecheck CLI. It drives the login path of
// a running console the way a browser would: anonymous guard redirect,
// login, an authenticated API call, logout, and the post-logout 401.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "smokecheck", Short: "Exercise the console login path end to end"}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "console base URL")
	cmd.PersistentFlags().StringVar(&opts.email, "email", "admin@escritorio.com.br", "login email")
	cmd.PersistentFlags().StringVar(&opts.password, "password", "", "login password")
	cmd.PersistentFlags().BoolVar(&opts.remember, "remember", true, "request a durable session")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall run timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the login-path checks against a live console",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			details, err := run(ctx, opts)
			printResult(cmd.OutOrStdout(), opts.ci, details, err)
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func run(ctx context.Context, opts *options) ([]string, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 30 * time.Second,
	}

	var details []string
	step := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		details = append(details, name+": ok")
		return nil
	}

	if err := step("login page renders", func() error {
		return expectStatus(ctx, client, http.MethodGet, opts.baseURL+"/login", nil, http.StatusOK)
	}); err != nil {
		return details, err
	}

	if err := step("anonymous dashboard redirects", func() error {
		resp, err := do(ctx, client, http.MethodGet, opts.baseURL+"/dashboard", nil)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusFound {
			return fmt.Errorf("expected 302, got %d", resp.StatusCode)
		}
		loc, err := url.Parse(resp.Header.Get("Location"))
		if err != nil {
			return err
		}
		if loc.Path != "/login" || loc.Query().Get("from") != "/dashboard" {
			return fmt.Errorf("unexpected redirect %q", resp.Header.Get("Location"))
		}
		return nil
	}); err != nil {
		return details, err
	}

	if opts.password == "" {
		details = append(details, "login skipped: no --password given")
		return details, nil
	}

	if err := step("login succeeds", func() error {
		body, _ := json.Marshal(map[string]any{
			"email":    opts.email,
			"password": opts.password,
			"remember": opts.remember,
		})
		return expectStatus(ctx, client, http.MethodPost, opts.baseURL+"/api/login", body, http.StatusOK)
	}); err != nil {
		return details, err
	}

	if err := step("authenticated profile loads", func() error {
		return expectStatus(ctx, client, http.MethodGet, opts.baseURL+"/api/me", nil, http.StatusOK)
	}); err != nil {
		return details, err
	}

	if err := step("logout clears session", func() error {
		return expectStatus(ctx, client, http.MethodPost, opts.baseURL+"/api/logout", nil, http.StatusOK)
	}); err != nil {
		return details, err
	}

	if err := step("post-logout profile rejected", func() error {
		return expectStatus(ctx, client, http.MethodGet, opts.baseURL+"/api/me", nil, http.StatusUnauthorized)
	}); err != nil {
		return details, err
	}

	return details, nil
}

func do(ctx context.Context, client *http.Client, method, rawURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return nil, err
	}
	return resp, nil
}

func expectStatus(ctx context.Context, client *http.Client, method, rawURL string, body []byte, want int) error {
	resp, err := do(ctx, client, method, rawURL, body)
	if err != nil {
		return err
	}
	if resp.StatusCode != want {
		return fmt.Errorf("expected %d, got %d", want, resp.StatusCode)
	}
	return nil
}
