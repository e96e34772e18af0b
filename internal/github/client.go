// Package github implements the code review port on top of the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	"prman.dev/prman/internal/git"
)

// ClientOptions selects how the client authenticates and which host it talks to
type ClientOptions struct {
	// Hostname is github.com or a GitHub Enterprise host
	Hostname string
	Token    string
	// AppID, InstallationID and PrivateKeyPath select GitHub App installation auth over Token
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
}

// NewClient creates a go-github client from opts
func NewClient(ctx context.Context, opts ClientOptions) (*github.Client, error) {
	var httpClient *http.Client
	if opts.AppID != 0 && opts.InstallationID != 0 && opts.PrivateKeyPath != "" {
		transport, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, opts.AppID, opts.InstallationID, opts.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load GitHub App key: %w", err)
		}
		if isEnterprise(opts.Hostname) {
			transport.BaseURL = fmt.Sprintf("https://%s/api/v3", opts.Hostname)
		}
		httpClient = &http.Client{Transport: transport}
	} else {
		if opts.Token == "" {
			return nil, fmt.Errorf("no GitHub credentials configured")
		}
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}))
	}

	client := github.NewClient(httpClient)
	if isEnterprise(opts.Hostname) {
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", opts.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", opts.Hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", opts.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", opts.Hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}
	return client, nil
}

func isEnterprise(hostname string) bool {
	return hostname != "" && hostname != "github.com"
}

// ResolveToken returns the configured token, else GITHUB_TOKEN, else `gh auth token`
func ResolveToken(ctx context.Context, configured string, runner *git.CommandRunner) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	token, err := runner.RunGH(ctx, "auth", "token")
	if err != nil {
		return "", fmt.Errorf("failed to get GitHub token: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}
	return token, nil
}
