package git

import (
	"context"
	"fmt"
)

// GetRemoteURL returns the fetch URL configured for remote
func (r *CommandRunner) GetRemoteURL(ctx context.Context, remote string) (string, error) {
	url, err := r.Run(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get URL of remote %s: %w", remote, err)
	}
	return url, nil
}
