package git

import (
	"context"
	"fmt"
)

// CheckoutBranch checks out an existing branch
func (r *CommandRunner) CheckoutBranch(ctx context.Context, branchName string) error {
	_, err := r.Run(ctx, "checkout", branchName)
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}
	return nil
}
