package notifications

import "context"

// sendWithContext runs a blocking transport call and gives up when ctx ends.
// The transport call itself is not interrupted; its result is discarded.
func sendWithContext(ctx context.Context, send func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- send() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
