package providers

import (
	"context"
	"errors"
	"fmt"
	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable wraps every failed clipboard write.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

type ClipboardProviderInterface interface {
	WriteText(ctx context.Context, text string) error
}

type ClipboardProvider struct {
	write func(string) error
}

func (c *ClipboardProvider) WriteText(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrClipboardUnavailable
	}

	done := make(chan error, 1)
	go func() { done <- c.write(text) }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrClipboardUnavailable, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrClipboardUnavailable, err)
		}
		return nil
	}
}

func NewClipboardProvider() ClipboardProviderInterface {
	return &ClipboardProvider{write: clipboard.WriteAll}
}
