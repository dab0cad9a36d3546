// Package channels holds the messaging platform adapters that feed the
// transcript store and serve digest commands.
package channels

import "context"

// Channel is one messaging platform adapter.
type Channel interface {
	// Name identifies the platform ("telegram").
	Name() string

	// Start connects and serves until ctx is canceled or a fatal error
	// occurs.
	Start(ctx context.Context) error
}
