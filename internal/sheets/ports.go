// Package sheets declares the outbound ports for the optional spreadsheet
// mirror. The worker depends on these, not on the Google implementation.
package sheets

import (
	"context"

	"github.com/Jvagarinho/Domestik/internal/core"
)

type (
	// ServiceMirror appends confirmed service entries to an external
	// spreadsheet. Best-effort: the local store stays authoritative.
	ServiceMirror interface {
		AppendServiceRow(ctx context.Context, s core.Service, clientName string) (rowRef string, err error)
	}
)
