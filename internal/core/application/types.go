package application

import (
	"github.com/morphcodes/morphd/internal/core/domain"
)

// Outcome is the result of a single validation call. Rejections are business
// outcomes, not errors: they are returned as data and always leave an audit
// record behind.
type Outcome struct {
	Accepted bool
	Reason   domain.RejectionReason
	// ConsumedPosition is the position consumed by an accepted scan.
	ConsumedPosition int
	// NewCursor is the chain cursor after the scan, -1 when exhausted.
	NewCursor      int
	ChainExhausted bool
}

// PublicMessage is what anonymous callers see, regardless of the precise
// rejection reason. Reasons are safe to log and to show owners, but echoing
// them to scanners would help an attacker probe chain state.
func (o Outcome) PublicMessage() string {
	if o.Accepted {
		return "code accepted"
	}
	return "invalid or already used code"
}

// ScanMeta carries request context recorded in the audit trail.
type ScanMeta struct {
	IP        string
	UserAgent string
}

// CurrentToken is the displayable artifact for a chain's current position.
type CurrentToken struct {
	ChainID  string
	Position int
	Value    string
	// Payload is the encoded document to render out-of-band, e.g. in a QR
	// image.
	Payload   string
	Remaining int
}

// ChainStats merges chain progress with audit-trail counters.
type ChainStats struct {
	Length          int
	Cursor          int
	Remaining       int
	Scanned         int
	PercentComplete float64
	TotalScans      int64
	AcceptedScans   int64
	RejectedScans   int64
}
