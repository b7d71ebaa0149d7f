package sheets

import (
	"context"
	"time"
)

// ActivityRow is one line of the account activity log.
type ActivityRow struct {
	At          time.Time
	Event       string
	Kind        string
	UserEmail   string
	Title       string
	Description string
}

// ActivityWriter is the outbound port for the activity log. Append returns
// an adapter-specific reference to the written row.
type ActivityWriter interface {
	Append(ctx context.Context, row ActivityRow) (rowRef string, err error)
}
