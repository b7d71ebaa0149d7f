// Package memory is an in-process ActivityWriter used by tests and by local
// runs without a Google credential.
package memory

import (
	"context"
	"fmt"
	"sync"

	"badyet/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.ActivityRow
}

var _ sheets.ActivityWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row sheets.ActivityRow) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []sheets.ActivityRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sheets.ActivityRow, len(s.rows))
	copy(out, s.rows)
	return out
}
