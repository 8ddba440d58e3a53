package multidb

import (
	"fmt"
	"io"
)

// Closer is io.Closer tagged with the db label it closes.
type Closer interface {
	io.Closer

	Label() string
}

type labeledCloser struct {
	label string
	conn  io.Closer
}

var _ Closer = labeledCloser{}

func (c labeledCloser) Label() string {
	return c.label
}

// Close wraps the error with label, so the joined error tells which db failed.
func (c labeledCloser) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close db %s: %w", c.label, err)
	}

	return nil
}
