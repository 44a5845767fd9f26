package medline

import (
	"errors"
	"fmt"
)

// Structural errors. Each one is fatal for the citation block it occurs in.
var (
	// ErrMalformedLine is returned for a raw line too short to hold a tag.
	ErrMalformedLine = errors.New("malformed line")

	// ErrInvalidState is returned for a continuation line with no open field.
	ErrInvalidState = errors.New("invalid state")

	// ErrMalformedRecord is returned for a merged line that does not have the
	// "TAG - value" layout.
	ErrMalformedRecord = errors.New("malformed record")
)

// LineError locates a structural error. Line is the 1-based position in the
// input of the stage that failed: raw lines for the scanner, merged lines
// for the mapper.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

// BlockError reports which citation block (1-based) failed.
type BlockError struct {
	Block int
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Block, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }
