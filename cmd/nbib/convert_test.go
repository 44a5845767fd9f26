package main

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/matsen/nbib/internal/logging"
	"github.com/matsen/nbib/internal/medline"
)

const goodBlock = `PMID- 31000000
TI  - A title that continues
      onto a second line.
FAU - Blachly, James S
AU  - Blachly JS
DP  - 2019 Mar 14
`

const orphanBlock = `      orphan continuation
PMID- 2
`

func TestConvertStream(t *testing.T) {
	items, report, err := convertStream(strings.NewReader(goodBlock+"\n"+goodBlock), false, logging.NewNop())
	if err != nil {
		t.Fatalf("convertStream() error = %v", err)
	}
	if len(items) != 2 || report.Converted != 2 || report.Skipped != 0 {
		t.Errorf("got %d items, report %+v", len(items), report)
	}
	if items[0].Title() != "A title that continues onto a second line." {
		t.Errorf("Title() = %q", items[0].Title())
	}
	if items[0].ID != items[1].ID {
		t.Error("identical blocks should have identical IDs")
	}
}

func TestConvertStream_AbortsByDefault(t *testing.T) {
	input := goodBlock + "\n" + orphanBlock + "\n" + goodBlock
	_, _, err := convertStream(strings.NewReader(input), false, logging.NewNop())
	if !errors.Is(err, medline.ErrInvalidState) {
		t.Fatalf("convertStream() error = %v, want ErrInvalidState", err)
	}
	var blockErr *medline.BlockError
	if !errors.As(err, &blockErr) || blockErr.Block != 2 {
		t.Errorf("error should name block 2, got %v", err)
	}
}

func TestConvertStream_Skip(t *testing.T) {
	input := goodBlock + "\n" + orphanBlock + "\n" + goodBlock
	items, report, err := convertStream(strings.NewReader(input), true, logging.NewNop())
	if err != nil {
		t.Fatalf("convertStream() error = %v", err)
	}
	if len(items) != 2 || report.Skipped != 1 || len(report.Errors) != 1 {
		t.Errorf("got %d items, report %+v", len(items), report)
	}
}

func TestConvertStream_Empty(t *testing.T) {
	items, report, err := convertStream(strings.NewReader("\n\n"), false, logging.NewNop())
	if err != nil {
		t.Fatalf("convertStream() error = %v", err)
	}
	if items == nil || len(items) != 0 || report.Converted != 0 {
		t.Errorf("expected empty non-nil items, got %v %+v", items, report)
	}
}

func TestOpenInput(t *testing.T) {
	r, closeFn, err := openInput(nil)
	if err != nil || r != os.Stdin {
		t.Errorf("openInput(nil) = %v, %v; want stdin", r, err)
	}
	closeFn()

	if _, _, err := openInput([]string{"/nonexistent/file.nbib"}); err == nil {
		t.Error("openInput() expected error for missing file")
	}
}
