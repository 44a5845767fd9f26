package medline

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"

	"github.com/matsen/nbib/internal/csl"
	"github.com/matsen/nbib/internal/logging"
)

// Parser converts MEDLINE input into CSL items one block at a time.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a parser logging to logger. A nil logger discards logs.
func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logging.NewComponentLogger(logger, "medline")}
}

// Block converts the raw lines of one citation block into an item. Any
// structural error aborts the block.
func (p *Parser) Block(lines []string) (csl.Item, error) {
	var err error
	fields := func(yield func(csl.Field) bool) {
		for f, ferr := range MapFields(Merge(slices.Values(lines))) {
			if ferr != nil {
				err = ferr
				return
			}
			p.noteAmbiguous(f)
			if !yield(f) {
				return
			}
		}
	}

	item := csl.Assemble(ReduceNames(fields))
	if err != nil {
		return csl.Item{}, err
	}
	return item, nil
}

// Items lazily converts every block read from r. A failed block yields a
// *BlockError and the sequence continues with the next block; the caller
// stops ranging to abort. A read error is yielded last, and the block it
// cut short is dropped.
func (p *Parser) Items(r io.Reader) iter.Seq2[csl.Item, error] {
	return func(yield func(csl.Item, error) bool) {
		var readErr error
		lines := func(yield func(string) bool) {
			for line, err := range Lines(r) {
				if err != nil {
					readErr = err
					return
				}
				if !yield(line) {
					return
				}
			}
		}

		n := 0
		for block := range Blocks(lines) {
			// The source stopped mid-block; the trailing lines are incomplete.
			if readErr != nil {
				break
			}
			n++
			item, err := p.Block(block)
			if err != nil {
				if !yield(csl.Item{}, &BlockError{Block: n, Err: err}) {
					return
				}
				continue
			}
			if !yield(item, nil) {
				return
			}
		}

		if readErr != nil {
			yield(csl.Item{}, fmt.Errorf("reading input: %w", readErr))
		}
	}
}

// Parse converts a whole MEDLINE export. Blocks that fail are reported in
// errs and left out of items.
func (p *Parser) Parse(data []byte) ([]csl.Item, []error) {
	var items []csl.Item
	var errs []error
	for item, err := range p.Items(bytes.NewReader(data)) {
		if err != nil {
			p.logger.Warn("skipping citation block", slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		items = append(items, item)
	}
	return items, errs
}

// Parse converts data with a parser that does not log.
func Parse(data []byte) ([]csl.Item, []error) {
	return NewParser(nil).Parse(data)
}

func (p *Parser) noteAmbiguous(f csl.Field) {
	n, ok := f.(csl.Name)
	if !ok || n.Full {
		return
	}
	if family := n.Parts.FamilyString(); csl.Ambiguous(family) {
		p.logger.Debug("name has more than one comma, kept as family name",
			slog.String("key", n.Key), slog.String("family", family))
	}
}
