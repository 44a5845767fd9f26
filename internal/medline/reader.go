package medline

import (
	"bufio"
	"io"
	"iter"
	"strings"

	"github.com/matsen/nbib/internal/groupby"
)

// MaxLineCapacity is the largest raw line Lines accepts (1MB).
const MaxLineCapacity = 1024 * 1024

// Lines yields the lines of r without their line endings. A read error is
// yielded once and ends the sequence.
func Lines(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		buf := make([]byte, 64*1024)
		scanner.Buffer(buf, MaxLineCapacity)

		for scanner.Scan() {
			if !yield(strings.TrimSuffix(scanner.Text(), "\r"), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", err)
		}
	}
}

// Blocks splits lines into citation blocks at empty lines. Runs of empty
// lines, and empty lines at either end, never produce an empty block. A line
// holding only whitespace is not a separator; Merge decides what it is.
func Blocks(lines iter.Seq[string]) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		runs := groupby.By(lines, func(prev, next string) bool {
			return !isEmpty(prev) && !isEmpty(next)
		})
		for run := range runs {
			if isEmpty(run[0]) {
				continue
			}
			if !yield(run) {
				return
			}
		}
	}
}

func isEmpty(line string) bool {
	return line == ""
}
