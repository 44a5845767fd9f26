// Package storage handles item persistence in JSONL and SQLite formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/matsen/nbib/internal/csl"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// Import actions.
const (
	ActionNew       = "new"
	ActionExists    = "exists"    // already in the library
	ActionDuplicate = "duplicate" // repeated within the same import
)

// ItemWithAction pairs an incoming item with the action an import takes on it.
type ItemWithAction struct {
	Item   csl.Item
	Action string
}

// LockPathFor returns the lock file guarding writes to a JSONL file:
// items.jsonl is guarded by items.lock in the same directory.
func LockPathFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".lock"
}

// ReadAll reads all items from a JSONL file.
func ReadAll(path string) ([]csl.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Missing file is an empty library
		}
		return nil, fmt.Errorf("opening items file: %w", err)
	}
	defer f.Close()

	var items []csl.Item
	scanner := bufio.NewScanner(f)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item csl.Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		items = append(items, item)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading items file: %w", err)
	}

	return items, nil
}

// Import classifies incoming against the items already in path and appends
// the new ones. Reading, classifying and appending hold one exclusive lock,
// so concurrent imports neither interleave lines nor add an item twice.
func Import(path string, incoming []csl.Item) ([]ItemWithAction, error) {
	var classified []ItemWithAction
	err := withLock(path, func() error {
		existing, err := ReadAll(path)
		if err != nil {
			return err
		}
		classified = Classify(existing, incoming)
		if fresh := NewItems(classified); len(fresh) > 0 {
			return appendItems(path, fresh)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return classified, nil
}

func appendItems(path string, items []csl.Item) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening items file for append: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := writeItems(w, items); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing items file: %w", err)
	}
	return nil
}

func writeItems(w *bufio.Writer, items []csl.Item) error {
	for i, item := range items {
		data, err := item.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding item %d: %w", i, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing item %d: %w", i, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return nil
}

func withLock(path string, fn func() error) error {
	lock := flock.New(LockPathFor(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// FindByID searches for an item by ID.
func FindByID(items []csl.Item, id string) (int, bool) {
	for i, item := range items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Classify decides what an import does with each incoming item. Items whose
// ID is already in existing are skipped, as are repeats within incoming.
func Classify(existing, incoming []csl.Item) []ItemWithAction {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, item := range existing {
		seen[item.ID] = true
	}

	inBatch := make(map[string]bool, len(incoming))
	out := make([]ItemWithAction, 0, len(incoming))
	for _, item := range incoming {
		action := ActionNew
		switch {
		case inBatch[item.ID]:
			action = ActionDuplicate
		case seen[item.ID]:
			action = ActionExists
		}
		inBatch[item.ID] = true
		out = append(out, ItemWithAction{Item: item, Action: action})
	}
	return out
}

// NewItems returns the items classified as new, in order.
func NewItems(classified []ItemWithAction) []csl.Item {
	var items []csl.Item
	for _, c := range classified {
		if c.Action == ActionNew {
			items = append(items, c.Item)
		}
	}
	return items
}
