package metadata

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseListing reads a listing produced by WriteListing. Every value comes
// back as a string; tabs that replaced newlines are left as tabs.
func ParseListing(r io.Reader) ([]*Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("reading listing: %w", err)
		}
		return nil, fmt.Errorf("listing is empty")
	}
	if scanner.Text() != Header {
		return nil, fmt.Errorf("line 1: want header %q, got %q", Header, scanner.Text())
	}
	if !scanner.Scan() || scanner.Text() != "" {
		return nil, fmt.Errorf("line 2: header must be followed by a blank line")
	}

	var records []*Record
	var current *Record
	lineNo := 2
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			if current != nil {
				records = append(records, current)
				current = nil
			}
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			return nil, fmt.Errorf("line %d: malformed property %q", lineNo, line)
		}
		if current == nil {
			if key != KeyIdent {
				return nil, fmt.Errorf("line %d: test case must start with %s, got %s", lineNo, KeyIdent, key)
			}
			current = &Record{}
		} else if _, dup := current.Get(key); dup {
			return nil, fmt.Errorf("line %d: duplicate property %s", lineNo, key)
		}
		current.Set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading listing: %w", err)
	}
	if current != nil {
		records = append(records, current)
	}
	return records, nil
}
