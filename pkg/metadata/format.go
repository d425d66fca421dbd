package metadata

import (
	"fmt"
	"io"
	"strings"
)

// Header is the protocol line that opens every listing.
const Header = `Content-Type: application/X-atf-tp; version="1"`

// FormatRecord renders r as "key: value" lines followed by a blank line.
// List values are joined with single spaces and newlines inside any value
// become tabs.
func FormatRecord(r *Record) string {
	var b strings.Builder
	for _, p := range r.props {
		b.WriteString(p.Key)
		b.WriteString(": ")
		b.WriteString(formatValue(p.Value))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return b.String()
}

// FormatListing renders the header block followed by every record block.
func FormatListing(records []*Record) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteString("\n\n")
	for _, r := range records {
		b.WriteString(FormatRecord(r))
	}
	return b.String()
}

// WriteListing writes FormatListing(records) to w.
func WriteListing(w io.Writer, records []*Record) error {
	if _, err := io.WriteString(w, FormatListing(records)); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func formatValue(v any) string {
	var s string
	switch x := v.(type) {
	case []string:
		s = strings.Join(x, " ")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = fmt.Sprint(item)
		}
		s = strings.Join(parts, " ")
	default:
		s = fmt.Sprint(v)
	}
	return strings.ReplaceAll(s, "\n", "\t")
}
