package revshare

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bitfsorg/libibom-go/identity"
)

// Resolver maps the beneficiary part of a share spec to an identity.
type Resolver func(who string) (identity.ID, error)

// ParseShares parses "who:bp,who:bp,..." into a validated table.
// A nil resolve parses each who as a hex identity.
func ParseShares(spec string, resolve Resolver) (Table, error) {
	if resolve == nil {
		resolve = identity.Parse
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Table{}, fmt.Errorf("%w: empty", ErrInvalidShareSpec)
	}
	parts := strings.Split(spec, ",")
	if len(parts) > MaxEntries {
		return Table{}, fmt.Errorf("%w: %d > %d", ErrTooManyEntries, len(parts), MaxEntries)
	}
	entries := make([]Entry, 0, len(parts))
	for i, part := range parts {
		idx := strings.LastIndexByte(part, ':')
		if idx <= 0 {
			return Table{}, fmt.Errorf("%w: item %d %q missing ':bp'", ErrInvalidShareSpec, i, part)
		}
		who := strings.TrimSpace(part[:idx])
		bp, err := strconv.ParseUint(strings.TrimSpace(part[idx+1:]), 10, 16)
		if err != nil {
			return Table{}, fmt.Errorf("%w: item %d bp: %w", ErrInvalidShareSpec, i, err)
		}
		id, err := resolve(who)
		if err != nil {
			return Table{}, fmt.Errorf("%w: item %d: %w", ErrInvalidShareSpec, i, err)
		}
		entries = append(entries, Entry{Beneficiary: id, BP: uint16(bp)})
	}
	return NewTable(entries)
}

// FormatShares renders t in the form accepted by ParseShares.
func FormatShares(t *Table) string {
	var sb strings.Builder
	for i, e := range t.Entries() {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s:%d", e.Beneficiary, e.BP)
	}
	return sb.String()
}
