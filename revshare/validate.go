package revshare

import (
	"encoding/json"
	"fmt"
)

// Validate checks a candidate list of rows without building a table.
// The count is checked first, then uniqueness, then the basis-point sum.
func Validate(entries []Entry) error {
	if len(entries) > MaxEntries {
		return fmt.Errorf("%w: %d > %d", ErrTooManyEntries, len(entries), MaxEntries)
	}
	var sum uint32
	for i := range entries {
		for j := 0; j < i; j++ {
			if entries[j].Beneficiary == entries[i].Beneficiary {
				return fmt.Errorf("%w: %s at rows %d and %d",
					ErrDuplicateBeneficiary, entries[i].Beneficiary.Short(), j, i)
			}
		}
		sum += uint32(entries[i].BP)
	}
	if sum != TotalBP {
		return fmt.Errorf("%w: got %d", ErrInvalidSharesSum, sum)
	}
	return nil
}

// NewTable validates entries and copies them into a Table.
func NewTable(entries []Entry) (Table, error) {
	var t Table
	if err := Validate(entries); err != nil {
		return t, err
	}
	copy(t.entries[:], entries)
	t.n = uint8(len(entries))
	return t, nil
}

// MustTable is NewTable that panics on invalid input. For tests and fixtures.
func MustTable(entries ...Entry) Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// MarshalJSON encodes the table as its list of rows.
func (t Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Entries())
}

// UnmarshalJSON decodes and validates a list of rows.
func (t *Table) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	table, err := NewTable(entries)
	if err != nil {
		return err
	}
	*t = table
	return nil
}
