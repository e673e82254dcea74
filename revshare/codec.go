package revshare

import (
	"encoding/binary"
	"fmt"
)

const (
	tableEntrySize  = 34 // beneficiary(32) + bp(2)
	ledgerEntrySize = 40 // member(32) + paid(8)

	// TableSize is the encoded size of any share table: count(1) + MaxEntries slots.
	TableSize = 1 + MaxEntries*tableEntrySize

	// LedgerSize is the encoded size of any claim ledger: count(1) + MaxEntries slots.
	LedgerSize = 1 + MaxEntries*ledgerEntrySize
)

// AppendTable appends the fixed-width encoding of t to dst.
// Unused slots are zero-filled so every table encodes to TableSize bytes.
func AppendTable(dst []byte, t *Table) []byte {
	buf := make([]byte, TableSize)
	buf[0] = t.n
	offset := 1
	for i := 0; i < int(t.n); i++ {
		copy(buf[offset:offset+32], t.entries[i].Beneficiary[:])
		offset += 32
		binary.BigEndian.PutUint16(buf[offset:offset+2], t.entries[i].BP)
		offset += 2
	}
	return append(dst, buf...)
}

// SerializeTable returns the fixed-width encoding of t.
func SerializeTable(t *Table) []byte {
	return AppendTable(make([]byte, 0, TableSize), t)
}

// DeserializeTable decodes a table and re-validates it.
func DeserializeTable(data []byte) (Table, error) {
	if len(data) != TableSize {
		return Table{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidTableData, TableSize, len(data))
	}
	n := int(data[0])
	if n > MaxEntries {
		return Table{}, fmt.Errorf("%w: count %d", ErrInvalidTableData, n)
	}
	entries := make([]Entry, n)
	offset := 1
	for i := 0; i < n; i++ {
		copy(entries[i].Beneficiary[:], data[offset:offset+32])
		offset += 32
		entries[i].BP = binary.BigEndian.Uint16(data[offset : offset+2])
		offset += 2
	}
	t, err := NewTable(entries)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %w", ErrInvalidTableData, err)
	}
	return t, nil
}

// AppendLedger appends the fixed-width encoding of l to dst.
func AppendLedger(dst []byte, l *Ledger) []byte {
	buf := make([]byte, LedgerSize)
	buf[0] = l.n
	offset := 1
	for i := 0; i < int(l.n); i++ {
		copy(buf[offset:offset+32], l.claims[i].Member[:])
		offset += 32
		binary.BigEndian.PutUint64(buf[offset:offset+8], l.claims[i].Paid)
		offset += 8
	}
	return append(dst, buf...)
}

// SerializeLedger returns the fixed-width encoding of l.
func SerializeLedger(l *Ledger) []byte {
	return AppendLedger(make([]byte, 0, LedgerSize), l)
}

// DeserializeLedger decodes a claim ledger.
func DeserializeLedger(data []byte) (Ledger, error) {
	var l Ledger
	if len(data) != LedgerSize {
		return l, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidLedgerData, LedgerSize, len(data))
	}
	n := int(data[0])
	if n > MaxEntries {
		return l, fmt.Errorf("%w: count %d", ErrInvalidLedgerData, n)
	}
	offset := 1
	for i := 0; i < n; i++ {
		copy(l.claims[i].Member[:], data[offset:offset+32])
		offset += 32
		l.claims[i].Paid = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
		for j := 0; j < i; j++ {
			if l.claims[j].Member == l.claims[i].Member {
				return Ledger{}, fmt.Errorf("%w: duplicate member %s", ErrInvalidLedgerData, l.claims[i].Member.Short())
			}
		}
	}
	l.n = uint8(n)
	return l, nil
}
