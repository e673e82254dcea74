package splitter

import (
	"encoding/binary"
	"fmt"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
)

const recordTag = 0x50 // 'P'

const flagAsset = 1

// PoolRecordSize is the encoded size of every pool record:
// tag(1) + authority(32) + work(32) + flags(1) + asset(32) +
// members(TableSize) + total_received(8) + claims(LedgerSize) + version(4).
const PoolRecordSize = 1 + 32 + 32 + 1 + 32 + revshare.TableSize + 8 + revshare.LedgerSize + 4

// SerializePool encodes p into its fixed-width record.
func SerializePool(p *Pool) []byte {
	buf := make([]byte, 0, PoolRecordSize)
	buf = append(buf, recordTag)
	buf = append(buf, p.Authority[:]...)
	buf = append(buf, p.Work[:]...)
	var asset identity.ID
	var flags byte
	if p.Asset != nil {
		flags |= flagAsset
		asset = *p.Asset
	}
	buf = append(buf, flags)
	buf = append(buf, asset[:]...)
	buf = revshare.AppendTable(buf, &p.Members)
	buf = binary.BigEndian.AppendUint64(buf, p.TotalReceived)
	buf = revshare.AppendLedger(buf, &p.Claims)
	return binary.BigEndian.AppendUint32(buf, p.Version)
}

// DeserializePool decodes a fixed-width pool record.
func DeserializePool(data []byte) (*Pool, error) {
	if len(data) != PoolRecordSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPoolData, PoolRecordSize, len(data))
	}
	if data[0] != recordTag {
		return nil, fmt.Errorf("%w: tag 0x%02x", ErrInvalidPoolData, data[0])
	}
	offset := 1
	p := &Pool{}
	copy(p.Authority[:], data[offset:offset+32])
	offset += 32
	copy(p.Work[:], data[offset:offset+32])
	offset += 32

	flags := data[offset]
	offset++
	if flags&flagAsset != 0 {
		var asset identity.ID
		copy(asset[:], data[offset:offset+32])
		p.Asset = &asset
	}
	offset += 32

	members, err := revshare.DeserializeTable(data[offset : offset+revshare.TableSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPoolData, err)
	}
	p.Members = members
	offset += revshare.TableSize

	p.TotalReceived = binary.BigEndian.Uint64(data[offset : offset+8])
	offset += 8

	claims, err := revshare.DeserializeLedger(data[offset : offset+revshare.LedgerSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPoolData, err)
	}
	p.Claims = claims
	offset += revshare.LedgerSize

	p.Version = binary.BigEndian.Uint32(data[offset : offset+4])
	return p, nil
}
