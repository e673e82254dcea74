package registry

import (
	"encoding/binary"
	"fmt"

	"github.com/bitfsorg/libibom-go/identity"
	"github.com/bitfsorg/libibom-go/revshare"
)

const recordTag = 0x57 // 'W'

const (
	flagLinkedMint = 1 << iota
	flagCollection
	flagPaymentAsset
	flagPrice
)

// WorkRecordSize is the encoded size of every work record:
// tag(1) + authority(32) + work_id(32) + uri_len(1) + uri(200) + fingerprint(32) +
// creators(TableSize) + registered_at(8) + version(4) + flags(1) +
// linked_mint(32) + collection(32) + payment_asset(32) + price(8).
const WorkRecordSize = 1 + 32 + 32 + 1 + MaxURILen + 32 + revshare.TableSize + 8 + 4 + 1 + 32 + 32 + 32 + 8

// SerializeWork encodes w into its fixed-width record.
func SerializeWork(w *Work) ([]byte, error) {
	if len(w.MetadataURI) > MaxURILen {
		return nil, fmt.Errorf("%w: %d bytes", ErrURITooLong, len(w.MetadataURI))
	}
	buf := make([]byte, 0, WorkRecordSize)
	buf = append(buf, recordTag)
	buf = append(buf, w.Authority[:]...)
	buf = append(buf, w.WorkID[:]...)
	buf = append(buf, byte(len(w.MetadataURI)))
	uri := make([]byte, MaxURILen)
	copy(uri, w.MetadataURI)
	buf = append(buf, uri...)
	buf = append(buf, w.Fingerprint[:]...)
	buf = revshare.AppendTable(buf, &w.Creators)
	buf = binary.BigEndian.AppendUint64(buf, uint64(w.RegisteredAt))
	buf = binary.BigEndian.AppendUint32(buf, w.Version)

	var flags byte
	var mint, collection, asset identity.ID
	var price uint64
	if w.LinkedMint != nil {
		flags |= flagLinkedMint
		mint = *w.LinkedMint
	}
	if w.Collection != nil {
		flags |= flagCollection
		collection = *w.Collection
	}
	if w.PaymentAsset != nil {
		flags |= flagPaymentAsset
		asset = *w.PaymentAsset
	}
	if w.Price != nil {
		flags |= flagPrice
		price = *w.Price
	}
	buf = append(buf, flags)
	buf = append(buf, mint[:]...)
	buf = append(buf, collection[:]...)
	buf = append(buf, asset[:]...)
	buf = binary.BigEndian.AppendUint64(buf, price)
	return buf, nil
}

// DeserializeWork decodes a fixed-width work record.
func DeserializeWork(data []byte) (*Work, error) {
	if len(data) != WorkRecordSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidWorkData, WorkRecordSize, len(data))
	}
	if data[0] != recordTag {
		return nil, fmt.Errorf("%w: tag 0x%02x", ErrInvalidWorkData, data[0])
	}
	offset := 1
	w := &Work{}
	copy(w.Authority[:], data[offset:offset+32])
	offset += 32
	copy(w.WorkID[:], data[offset:offset+32])
	offset += 32

	uriLen := int(data[offset])
	offset++
	if uriLen > MaxURILen {
		return nil, fmt.Errorf("%w: uri length %d", ErrInvalidWorkData, uriLen)
	}
	w.MetadataURI = string(data[offset : offset+uriLen])
	offset += MaxURILen

	copy(w.Fingerprint[:], data[offset:offset+32])
	offset += 32

	creators, err := revshare.DeserializeTable(data[offset : offset+revshare.TableSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidWorkData, err)
	}
	w.Creators = creators
	offset += revshare.TableSize

	w.RegisteredAt = int64(binary.BigEndian.Uint64(data[offset : offset+8]))
	offset += 8
	w.Version = binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4

	flags := data[offset]
	offset++
	readID := func() identity.ID {
		var id identity.ID
		copy(id[:], data[offset:offset+32])
		offset += 32
		return id
	}
	mint, collection, asset := readID(), readID(), readID()
	price := binary.BigEndian.Uint64(data[offset : offset+8])

	if flags&flagLinkedMint != 0 {
		w.LinkedMint = &mint
	}
	if flags&flagCollection != 0 {
		w.Collection = &collection
	}
	if flags&flagPaymentAsset != 0 {
		w.PaymentAsset = &asset
	}
	if flags&flagPrice != 0 {
		w.Price = &price
	}
	return w, nil
}
