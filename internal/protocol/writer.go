package protocol

import "encoding/binary"

// Type identifies a packet on the wire; it prefixes every frame as a
// little-endian uint16.
type Type uint16

const (
	// Inbound.
	TypeConsignedShopOpen     Type = 1511
	TypeConsignedShopPurchase Type = 1512

	// Outbound.
	TypeLoadConsignedShop      Type = 1513
	TypeUnloadConsignedShop    Type = 1514
	TypeConsignedShopItemsView Type = 1515
	TypePersonalShopClose      Type = 1521
	TypeSystemMessage          Type = 1101
	TypeLoadInventory          Type = 1203
	TypeSyncCondition          Type = 1322
)

// Writer builds an outbound frame: the type prefix followed by
// little-endian payload fields.
type Writer struct {
	buf []byte
}

func NewWriter(t Type) *Writer {
	w := &Writer{buf: make([]byte, 0, 64)}
	w.WriteUint16(uint16(t))
	return w
}

func (w *Writer) WriteUint16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) WriteInt32(v int32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
	return w
}

func (w *Writer) WriteInt64(v int64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
	return w
}

// WriteString writes an int32 length prefix followed by UTF-8 bytes.
func (w *Writer) WriteString(s string) *Writer {
	w.WriteInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

// WriteZero appends n bytes of padding.
func (w *Writer) WriteZero(n int) *Writer {
	w.buf = append(w.buf, make([]byte, n)...)
	return w
}

func (w *Writer) Bytes() []byte {
	return w.buf
}
