package object

import (
	"bytes"
	"fmt"
	"io"
)

func decodeDeltaVarint(r io.ByteReader) (uint64, error) {
	var (
		value uint64
		shift uint
	)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
		if shift > 63 {
			return 0, fmt.Errorf("delta varint too large")
		}
	}
}

// readOfsDeltaDistance reads the backward distance that follows an
// OFS_DELTA entry header. Each continuation adds one before shifting, so
// every distance has exactly one encoding.
func readOfsDeltaDistance(r io.ByteReader) (uint64, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("ofs-delta distance truncated")
	}
	offset := uint64(c & 0x7f)
	for c&0x80 != 0 {
		if c, err = r.ReadByte(); err != nil {
			return 0, fmt.Errorf("ofs-delta distance truncated")
		}
		if offset >= 1<<56 {
			return 0, fmt.Errorf("ofs-delta distance overflows")
		}
		offset = ((offset + 1) << 7) | uint64(c&0x7f)
	}
	return offset, nil
}

// applyDelta applies Git delta instructions to base and returns the result.
func applyDelta(base, delta []byte) ([]byte, error) {
	dr := bytes.NewReader(delta)

	baseSize, err := decodeDeltaVarint(dr)
	if err != nil {
		return nil, fmt.Errorf("read base size: %w", err)
	}
	if baseSize != uint64(len(base)) {
		return nil, fmt.Errorf("delta base size mismatch: got %d want %d", baseSize, len(base))
	}
	resultSize, err := decodeDeltaVarint(dr)
	if err != nil {
		return nil, fmt.Errorf("read result size: %w", err)
	}
	if resultSize > uint64(len(base))+uint64(len(delta))*0x10000 {
		return nil, fmt.Errorf("delta result size %d is implausible", resultSize)
	}

	out := make([]byte, 0, resultSize)
	for dr.Len() > 0 {
		cmd, err := dr.ReadByte()
		if err != nil {
			return nil, err
		}
		if cmd&0x80 != 0 {
			// Bits 0-3 select offset bytes, bits 4-6 select size bytes,
			// least significant first.
			var offset, size int64
			for i := uint(0); i < 7; i++ {
				if cmd&(1<<i) == 0 {
					continue
				}
				b, err := dr.ReadByte()
				if err != nil {
					return nil, fmt.Errorf("delta copy argument %d: %w", i, err)
				}
				if i < 4 {
					offset |= int64(b) << (8 * i)
				} else {
					size |= int64(b) << (8 * (i - 4))
				}
			}
			if size == 0 {
				size = 0x10000
			}
			if offset+size > int64(len(base)) {
				return nil, fmt.Errorf("delta copy out of bounds")
			}
			out = append(out, base[offset:offset+size]...)
			continue
		}

		if cmd == 0 {
			return nil, fmt.Errorf("invalid delta command: 0")
		}
		insert := make([]byte, int(cmd))
		if _, err := io.ReadFull(dr, insert); err != nil {
			return nil, fmt.Errorf("delta insert: %w", err)
		}
		out = append(out, insert...)
	}

	if uint64(len(out)) != resultSize {
		return nil, fmt.Errorf("delta result size mismatch: got %d expected %d", len(out), resultSize)
	}
	return out, nil
}
