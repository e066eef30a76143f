package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/pkg/blobstore"
	"github.com/fortiblox/ledgerstore/pkg/chainhash"
)

// errChecksumMismatch is returned internally when a decompressed snapshot's
// leading checksum does not match its payload, and is always translated
// into an absent result: a corrupted snapshot is recomputable, so the
// caller sees it the same way it would see a missing one.
var errChecksumMismatch = errors.New("engine: state snapshot checksum mismatch")

// encodeStateMap serializes m as: count(u32 BE), then per entry
// address(20) || len(u32 BE) || value.
func encodeStateMap(m types.StateMap) []byte {
	var buf bytes.Buffer
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(m)))
	buf.Write(countBuf[:])
	for addr, val := range m {
		buf.Write(addr.Bytes())
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(val)))
		buf.Write(lenBuf[:])
		buf.Write(val)
	}
	return buf.Bytes()
}

func decodeStateMap(b []byte) (types.StateMap, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("decode state map: truncated header")
	}
	count := binary.BigEndian.Uint32(b[:4])
	b = b[4:]
	m := make(types.StateMap, count)
	for i := uint32(0); i < count; i++ {
		if len(b) < types.AddressSize+4 {
			return nil, fmt.Errorf("decode state map: truncated entry")
		}
		addr, err := types.AddressFromBytes(b[:types.AddressSize])
		if err != nil {
			return nil, fmt.Errorf("decode state map: %w", err)
		}
		b = b[types.AddressSize:]
		vlen := binary.BigEndian.Uint32(b[:4])
		b = b[4:]
		if uint32(len(b)) < vlen {
			return nil, fmt.Errorf("decode state map: truncated value")
		}
		m[addr] = append([]byte(nil), b[:vlen]...)
		b = b[vlen:]
	}
	return m, nil
}

// GetBlockStates returns the deserialized address-to-state mapping snapshot
// for block hash h, or ok=false if absent. A checksum failure (a corrupted
// snapshot) is treated the same as absence, since a snapshot is always
// recomputable.
func (e *Engine) GetBlockStates(h types.BlockHash) (types.StateMap, bool, error) {
	compressed, ok, err := e.blobs.Get(blobstore.NamespaceState, h.Hex())
	if err != nil {
		return nil, false, fmt.Errorf("get block states: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false, fmt.Errorf("get block states: init decompressor: %w", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("get block states: decompress: %w", err)
	}

	m, err := decodeChecksummedStateMap(payload)
	if err != nil {
		if errors.Is(err, errChecksumMismatch) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get block states: %w", err)
	}
	return m, true, nil
}

// SetBlockStates serializes, checksums, and zstd-compresses m, then
// unconditionally overwrites the snapshot for block hash h: a recomputed
// snapshot always replaces the previous one.
func (e *Engine) SetBlockStates(h types.BlockHash, m types.StateMap) error {
	encoded := encodeStateMap(m)
	checksum := chainhash.Checksum(encoded)
	payload := make([]byte, 0, chainhash.ChecksumSize+len(encoded))
	payload = append(payload, checksum[:]...)
	payload = append(payload, encoded...)

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("set block states: init compressor: %w", err)
	}
	defer enc.Close()
	compressed := enc.EncodeAll(payload, nil)

	if err := e.blobs.Replace(blobstore.NamespaceState, h.Hex(), compressed); err != nil {
		return fmt.Errorf("set block states: %w", err)
	}
	return nil
}

func decodeChecksummedStateMap(payload []byte) (types.StateMap, error) {
	if len(payload) < chainhash.ChecksumSize {
		return nil, fmt.Errorf("truncated payload")
	}
	var want [chainhash.ChecksumSize]byte
	copy(want[:], payload[:chainhash.ChecksumSize])
	body := payload[chainhash.ChecksumSize:]

	if chainhash.Checksum(body) != want {
		return nil, errChecksumMismatch
	}
	return decodeStateMap(body)
}
