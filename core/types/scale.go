package types

import (
	"fmt"

	"github.com/paraverify/paraverify/codec"
)

// SCALE layouts, mirroring the Substrate wire format:
//
//	Header    = parentHash(32) ++ Compact(number) ++ stateRoot(32)
//	            ++ extrinsicsRoot(32) ++ CompactLen(digest) ++ digestLog*
//	BlockData = Header ++ CompactLen(extrinsics) ++ extrinsic*
//	            ++ CompactLen(witness) ++ witnessNode* ++ storageRoot(32)
//
// Digest logs, extrinsics and witness nodes are each compact-length-prefixed
// byte vectors.

// EncodeSCALE returns the SCALE encoding of the header.
func (h *Header) EncodeSCALE() []byte {
	out := append([]byte(nil), h.ParentHash[:]...)
	out = codec.AppendCompact(out, h.Number)
	out = append(out, h.StateRoot[:]...)
	out = append(out, h.ExtrinsicsRoot[:]...)
	out = codec.AppendCompact(out, uint64(len(h.Digest)))
	for _, log := range h.Digest {
		out = codec.AppendBytes(out, log)
	}
	return out
}

// DecodeHeader decodes a complete header payload. Trailing bytes are an
// error.
func DecodeHeader(data []byte) (*Header, error) {
	d := codec.NewDecoder(data)
	h, err := decodeHeaderFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return h, nil
}

// decodeHeaderFrom decodes a header at the decoder's cursor, leaving any
// following fields unconsumed.
func decodeHeaderFrom(d *codec.Decoder) (*Header, error) {
	h := &Header{}

	parent, err := d.ReadFixed(HashLength)
	if err != nil {
		return nil, fmt.Errorf("header parent hash: %w", err)
	}
	copy(h.ParentHash[:], parent)

	if h.Number, err = d.ReadCompact(); err != nil {
		return nil, fmt.Errorf("header number: %w", err)
	}

	state, err := d.ReadFixed(HashLength)
	if err != nil {
		return nil, fmt.Errorf("header state root: %w", err)
	}
	copy(h.StateRoot[:], state)

	extRoot, err := d.ReadFixed(HashLength)
	if err != nil {
		return nil, fmt.Errorf("header extrinsics root: %w", err)
	}
	copy(h.ExtrinsicsRoot[:], extRoot)

	nLogs, err := d.ReadCompact()
	if err != nil {
		return nil, fmt.Errorf("header digest count: %w", err)
	}
	for i := uint64(0); i < nLogs; i++ {
		log, err := d.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("header digest log %d: %w", i, err)
		}
		h.Digest = append(h.Digest, log)
	}
	return h, nil
}

// EncodeSCALE returns the SCALE encoding of the block data payload.
func (bd *BlockData) EncodeSCALE() []byte {
	out := bd.Header.EncodeSCALE()
	out = codec.AppendCompact(out, uint64(len(bd.Extrinsics)))
	for _, ex := range bd.Extrinsics {
		out = codec.AppendBytes(out, ex)
	}
	out = codec.AppendCompact(out, uint64(len(bd.Witness)))
	for _, node := range bd.Witness {
		out = codec.AppendBytes(out, node)
	}
	return append(out, bd.StorageRoot[:]...)
}

// DecodeBlockData decodes a complete block-data payload. Trailing bytes are
// an error.
func DecodeBlockData(data []byte) (*BlockData, error) {
	d := codec.NewDecoder(data)
	bd := &BlockData{}

	var err error
	if bd.Header, err = decodeHeaderFrom(d); err != nil {
		return nil, err
	}

	nExt, err := d.ReadCompact()
	if err != nil {
		return nil, fmt.Errorf("extrinsics count: %w", err)
	}
	for i := uint64(0); i < nExt; i++ {
		ex, err := d.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("extrinsic %d: %w", i, err)
		}
		bd.Extrinsics = append(bd.Extrinsics, ex)
	}

	nNodes, err := d.ReadCompact()
	if err != nil {
		return nil, fmt.Errorf("witness count: %w", err)
	}
	for i := uint64(0); i < nNodes; i++ {
		node, err := d.ReadBytes()
		if err != nil {
			return nil, fmt.Errorf("witness node %d: %w", i, err)
		}
		bd.Witness = append(bd.Witness, node)
	}

	root, err := d.ReadFixed(HashLength)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}
	copy(bd.StorageRoot[:], root)

	if err := d.Finish(); err != nil {
		return nil, err
	}
	return bd, nil
}
