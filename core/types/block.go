package types

// Extrinsic is an opaque, SCALE-framed transaction-like payload. The
// validation engine never looks inside one; it hands them to the block
// execution routine as-is.
type Extrinsic []byte

// Block is a reconstructed parachain block: a header plus the ordered
// extrinsics it commits to.
type Block struct {
	header     *Header
	extrinsics []Extrinsic
}

// NewBlock builds a block from a header and its extrinsics. Both are copied
// so later mutation of the inputs cannot change the block.
func NewBlock(header *Header, extrinsics []Extrinsic) *Block {
	b := &Block{header: copyHeader(header)}
	if len(extrinsics) > 0 {
		b.extrinsics = make([]Extrinsic, len(extrinsics))
		for i, ex := range extrinsics {
			b.extrinsics[i] = append(Extrinsic(nil), ex...)
		}
	}
	return b
}

// Header returns a copy of the block header.
func (b *Block) Header() *Header { return copyHeader(b.header) }

// Extrinsics returns the block's extrinsics.
func (b *Block) Extrinsics() []Extrinsic { return b.extrinsics }

// ParentHash returns the parent hash declared in the header.
func (b *Block) ParentHash() Hash { return b.header.ParentHash }

// Number returns the block number declared in the header.
func (b *Block) Number() uint64 { return b.header.Number }

// Hash returns the hash of the block header.
func (b *Block) Hash() Hash { return b.header.Hash() }

// BlockData is the decoded block-data payload handed to the validator: the
// candidate header and extrinsics, the witness trie nodes proving the
// relevant parent state, and the claimed pre-state root the witness must
// contain.
type BlockData struct {
	Header      *Header
	Extrinsics  []Extrinsic
	Witness     [][]byte
	StorageRoot Hash
}
