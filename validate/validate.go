// Package validate implements single-shot stateless block validation: it
// rebuilds a block and a witness-backed storage view from opaque inputs,
// exposes the storage operations to a block executor through a swappable
// binding table, and runs the executor exactly once.
package validate

import (
	"errors"
	"fmt"

	"github.com/paraverify/paraverify/core/types"
	"github.com/paraverify/paraverify/log"
	"github.com/paraverify/paraverify/witness"
)

var (
	// ErrDecodeBlockData is returned when the opaque block data cannot be
	// decoded.
	ErrDecodeBlockData = errors.New("validate: invalid block data")

	// ErrDecodeParentHead is returned when the opaque parent head cannot
	// be decoded.
	ErrDecodeParentHead = errors.New("validate: invalid parent head")

	// ErrParentHashMismatch is returned when the block does not extend the
	// supplied parent head.
	ErrParentHashMismatch = errors.New("validate: block parent hash does not match parent head")
)

// BlockExecutor runs a rebuilt block against the currently installed
// storage bindings. It is invoked at most once per validation.
type BlockExecutor interface {
	ExecuteBlock(block *types.Block) error
}

// ValidationParams carries the opaque inputs of one validation call.
type ValidationParams struct {
	// BlockData is the encoded bundle of header, extrinsics, witness
	// nodes and claimed parent state root.
	BlockData []byte

	// ParentHead is the encoded header of the block being built upon.
	ParentHead []byte
}

// ValidateBlock performs one stateless validation. It decodes the inputs,
// checks that the block extends the parent head, constructs the witness
// storage view, installs the storage bindings and invokes the executor.
//
// Every failure before execution is returned as an error; nothing is
// retried. The previous bindings are restored on all exit paths, including
// a panicking executor.
func ValidateBlock(params ValidationParams, exec BlockExecutor) error {
	logger := log.Default().Module("validate")

	blockData, err := types.DecodeBlockData(params.BlockData)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeBlockData, err)
	}
	parentHead, err := types.DecodeHeader(params.ParentHead)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecodeParentHead, err)
	}

	block := types.NewBlock(blockData.Header, blockData.Extrinsics)
	if block.ParentHash() != parentHead.Hash() {
		return fmt.Errorf("%w: block %s, parent head %s",
			ErrParentHashMismatch, block.ParentHash(), parentHead.Hash())
	}

	storage, err := witness.NewStorage(blockData.Witness, blockData.StorageRoot)
	if err != nil {
		return fmt.Errorf("validate: witness storage: %w", err)
	}

	logger.Debug("executing block",
		"number", block.Number(),
		"parent", block.ParentHash(),
		"extrinsics", len(block.Extrinsics()),
		"witness_nodes", len(blockData.Witness))

	arena := &Arena{}
	restore := Replace(bindStorage(storage, arena))
	defer func() {
		restore()
		arena.Release()
	}()

	if err := exec.ExecuteBlock(block); err != nil {
		return fmt.Errorf("validate: execute block: %w", err)
	}
	return nil
}
