package types

// Transaction is the external, opaque byte-serializable record the engine
// stores by TxId. The engine never interprets a transaction's payload; it
// only needs a stable identifier and a way to obtain the bytes to persist.
type Transaction interface {
	// TxId is the transaction's stable identifier.
	TxId() TxId

	// Marshal returns the serialized form to persist. Content for a given
	// TxId is expected to be immutable across calls.
	Marshal() ([]byte, error)
}

// Block is the external, opaque byte-serializable record the engine stores
// by BlockHash. A block owns an ordered list of contained transactions,
// which the engine persists alongside the block body.
type Block interface {
	// BlockHash is the block's stable content hash.
	BlockHash() BlockHash

	// Marshal returns the serialized form to persist.
	Marshal() ([]byte, error)

	// Transactions returns the transactions contained in this block, in
	// block order.
	Transactions() []Transaction
}

// StateMap is the opaque mapping from address to state value that a state
// snapshot records for a single block. The value bytes are caller-defined
// and are never interpreted by the engine.
type StateMap map[Address][]byte
