package core

// Frame is a raw serialized payload ready for the wire.
type Frame []byte

// ConnID is the transport-assigned identifier of one live connection.
type ConnID string

// SignalConnection abstracts for a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
