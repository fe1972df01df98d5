package client

import (
	"fmt"

	"github.com/guyt101z/vumi-smpp-client/internal/status"
	"github.com/guyt101z/vumi-smpp-client/pdu"
	"github.com/guyt101z/vumi-smpp-client/pkg/errors"
)

// Sentinel errors the engine and supervisor wrap concrete causes with.
var (
	ErrConfig    = errors.New("invalid engine configuration")
	ErrFrame     = errors.New("malformed or oversize pdu frame")
	ErrTransport = errors.New("transport connection lost")
	ErrDecode    = errors.New("pdu decode error")
)

// ProtocolFault wraps an SMPP command_status classified by
// internal/status, carrying enough detail for a host to act on the
// fault class without re-deriving it.
type ProtocolFault struct {
	Class  status.Class
	Status pdu.Status
	Cause  error
}

func (f *ProtocolFault) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("smpp: protocol fault class=%s status=0x%08X: %s", f.Class, uint32(f.Status), f.Cause)
	}
	return fmt.Sprintf("smpp: protocol fault class=%s status=0x%08X", f.Class, uint32(f.Status))
}

func (f *ProtocolFault) Unwrap() error {
	return f.Cause
}

func newProtocolFault(fault status.Fault) *ProtocolFault {
	return &ProtocolFault{Class: fault.Class, Status: fault.Status, Cause: fault}
}
