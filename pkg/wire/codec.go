package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CodecName is the codec name; Connect derives the content type
// "application/cbor" from it.
const CodecName = "cbor"

// Codec is a connect.Codec that encodes messages as canonical CBOR.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	return cborEncMode.Marshal(msg)
}

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, msg any) error {
	if err := cbor.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("wire: unmarshal %T: %w", msg, err)
	}
	return nil
}
