package wire

// EvaluateRequest asks the server to evaluate one expression.
type EvaluateRequest struct {
	Source      string `cbor:"1,keyasint"`
	Disassemble bool   `cbor:"2,keyasint,omitempty"`
}

// EvaluateResponse reports the outcome of an evaluation. Evaluation failures
// are reported here with Success false rather than as RPC errors.
type EvaluateResponse struct {
	Success      bool     `cbor:"1,keyasint"`
	Value        int64    `cbor:"2,keyasint,omitempty"`
	Records      []string `cbor:"3,keyasint,omitempty"`
	Listing      string   `cbor:"4,keyasint,omitempty"`
	ErrorKind    string   `cbor:"5,keyasint,omitempty"`
	ErrorMessage string   `cbor:"6,keyasint,omitempty"`
}
