// Package capture defines the recorded callback stream a compiler shim
// produces while a unit compiles, and the codec for reading it back.
// One capture file holds the lifecycle notifications of exactly one
// compilation unit, in the order the host delivered them.
package capture

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/qmmzzdx/gperf-gcc-tracing/internal/tracking"
)

// Current schema version - increment when the stream format changes.
const schemaVersion uint16 = 1

// ErrSchemaMismatch reports a capture written by an incompatible shim.
var ErrSchemaMismatch = errors.New("capture schema mismatch")

// Kind identifies a lifecycle notification.
type Kind uint8

const (
	// KindFileEnter reports entry into an included file.
	KindFileEnter Kind = iota + 1
	// KindFileLeave reports leaving the innermost included file.
	KindFileLeave
	// KindDeclFinished marks a finished declaration; any open
	// inclusions are force-closed at this point.
	KindDeclFinished
	// KindStageBegin reports the start of a transformation stage.
	KindStageBegin
	// KindFunctionParsed reports a completed function parse.
	KindFunctionParsed
	// KindRunFinished terminates the stream.
	KindRunFinished
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindFileEnter:
		return "file-enter"
	case KindFileLeave:
		return "file-leave"
	case KindDeclFinished:
		return "decl-finished"
	case KindStageBegin:
		return "stage-begin"
	case KindFunctionParsed:
		return "function-parsed"
	case KindRunFinished:
		return "run-finished"
	default:
		return "unknown"
	}
}

// Notification is one recorded host callback. Only the fields relevant
// to the Kind are populated.
type Notification struct {
	Kind Kind
	At   int64 // nanoseconds since the run epoch

	// KindFileEnter and KindFunctionParsed (the defining file)
	Path string
	// KindFileEnter only
	Dir string // include-directory hint, may be empty

	// KindStageBegin
	Label    string
	Category uint8
	Order    int32

	// KindFunctionParsed
	Signature     string
	Scope         string // empty when the function has no scope
	ScopeCategory uint8
}

// header leads every capture stream.
type header struct {
	Magic      string
	Schema     uint16
	EpochMicro int64 // run epoch, microseconds since the Unix epoch
	Pid        int32 // the observed compiler process
}

const magic = "gperf-capture"

// Writer encodes a notification stream. The shim side of the codec.
type Writer struct {
	enc *msgpack.Encoder
}

// NewWriter writes the stream header and returns a Writer.
func NewWriter(w io.Writer, epochMicro int64, pid int32) (*Writer, error) {
	enc := msgpack.NewEncoder(w)
	h := header{Magic: magic, Schema: schemaVersion, EpochMicro: epochMicro, Pid: pid}
	if err := enc.Encode(&h); err != nil {
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	return &Writer{enc: enc}, nil
}

// Write appends one notification.
func (w *Writer) Write(n *Notification) error {
	if err := w.enc.Encode(n); err != nil {
		return fmt.Errorf("write %s notification: %w", n.Kind, err)
	}
	return nil
}

// Reader decodes a notification stream.
type Reader struct {
	dec        *msgpack.Decoder
	epochMicro int64
	pid        int32
}

// NewReader validates the stream header and returns a Reader.
func NewReader(r io.Reader) (*Reader, error) {
	dec := msgpack.NewDecoder(r)
	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}
	if h.Magic != magic {
		return nil, fmt.Errorf("not a gperf capture stream (magic %q)", h.Magic)
	}
	if h.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: stream has v%d, this build reads v%d",
			ErrSchemaMismatch, h.Schema, schemaVersion)
	}
	return &Reader{dec: dec, epochMicro: h.EpochMicro, pid: h.Pid}, nil
}

// EpochMicros returns the recorded run epoch.
func (r *Reader) EpochMicros() int64 {
	return r.epochMicro
}

// Pid returns the recorded compiler process id.
func (r *Reader) Pid() int {
	return int(r.pid)
}

// Next returns the next notification, or io.EOF at end of stream.
func (r *Reader) Next() (*Notification, error) {
	var n Notification
	if err := r.dec.Decode(&n); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read notification: %w", err)
	}
	return &n, nil
}

// category converts a recorded category byte, mapping out-of-range
// values from damaged or newer streams to the unknown bucket.
func category(v uint8) tracking.Category {
	c := tracking.Category(v)
	if c > tracking.CategoryUnknown {
		return tracking.CategoryUnknown
	}
	return c
}
