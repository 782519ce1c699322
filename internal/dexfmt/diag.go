// Package dexfmt provides the code-unit stream, shared diagnostics and
// parsing options used by the dex instruction codec.
package dexfmt

import "fmt"

// DiagKind classifies a diagnostic message.
type DiagKind string

const (
	DiagTruncated  DiagKind = "truncated"
	DiagInvalid    DiagKind = "invalid"
	DiagUnknownOp  DiagKind = "unknown_opcode"
	DiagOverflow   DiagKind = "overflow"
	DiagMisaligned DiagKind = "misaligned"
)

// Diag records a non-fatal issue encountered during decoding.
type Diag struct {
	Offset uint64   `json:"offset"`
	Kind   DiagKind `json:"kind"`
	Msg    string   `json:"msg"`
}

func (d Diag) String() string {
	return fmt.Sprintf("[%s] 0x%x: %s", d.Kind, d.Offset, d.Msg)
}

// Diags accumulates diagnostics.
type Diags struct {
	items []Diag
}

func (d *Diags) Add(offset uint64, kind DiagKind, msg string) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Msg: msg})
}

func (d *Diags) Addf(offset uint64, kind DiagKind, format string, args ...any) {
	d.items = append(d.items, Diag{Offset: offset, Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

func (d *Diags) Items() []Diag { return d.items }
func (d *Diags) Len() int      { return len(d.items) }

// Mode controls error handling behavior.
type Mode int

const (
	ModeStrict     Mode = iota // first structural error returns error
	ModeBestEffort             // unknown opcodes pass through as opaque units, accumulate diags
)

// Options controls decoding behavior across packages.
type Options struct {
	Mode     Mode
	MaxSteps int    // global loop cap; 0 = use default
	MaxBytes int    // input size cap; 0 = unlimited
	Diags    *Diags // optional sink for best-effort diagnostics
}

// DefaultMaxSteps is the global default loop cap.
const DefaultMaxSteps = 10_000_000

func (o Options) EffectiveMaxSteps() int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return DefaultMaxSteps
}

// Note records a diagnostic if a sink is configured.
func (o Options) Note(offset uint64, kind DiagKind, format string, args ...any) {
	if o.Diags != nil {
		o.Diags.Addf(offset, kind, format, args...)
	}
}
