package builder

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// ResolveOptions bounds and instruments offset resolution.
type ResolveOptions struct {
	// MaxPasses caps the sizing passes; 0 means twice the instruction count
	// plus two, enough for every goto to widen twice.
	MaxPasses int
	Logger    *zerolog.Logger
}

func (o ResolveOptions) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// Layout summarizes a successful resolution.
type Layout struct {
	CodeUnits int
	Passes    int
	Widened   int // instructions widened across all passes
	Padding   int // alignment nops in front of payloads
}

// Resolve assigns an address to every location. Each pass sizes all
// instructions, lays them out and widens any goto whose offset no longer
// fits and any const-string whose index needs the jumbo form; it stops
// once a pass widens nothing. Widening never reverses, so the loop is
// bounded by the number of widenable instructions.
//
// strings maps string constants to pool indices; with a nil indexer only
// ref.Index operands can trigger jumbo promotion. All consistency defects
// are returned together as a multierror.
func (m *MethodImplementation) Resolve(strings ref.StringIndexer, opts ResolveOptions) (*Layout, error) {
	log := opts.logger()
	m.invalidate()
	if err := m.check(); err != nil {
		return nil, err
	}

	maxPasses := opts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = 2*m.Len() + 2
	}
	lay := &Layout{}
	for lay.Passes < maxPasses {
		lay.Passes++
		m.assignAddresses(lay)
		widened, err := m.widen(strings, log)
		if err != nil {
			return nil, err
		}
		if widened == 0 {
			m.resolved = true
			m.codeUnits = lay.CodeUnits
			log.Debug().
				Int("passes", lay.Passes).
				Int("code_units", lay.CodeUnits).
				Int("widened", lay.Widened).
				Msg("offsets resolved")
			return lay, nil
		}
		lay.Widened += widened
		log.Trace().Int("pass", lay.Passes).Int("widened", widened).Msg("resolve pass")
	}
	return nil, fmt.Errorf("%w after %d passes", ErrNoFixedPoint, maxPasses)
}

func (m *MethodImplementation) assignAddresses(lay *Layout) {
	addr, pad := 0, 0
	for _, h := range m.order {
		loc := &m.locs[h]
		if loc.insn != nil && loc.insn.Format().IsPayload() && addr%2 != 0 {
			addr++
			pad++
		}
		loc.address = addr
		if loc.insn != nil {
			addr += loc.insn.CodeUnits()
		}
	}
	lay.CodeUnits = addr
	lay.Padding = pad
}

// widen runs one pass of range checks over the current layout.
func (m *MethodImplementation) widen(strings ref.StringIndexer, log *zerolog.Logger) (int, error) {
	var errs *multierror.Error
	widened := 0
	for idx, h := range m.order[:m.Len()] {
		loc := &m.locs[h]
		i := loc.insn
		f := i.Format()
		switch {
		case f.HasBranch():
			target := m.locs[m.labels[i.Target.id]].address
			off := int64(target - loc.address)
			if branchFits(i.Op, off) {
				continue
			}
			if !isGoto(i.Op) {
				errs = multierror.Append(errs, &ConsistencyError{Index: idx,
					Detail: fmt.Sprintf("%v offset %d does not fit %v", i.Op, off, f)})
				continue
			}
			from := i.Op
			for !branchFits(i.Op, off) {
				wider, ok := opcode.Widen(i.Op)
				if !ok {
					break
				}
				i.Op = wider
			}
			widened++
			log.Trace().Int("index", idx).Stringer("from", from).Stringer("to", i.Op).Int64("offset", off).Msg("widen branch")
		case i.Op == opcode.ConstString:
			n, ok, err := stringIndex(strings, i.Ref)
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("builder: instruction %d: %w", idx, err))
				continue
			}
			if ok && n > 0xffff {
				i.Op = opcode.ConstStringJumbo
				widened++
				log.Trace().Int("index", idx).Uint32("string", n).Msg("promote to jumbo")
			}
		}
	}
	return widened, errs.ErrorOrNil()
}

func isGoto(op opcode.Opcode) bool {
	return op == opcode.Goto || op == opcode.Goto16 || op == opcode.Goto32
}

// branchFits reports whether off fits op's format. Only goto/32 may
// branch to itself.
func branchFits(op opcode.Opcode, off int64) bool {
	lo, hi := op.Format().BranchRange()
	if off < lo || off > hi {
		return false
	}
	return off != 0 || !(op == opcode.Goto || op == opcode.Goto16)
}

func stringIndex(strings ref.StringIndexer, r ref.Reference) (uint32, bool, error) {
	switch r := r.(type) {
	case ref.Index:
		return r.Value, true, nil
	case ref.String:
		if strings == nil {
			return 0, false, nil
		}
		n, ok := strings.StringIndex(string(r))
		if !ok {
			return 0, false, fmt.Errorf("%w: %v", ErrMissingString, r)
		}
		return n, true, nil
	}
	return 0, false, fmt.Errorf("builder: const-string operand %v is not a string", r)
}

// check reports label and try defects that no amount of widening fixes.
func (m *MethodImplementation) check() error {
	var errs *multierror.Error
	bad := func(idx int, format string, args ...any) {
		errs = multierror.Append(errs, &ConsistencyError{Index: idx, Detail: fmt.Sprintf(format, args...)})
	}

	referenced := make(map[int]bool)
	for idx, h := range m.order[:m.Len()] {
		i := m.locs[h].insn
		if i.Format().HasBranch() {
			loc, err := m.locationOf(i.Target)
			if err != nil {
				bad(idx, "%v target: %v", i.Op, err)
				continue
			}
			target := loc.Instruction()
			if want, ok := payloadFor(i.Op); ok {
				if target == nil || target.Op != want {
					bad(idx, "%v must point at a %v", i.Op, want)
					continue
				}
				referenced[loc.h] = true
			} else if target != nil && target.Format().IsPayload() {
				bad(idx, "%v branches into %v", i.Op, target.Op)
			}
		}
		for n, t := range i.Targets {
			if _, err := m.locationOf(t); err != nil {
				bad(idx, "case %d: %v", n, err)
			}
		}
	}
	for idx, h := range m.order[:m.Len()] {
		if isSwitchPayload(m.locs[h].insn.Op) && !referenced[h] {
			bad(idx, "%v is not referenced by a switch", m.locs[h].insn.Op)
		}
	}

	for n, t := range m.tries {
		start, err1 := m.locationOf(t.Start)
		end, err2 := m.locationOf(t.End)
		if err1 != nil || err2 != nil {
			bad(-1, "try block %d: start %v, end %v", n, err1, err2)
			continue
		}
		if end.Index() < start.Index() {
			bad(-1, "try block %d ends at instruction %d before it starts at %d", n, end.Index(), start.Index())
		}
		for k, h := range t.Handlers {
			if loc, err := m.locationOf(h.Handler); err != nil {
				bad(-1, "try block %d handler %d: %v", n, k, err)
			} else if loc.IsEnd() {
				bad(-1, "try block %d handler %d points past the last instruction", n, k)
			}
		}
	}
	return errs.ErrorOrNil()
}

// switchAddresses maps each switch payload location to the address of the
// switch that references it. Switch targets are relative to that address.
func (m *MethodImplementation) switchAddresses() map[int]int {
	at := make(map[int]int)
	for _, h := range m.order[:m.Len()] {
		i := m.locs[h].insn
		if i.Op != opcode.PackedSwitch && i.Op != opcode.SparseSwitch {
			continue
		}
		p := m.labels[i.Target.id]
		if _, ok := at[p]; !ok {
			at[p] = m.locs[h].address
		}
	}
	return at
}
