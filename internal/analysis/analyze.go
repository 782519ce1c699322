package analysis

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"dexkit/internal/builder"
	"dexkit/internal/opcode"
)

// MethodInfo is the signature the entry state is seeded from. Parameters
// occupy the last registers of the frame, preceded by this for instance
// methods.
type MethodInfo struct {
	Class  string
	Name   string
	Params []string
	Return string
	Static bool
}

func (mi MethodInfo) IsConstructor() bool { return mi.Name == "<init>" }

func (mi MethodInfo) String() string {
	return mi.Class + "->" + mi.Name + "(" + strings.Join(mi.Params, "") + ")" + mi.Return
}

// ParameterRegisters counts the registers taken by this and the parameters.
func (mi MethodInfo) ParameterRegisters() int {
	n := 0
	if !mi.Static {
		n++
	}
	for _, p := range mi.Params {
		n++
		if isWideDescriptor(p) {
			n++
		}
	}
	return n
}

// Options bounds and instruments an analysis run.
type Options struct {
	// MaxVisits caps instruction visits; 0 means
	// instructions*(registers+1)*16+64.
	MaxVisits int
	// Workers limits AnalyzeAll concurrency; 0 means unlimited.
	Workers int
	Logger  *zerolog.Logger
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

// AnalyzedInstruction holds the inferred state around one instruction.
// Pre and Post are nil for dead instructions and for payloads, which are
// data and never executed.
type AnalyzedInstruction struct {
	Index        int
	Address      int
	Instruction  *builder.Instruction
	Pre          []RegisterType
	Post         []RegisterType
	Successors   []int
	Predecessors []int
	Dead         bool
}

// Payload reports whether the instruction is a switch or array table.
func (a *AnalyzedInstruction) Payload() bool {
	return a.Instruction.Format().IsPayload()
}

// Result is the outcome of one successful analysis.
type Result struct {
	Method       MethodInfo
	Registers    int
	Instructions []*AnalyzedInstruction
	Visits       int
}

// TypeBefore returns the type of reg on entry to instruction index. The
// second result is false for dead or payload instructions and bad indices.
func (r *Result) TypeBefore(index, reg int) (RegisterType, bool) {
	return r.typeAt(index, reg, false)
}

// TypeAfter is TypeBefore for the state the instruction leaves behind on
// its normal edges, before any branch narrowing.
func (r *Result) TypeAfter(index, reg int) (RegisterType, bool) {
	return r.typeAt(index, reg, true)
}

func (r *Result) typeAt(index, reg int, post bool) (RegisterType, bool) {
	if index < 0 || index >= len(r.Instructions) || reg < 0 || reg >= r.Registers {
		return RegisterType{}, false
	}
	state := r.Instructions[index].Pre
	if post {
		state = r.Instructions[index].Post
	}
	if state == nil {
		return RegisterType{}, false
	}
	return state[reg], true
}

// Dead returns the indices of unreachable instructions.
func (r *Result) Dead() []int {
	var out []int
	for _, a := range r.Instructions {
		if a.Dead {
			out = append(out, a.Index)
		}
	}
	return out
}

type edgeKind uint8

const (
	edgeFall edgeKind = iota
	edgeBranch
	edgeSwitch
	edgeException
)

type edge struct {
	to   int
	kind edgeKind
}

type analyzer struct {
	m      *builder.MethodImplementation
	method MethodInfo
	cp     ClassPath
	log    *zerolog.Logger
	regs   int
	insns  []*AnalyzedInstruction
	edges  [][]edge
	// catches maps a handler index to the exception types routed to it;
	// "" is catch-all.
	catches map[int][]string
}

// Analyze infers register types for every instruction of m. An unresolved
// method is resolved first so that addresses are available. Failures are
// returned as *Error.
func Analyze(m *builder.MethodImplementation, method MethodInfo, cp ClassPath, opts Options) (*Result, error) {
	if !m.Resolved() {
		if _, err := m.Resolve(nil, builder.ResolveOptions{Logger: opts.Logger}); err != nil {
			return nil, &Error{Method: method.String(), Index: -1, Err: err}
		}
	}
	a := &analyzer{
		m:       m,
		method:  method,
		cp:      cp,
		log:     opts.logger(),
		regs:    m.RegisterCount(),
		catches: make(map[int][]string),
	}
	if method.ParameterRegisters() > a.regs {
		return nil, a.fail(-1, fmt.Errorf("%w: %d parameter registers, frame of %d", ErrSignature, method.ParameterRegisters(), a.regs))
	}
	a.buildGraph()

	res := &Result{Method: method, Registers: a.regs, Instructions: a.insns}
	if len(a.insns) == 0 {
		return res, nil
	}
	maxVisits := opts.MaxVisits
	if maxVisits <= 0 {
		maxVisits = len(a.insns)*(a.regs+1)*16 + 64
	}
	visits, err := a.run(maxVisits)
	res.Visits = visits
	if err != nil {
		return nil, err
	}
	for _, ai := range a.insns {
		ai.Dead = ai.Pre == nil && !ai.Payload()
	}
	a.log.Debug().
		Str("method", method.String()).
		Int("instructions", len(a.insns)).
		Int("visits", visits).
		Int("dead", len(res.Dead())).
		Msg("analysis done")
	return res, nil
}

func (a *analyzer) fail(index int, err error) *Error {
	return &Error{Method: a.method.String(), Index: index, Err: err}
}

func (a *analyzer) buildGraph() {
	locs := a.m.Instructions()
	a.insns = make([]*AnalyzedInstruction, len(locs))
	a.edges = make([][]edge, len(locs))
	for n, loc := range locs {
		addr, _ := loc.Address()
		a.insns[n] = &AnalyzedInstruction{Index: n, Address: addr, Instruction: loc.Instruction()}
	}
	tries := a.m.Tries()
	for _, t := range tries {
		for _, h := range t.Handlers {
			a.catches[h.Handler.Index()] = append(a.catches[h.Handler.Index()], h.Type)
		}
	}
	for n, ai := range a.insns {
		info := opcode.MustLookup(ai.Instruction.Op)
		if info.Kind == opcode.KindPayload {
			continue
		}
		var out []edge
		add := func(to int, kind edgeKind) {
			if to < 0 || to >= len(a.insns) || a.insns[to].Payload() {
				return
			}
			for _, e := range out {
				if e.to == to && e.kind == kind {
					return
				}
			}
			out = append(out, edge{to: to, kind: kind})
		}
		ins := ai.Instruction
		switch info.Kind {
		case opcode.KindGoto, opcode.KindIf, opcode.KindIfZ:
			add(ins.Target.Index(), edgeBranch)
		case opcode.KindSwitch:
			if p := ins.Target.Location().Instruction(); p != nil {
				for _, l := range p.Targets {
					add(l.Index(), edgeSwitch)
				}
			}
		}
		if info.Has(opcode.CanContinue) {
			add(n+1, edgeFall)
		}
		if info.Has(opcode.CanThrow) {
			for _, t := range tries {
				if n < t.Start.Index() || n >= t.End.Index() {
					continue
				}
				for _, h := range t.Handlers {
					add(h.Handler.Index(), edgeException)
					if h.CatchAll() {
						break
					}
				}
			}
		}
		a.edges[n] = out
		for _, e := range out {
			if !slices.Contains(ai.Successors, e.to) {
				ai.Successors = append(ai.Successors, e.to)
			}
		}
	}
	for n, ai := range a.insns {
		for _, s := range ai.Successors {
			a.insns[s].Predecessors = append(a.insns[s].Predecessors, n)
		}
	}
}

// entryState seeds parameters into the last registers of the frame.
func (a *analyzer) entryState() []RegisterType {
	state := make([]RegisterType, a.regs)
	for r := range state {
		state[r] = UninitType
	}
	r := a.regs - a.method.ParameterRegisters()
	if !a.method.Static {
		if a.method.IsConstructor() {
			state[r] = RegisterType{Category: UninitThis, Type: a.method.Class}
		} else {
			state[r] = Ref(a.method.Class)
		}
		r++
	}
	for _, p := range a.method.Params {
		lo, hi := FromDescriptor(p)
		state[r] = lo
		r++
		if isWideDescriptor(p) {
			state[r] = hi
			r++
		}
	}
	return state
}

// run is the worklist loop. Each visit recomputes the instruction's
// outgoing state and merges it into every successor; a successor whose
// incoming state changed is queued again.
func (a *analyzer) run(maxVisits int) (int, error) {
	a.insns[0].Pre = a.entryState()
	queue := []int{0}
	inQueue := make([]bool, len(a.insns))
	inQueue[0] = true
	visits := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		inQueue[n] = false
		visits++
		if visits > maxVisits {
			return visits, a.fail(n, fmt.Errorf("%w: %d visits", ErrNoFixedPoint, maxVisits))
		}
		ai := a.insns[n]
		post, err := a.transfer(n, ai.Pre)
		if err != nil {
			return visits, a.fail(n, err)
		}
		ai.Post = post
		a.log.Trace().Int("index", n).Int("visit", visits).Msg("visit")

		narrowKind, narrowed := a.narrowing(n, post)
		for _, e := range a.edges[n] {
			state := post
			switch {
			case e.kind == edgeException:
				state = ai.Pre
			case narrowed != nil && e.kind == narrowKind:
				state = narrowed
			}
			changed, err := a.mergeInto(e.to, state)
			if err != nil {
				return visits, a.fail(e.to, err)
			}
			if changed && !inQueue[e.to] {
				inQueue[e.to] = true
				queue = append(queue, e.to)
			}
		}
	}
	return visits, nil
}

func (a *analyzer) mergeInto(to int, state []RegisterType) (bool, error) {
	dst := a.insns[to]
	if dst.Pre == nil {
		dst.Pre = slices.Clone(state)
		return true, nil
	}
	changed := false
	for r := range dst.Pre {
		t, err := Merge(dst.Pre[r], state[r], a.cp)
		if err != nil {
			return false, fmt.Errorf("v%d: %w", r, err)
		}
		if t != dst.Pre[r] {
			dst.Pre[r] = t
			changed = true
		}
	}
	return changed, nil
}
