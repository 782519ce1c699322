package builder

import (
	"fmt"
	"slices"
)

// ExceptionHandler routes exceptions of Type to Handler. An empty Type
// catches everything.
type ExceptionHandler struct {
	Type    string
	Handler Label
}

func (h ExceptionHandler) CatchAll() bool { return h.Type == "" }

// TryBlock covers [Start, End). Handlers are tried in order.
type TryBlock struct {
	Start    Label
	End      Label
	Handlers []ExceptionHandler
}

// AddCatch adds a handler for excType over [start, end). Handlers added
// for the same pair of labels accumulate on one block in call order.
func (m *MethodImplementation) AddCatch(excType string, start, end, handler Label) error {
	if excType == "" {
		return fmt.Errorf("builder: empty exception type, use AddCatchAll")
	}
	return m.addHandler(ExceptionHandler{Type: excType, Handler: handler}, start, end)
}

// AddCatchAll adds a catch-all handler over [start, end).
func (m *MethodImplementation) AddCatchAll(start, end, handler Label) error {
	return m.addHandler(ExceptionHandler{Handler: handler}, start, end)
}

func (m *MethodImplementation) addHandler(h ExceptionHandler, start, end Label) error {
	for _, l := range []Label{start, end, h.Handler} {
		if _, err := m.locationOf(l); err != nil {
			return fmt.Errorf("builder: try block: %w", err)
		}
	}
	for n := range m.tries {
		t := &m.tries[n]
		if t.Start == start && t.End == end {
			t.Handlers = append(t.Handlers, h)
			return nil
		}
	}
	m.tries = append(m.tries, TryBlock{Start: start, End: end, Handlers: []ExceptionHandler{h}})
	return nil
}

// Tries returns the try blocks in the order they were added.
func (m *MethodImplementation) Tries() []TryBlock {
	out := make([]TryBlock, len(m.tries))
	for n, t := range m.tries {
		t.Handlers = slices.Clone(t.Handlers)
		out[n] = t
	}
	return out
}

// TryItem is an encoded try range. Count is in code units.
type TryItem struct {
	Start    int
	Count    int
	Handlers []HandlerItem
}

// HandlerItem is an encoded handler; an empty Type is the catch-all.
type HandlerItem struct {
	Type    string
	Address int
}

const maxTryCount = 0xffff

// tryItems flattens possibly overlapping try blocks into disjoint ranges.
// Each range gets the handlers of every block covering it, in block order,
// first handler per type winning; a catch-all ends the list. Requires
// resolved addresses.
func (m *MethodImplementation) tryItems() []TryItem {
	type span struct {
		start, end int
		handlers   []HandlerItem
	}
	var spans []span
	var bounds []int
	for _, t := range m.tries {
		s, _ := t.Start.Address()
		e, _ := t.End.Address()
		if s >= e {
			continue
		}
		hs := make([]HandlerItem, len(t.Handlers))
		for n, h := range t.Handlers {
			a, _ := h.Handler.Address()
			hs[n] = HandlerItem{Type: h.Type, Address: a}
		}
		spans = append(spans, span{s, e, hs})
		bounds = append(bounds, s, e)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	var out []TryItem
	for k := 0; k+1 < len(bounds); k++ {
		a, b := bounds[k], bounds[k+1]
		var hs []HandlerItem
		seen := make(map[string]bool)
	spanLoop:
		for _, s := range spans {
			if s.start > a || s.end < b {
				continue
			}
			for _, h := range s.handlers {
				if seen[h.Type] {
					continue
				}
				seen[h.Type] = true
				hs = append(hs, h)
				if h.Type == "" {
					break spanLoop
				}
			}
		}
		if len(hs) == 0 {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Start+out[n-1].Count == a && slices.Equal(out[n-1].Handlers, hs) {
			out[n-1].Count += b - a
			continue
		}
		out = append(out, TryItem{Start: a, Count: b - a, Handlers: hs})
	}

	// insn_count is 16 bits wide
	var split []TryItem
	for _, t := range out {
		for t.Count > maxTryCount {
			split = append(split, TryItem{Start: t.Start, Count: maxTryCount, Handlers: t.Handlers})
			t.Start += maxTryCount
			t.Count -= maxTryCount
		}
		split = append(split, t)
	}
	return split
}
