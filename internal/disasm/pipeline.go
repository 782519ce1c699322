package disasm

import (
	"fmt"

	"dexkit/internal/analysis"
)

// FuncRecord is one line in methods.jsonl.
type FuncRecord struct {
	Name         string `json:"name"`
	Owner        string `json:"owner,omitempty"`
	Registers    int    `json:"registers"`
	CodeUnits    int    `json:"code_units"`
	Instructions int    `json:"instructions"`
	Blocks       int    `json:"blocks"`
	Dead         []int  `json:"dead,omitempty"`
	Visits       int    `json:"visits,omitempty"`
	Error        string `json:"error,omitempty"`
}

// CallEdgeRecord is one line in call_edges.jsonl.
type CallEdgeRecord struct {
	FromFunc string   `json:"from_func"`
	FromAddr string   `json:"from_addr"`
	Kind     string   `json:"kind"`
	Target   string   `json:"target"`
	Via      []string `json:"via,omitempty"`
}

// StringRefRecord is one line in string_refs.jsonl.
type StringRefRecord struct {
	Func  string `json:"func"`
	Addr  string `json:"addr"`
	Reg   int    `json:"reg"`
	Value string `json:"value"` // raw string value (unquoted)
}

// TypeRecord is the register state in front of one instruction.
type TypeRecord struct {
	Func  string   `json:"func"`
	Index int      `json:"index"`
	Addr  string   `json:"addr"`
	Text  string   `json:"text"`
	Dead  bool     `json:"dead,omitempty"`
	Pre   []string `json:"pre,omitempty"`
	Post  []string `json:"post,omitempty"`
}

func hexAddr(addr int) string { return fmt.Sprintf("0x%04x", addr) }

// EdgeRecords converts call edges for output.
func EdgeRecords(fn string, edges []CallEdge) []CallEdgeRecord {
	out := make([]CallEdgeRecord, len(edges))
	for n, e := range edges {
		out[n] = CallEdgeRecord{FromFunc: fn, FromAddr: hexAddr(e.FromAddr), Kind: e.Kind, Target: e.Target, Via: e.Via}
	}
	return out
}

// StringRecords converts const-string sites for output.
func StringRecords(fn string, refs []StringRef) []StringRefRecord {
	out := make([]StringRefRecord, len(refs))
	for n, r := range refs {
		out[n] = StringRefRecord{Func: fn, Addr: hexAddr(r.Addr), Reg: r.Reg, Value: r.Value}
	}
	return out
}

// TypeRecords flattens an analysis result, one record per instruction.
func TypeRecords(fn string, res *analysis.Result) []TypeRecord {
	out := make([]TypeRecord, len(res.Instructions))
	for n, ai := range res.Instructions {
		out[n] = TypeRecord{
			Func:  fn,
			Index: ai.Index,
			Addr:  hexAddr(ai.Address),
			Text:  ai.Instruction.String(),
			Dead:  ai.Dead,
			Pre:   typeStrings(ai.Pre),
			Post:  typeStrings(ai.Post),
		}
	}
	return out
}

func typeStrings(state []analysis.RegisterType) []string {
	if state == nil {
		return nil
	}
	out := make([]string, len(state))
	for n, t := range state {
		out[n] = t.String()
	}
	return out
}
