// Package output writes dexkit results to files: JSON and CBOR dumps,
// JSONL record streams, listings, DOT graphs and raw code blobs.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"dexkit/internal/disasm"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("output: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return f.Close()
}

// WriteCBOR writes v to path in canonical CBOR. Struct fields use their
// json tags as keys.
func WriteCBOR(path string, v any) error {
	data, err := cborEncMode.Marshal(v)
	if err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return writeFile(path, data)
}

// ReadCBOR decodes the CBOR file at path into v.
func ReadCBOR(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("output: decode %s: %w", path, err)
	}
	return nil
}

// JSONL writes one JSON record per line.
type JSONL struct {
	path string
	f    *os.File
	enc  *json.Encoder
	n    int
}

// CreateJSONL creates (or truncates) a JSONL file at path.
func CreateJSONL(path string) (*JSONL, error) {
	f, err := create(path)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONL{path: path, f: f, enc: enc}, nil
}

func (w *JSONL) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return fmt.Errorf("output: write %s: %w", filepath.Base(w.path), err)
	}
	w.n++
	return nil
}

// Count returns the number of records written so far.
func (w *JSONL) Count() int { return w.n }

func (w *JSONL) Close() error { return w.f.Close() }

// WriteAll writes every record of recs to w.
func WriteAll[T any](w *JSONL, recs []T) error {
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSONL reads every record of a JSONL file. On a malformed line the
// records read so far are returned with the error.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeJSONL[T](f)
}

// DecodeJSONL is ReadJSONL over a reader.
func DecodeJSONL[T any](r io.Reader) ([]T, error) {
	var records []T
	dec := json.NewDecoder(r)
	for dec.More() {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			return records, fmt.Errorf("line %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteListing writes a disassembly to listing/<name>.txt.
// name may contain path separators for directory grouping.
func WriteListing(dir, name string, insts []disasm.Inst, lookup disasm.LabelLookup, annotators ...disasm.Annotator) error {
	path := filepath.Join(dir, "listing", name+".txt")
	return writeFile(path, []byte(disasm.Format(insts, lookup, annotators...)))
}

// WriteCode writes an encoded code array to code/<name>.bin.
func WriteCode(dir, name string, code []byte) error {
	return writeFile(filepath.Join(dir, "code", name+".bin"), code)
}

// WriteDOT writes a Graphviz document to <sub>/<name>.dot.
func WriteDOT(dir, sub, name, dot string) error {
	return writeFile(filepath.Join(dir, sub, name+".dot"), []byte(dot))
}

// SanitizeFilename makes a string safe for use as a filename.
func SanitizeFilename(name string) string {
	r := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
		";", "",
	)
	s := r.Replace(name)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// MethodPath returns a relative path like "foo.Bar/run(I)V" for a method
// signature, grouping methods by class. Signatures without an owner map to
// a single file name.
func MethodPath(sig string) string {
	owner, rest, ok := strings.Cut(sig, "->")
	if !ok {
		return SanitizeFilename(sig)
	}
	if len(owner) > 2 && owner[0] == 'L' && owner[len(owner)-1] == ';' {
		owner = strings.ReplaceAll(owner[1:len(owner)-1], "/", ".")
	}
	return SanitizeFilename(owner) + "/" + SanitizeFilename(rest)
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("output: mkdir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: create %s: %w", path, err)
	}
	return f, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, data, 0644)
}
