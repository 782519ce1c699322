// Package render produces Graphviz DOT and terminal listings from dexkit
// method records and graphs.
package render

import (
	"fmt"
	"strings"
)

// dotEscape escapes a string for use in DOT HTML labels.
func dotEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// dotID creates a safe DOT identifier from a method or class name.
func dotID(name string) string {
	var b strings.Builder
	b.WriteString("n_")
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			b.WriteRune(c)
		} else {
			fmt.Fprintf(&b, "_%04x", c)
		}
	}
	return b.String()
}

// ownerOf returns the class descriptor of a method signature.
// "Lfoo/A;->run()V" → "Lfoo/A;". Returns "" when there is no "->".
func ownerOf(sig string) string {
	owner, _, ok := strings.Cut(sig, "->")
	if !ok {
		return ""
	}
	return owner
}

// stripOwner removes the class prefix from a method signature.
// "Lfoo/A;->run()V" → "run()V".
func stripOwner(sig string) string {
	if _, rest, ok := strings.Cut(sig, "->"); ok {
		return rest
	}
	return sig
}

// javaName turns a class descriptor into dotted source form.
// "Lfoo/bar/Baz;" → "foo.bar.Baz", "[I" stays as is.
func javaName(desc string) string {
	if len(desc) < 2 || desc[0] != 'L' || desc[len(desc)-1] != ';' {
		return desc
	}
	return strings.ReplaceAll(desc[1:len(desc)-1], "/", ".")
}

// truncLabel shortens a label to maxLen, appending "..." if truncated.
func truncLabel(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// header writes the graph preamble shared by every renderer.
func header(b *strings.Builder, name, rankdir, title string, t Theme) {
	fmt.Fprintf(b, "digraph %s {\n", name)
	fmt.Fprintf(b, "  rankdir=%s;\n", rankdir)
	fmt.Fprintf(b, "  bgcolor=%q;\n", t.Background)
	if title != "" {
		fmt.Fprintf(b, "  labelloc=t;\n  labeljust=l;\n")
		fmt.Fprintf(b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.TextColor, dotEscape(title))
	}
}
