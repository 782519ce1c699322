package ref

import (
	"errors"
	"fmt"
	"strings"
)

var ErrSyntax = errors.New("ref: malformed reference")

// SplitDescriptors splits concatenated type descriptors such as
// "ILjava/lang/String;[J" into their parts.
func SplitDescriptors(s string) ([]string, error) {
	var out []string
	for len(s) > 0 {
		n, err := descriptorLen(s)
		if err != nil {
			return nil, err
		}
		out = append(out, s[:n])
		s = s[n:]
	}
	return out, nil
}

func descriptorLen(s string) (int, error) {
	dims := 0
	for dims < len(s) && s[dims] == '[' {
		dims++
	}
	if dims == len(s) {
		return 0, fmt.Errorf("%w: descriptor %q", ErrSyntax, s)
	}
	switch s[dims] {
	case 'Z', 'B', 'S', 'C', 'I', 'J', 'F', 'D':
		return dims + 1, nil
	case 'V':
		if dims > 0 {
			return 0, fmt.Errorf("%w: array of void", ErrSyntax)
		}
		return 1, nil
	case 'L':
		end := strings.IndexByte(s[dims:], ';')
		if end < 2 {
			return 0, fmt.Errorf("%w: descriptor %q", ErrSyntax, s)
		}
		return dims + end + 1, nil
	}
	return 0, fmt.Errorf("%w: descriptor %q", ErrSyntax, s)
}

// ParseProto parses "(<params>)<return>".
func ParseProto(s string) (Proto, error) {
	if !strings.HasPrefix(s, "(") {
		return Proto{}, fmt.Errorf("%w: proto %q", ErrSyntax, s)
	}
	params, ret, ok := strings.Cut(s[1:], ")")
	if !ok {
		return Proto{}, fmt.Errorf("%w: proto %q", ErrSyntax, s)
	}
	ps, err := SplitDescriptors(params)
	if err != nil {
		return Proto{}, err
	}
	if n, err := descriptorLen(ret); err != nil || n != len(ret) {
		return Proto{}, fmt.Errorf("%w: return type in %q", ErrSyntax, s)
	}
	return Proto{Params: ps, Return: ret}, nil
}

// ParseMethod parses the form Method.String produces, "C->name(P)R".
func ParseMethod(s string) (Method, error) {
	class, rest, ok := strings.Cut(s, "->")
	if !ok || class == "" {
		return Method{}, fmt.Errorf("%w: method %q", ErrSyntax, s)
	}
	i := strings.IndexByte(rest, '(')
	if i < 1 {
		return Method{}, fmt.Errorf("%w: method %q", ErrSyntax, s)
	}
	p, err := ParseProto(rest[i:])
	if err != nil {
		return Method{}, err
	}
	return Method{Class: class, Name: rest[:i], Params: p.Params, Return: p.Return}, nil
}

// ParseField parses "C->name:T".
func ParseField(s string) (Field, error) {
	class, rest, ok := strings.Cut(s, "->")
	if !ok || class == "" {
		return Field{}, fmt.Errorf("%w: field %q", ErrSyntax, s)
	}
	name, typ, ok := strings.Cut(rest, ":")
	if !ok || name == "" {
		return Field{}, fmt.Errorf("%w: field %q", ErrSyntax, s)
	}
	if n, err := descriptorLen(typ); err != nil || n != len(typ) {
		return Field{}, fmt.Errorf("%w: field type in %q", ErrSyntax, s)
	}
	return Field{Class: class, Name: name, Type: typ}, nil
}
