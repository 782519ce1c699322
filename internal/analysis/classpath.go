package analysis

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	objectType    = "Ljava/lang/Object;"
	throwableType = "Ljava/lang/Throwable;"
	stringType    = "Ljava/lang/String;"
	classType     = "Ljava/lang/Class;"
)

// ClassPath answers hierarchy questions about class descriptors. It is
// shared by concurrent analyses and must be safe for concurrent reads.
type ClassPath interface {
	// CommonSuperclass returns the most specific type both a and b are
	// assignable to.
	CommonSuperclass(a, b string) (string, error)
	// IsAssignable reports whether a value of type from can be stored in a
	// location of type to.
	IsAssignable(to, from string) (bool, error)
}

// Class is one entry of a StaticClassPath. For interfaces Interfaces
// lists the extended interfaces and Super is ignored.
type Class struct {
	Name       string
	Super      string
	Interfaces []string
	Interface  bool
}

// StaticClassPath is a ClassPath over a fixed set of classes. Object,
// Throwable, String and Class are always present; arrays are derived from
// their component type. Add must not race with queries.
type StaticClassPath struct {
	mu      sync.RWMutex
	classes map[string]Class
}

var builtinClasses = []Class{
	{Name: objectType},
	{Name: throwableType, Super: objectType, Interfaces: []string{"Ljava/io/Serializable;"}},
	{Name: stringType, Super: objectType, Interfaces: []string{"Ljava/io/Serializable;", "Ljava/lang/CharSequence;", "Ljava/lang/Comparable;"}},
	{Name: classType, Super: objectType},
	{Name: "Ljava/io/Serializable;", Interface: true},
	{Name: "Ljava/lang/Cloneable;", Interface: true},
	{Name: "Ljava/lang/CharSequence;", Interface: true},
	{Name: "Ljava/lang/Comparable;", Interface: true},
}

func NewStaticClassPath(classes ...Class) *StaticClassPath {
	p := &StaticClassPath{classes: make(map[string]Class, len(builtinClasses)+len(classes))}
	for _, c := range builtinClasses {
		p.classes[c.Name] = c
	}
	for _, c := range classes {
		p.Add(c)
	}
	return p
}

// Add registers or replaces c. A class without a superclass extends Object.
func (p *StaticClassPath) Add(c Class) {
	if !c.Interface && c.Super == "" && c.Name != objectType {
		c.Super = objectType
	}
	p.mu.Lock()
	p.classes[c.Name] = c
	p.mu.Unlock()
}

func (p *StaticClassPath) Lookup(name string) (Class, bool) {
	p.mu.RLock()
	c, ok := p.classes[name]
	p.mu.RUnlock()
	return c, ok
}

func (p *StaticClassPath) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.classes)
}

// Classes returns every registered class sorted by name.
func (p *StaticClassPath) Classes() []Class {
	p.mu.RLock()
	out := make([]Class, 0, len(p.classes))
	for _, c := range p.classes {
		out = append(out, c)
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *StaticClassPath) lookup(name string) (Class, error) {
	c, ok := p.Lookup(name)
	if !ok {
		return Class{}, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	return c, nil
}

// superChain returns name followed by its superclasses up to Object.
func (p *StaticClassPath) superChain(name string) ([]string, error) {
	var chain []string
	for limit := p.Len() + 1; name != ""; limit-- {
		if limit == 0 {
			return nil, fmt.Errorf("analysis: class hierarchy cycle at %s", name)
		}
		c, err := p.lookup(name)
		if err != nil {
			return nil, err
		}
		chain = append(chain, name)
		if c.Interface {
			break
		}
		name = c.Super
	}
	return chain, nil
}

func isArray(t string) bool { return strings.HasPrefix(t, "[") }

func isPrimitiveDescriptor(t string) bool { return len(t) == 1 }

func (p *StaticClassPath) CommonSuperclass(a, b string) (string, error) {
	if a == b {
		return a, nil
	}
	if isArray(a) || isArray(b) {
		return p.commonArray(a, b)
	}
	ca, err := p.lookup(a)
	if err != nil {
		return "", err
	}
	cb, err := p.lookup(b)
	if err != nil {
		return "", err
	}
	if ca.Interface || cb.Interface {
		if ok, err := p.IsAssignable(a, b); err != nil || ok {
			return a, err
		}
		if ok, err := p.IsAssignable(b, a); err != nil || ok {
			return b, err
		}
		return objectType, nil
	}
	chainA, err := p.superChain(a)
	if err != nil {
		return "", err
	}
	chainB, err := p.superChain(b)
	if err != nil {
		return "", err
	}
	onA := make(map[string]bool, len(chainA))
	for _, n := range chainA {
		onA[n] = true
	}
	for _, n := range chainB {
		if onA[n] {
			return n, nil
		}
	}
	return objectType, nil
}

func (p *StaticClassPath) commonArray(a, b string) (string, error) {
	if !isArray(a) || !isArray(b) {
		return objectType, nil
	}
	ea, eb := a[1:], b[1:]
	if isPrimitiveDescriptor(ea) || isPrimitiveDescriptor(eb) {
		return objectType, nil
	}
	elem, err := p.CommonSuperclass(ea, eb)
	if err != nil {
		return "", err
	}
	return "[" + elem, nil
}

func (p *StaticClassPath) IsAssignable(to, from string) (bool, error) {
	if to == from || to == objectType {
		return true, nil
	}
	if isArray(from) {
		if isArray(to) {
			et, ef := to[1:], from[1:]
			if isPrimitiveDescriptor(et) || isPrimitiveDescriptor(ef) {
				return et == ef, nil
			}
			return p.IsAssignable(et, ef)
		}
		return to == "Ljava/lang/Cloneable;" || to == "Ljava/io/Serializable;", nil
	}
	if isArray(to) {
		return false, nil
	}
	if _, err := p.lookup(to); err != nil {
		return false, err
	}
	chain, err := p.superChain(from)
	if err != nil {
		return false, err
	}
	seen := make(map[string]bool)
	work := chain
	for len(work) > 0 {
		name := work[0]
		work = work[1:]
		if name == to {
			return true, nil
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		c, err := p.lookup(name)
		if err != nil {
			return false, err
		}
		work = append(work, c.Interfaces...)
	}
	return false, nil
}
