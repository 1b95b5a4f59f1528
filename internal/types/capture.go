package types

import (
	"sort"
	"strings"

	"github.com/fabled/effectc/internal/ast"
)

// Capture is one atom of a CaptureSet (§3): a closed-over block
// symbol, a capture parameter, or a capture unification variable.
type Capture interface {
	String() string
	key() string
	captureNode()
}

type CaptureOf struct{ Block *ast.Symbol }

func (*CaptureOf) captureNode()   {}
func (c *CaptureOf) String() string { return c.Block.Name }
func (c *CaptureOf) key() string    { return "of:" + c.Block.String() }

type CaptureParam struct{ Name string }

func (*CaptureParam) captureNode()   {}
func (c *CaptureParam) String() string { return c.Name }
func (c *CaptureParam) key() string    { return "param:" + c.Name }

type CaptureUnificationVar struct{ ID uint64 }

func (*CaptureUnificationVar) captureNode()   {}
func (c *CaptureUnificationVar) String() string { return "?c" }
func (c *CaptureUnificationVar) key() string    { return "uvar" }

// CaptureSet is a deduplicated set of Capture atoms.
type CaptureSet struct {
	elems []Capture
	seen  map[string]bool
}

func EmptyCaptureSet() *CaptureSet { return &CaptureSet{seen: map[string]bool{}} }

func NewCaptureSet(elems ...Capture) *CaptureSet {
	cs := EmptyCaptureSet()
	for _, el := range elems {
		cs.Add(el)
	}
	return cs
}

func (cs *CaptureSet) Add(c Capture) {
	k := c.key()
	if cs.seen[k] {
		return
	}
	cs.seen[k] = true
	cs.elems = append(cs.elems, c)
}

func (cs *CaptureSet) Elems() []Capture {
	if cs == nil {
		return nil
	}
	return cs.elems
}

func (cs *CaptureSet) Union(o *CaptureSet) *CaptureSet {
	out := NewCaptureSet(cs.Elems()...)
	for _, c := range o.Elems() {
		out.Add(c)
	}
	return out
}

func (cs *CaptureSet) String() string {
	if cs == nil || len(cs.elems) == 0 {
		return ""
	}
	strs := make([]string, len(cs.elems))
	for i, c := range cs.elems {
		strs[i] = c.String()
	}
	sort.Strings(strs)
	return "{" + strings.Join(strs, ", ") + "}"
}
