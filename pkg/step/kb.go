package step

import (
	"fmt"
	"sort"
	"strings"
)

// Separator distinguishes the two kinds of trie edge an exclusion-logic
// sentence can take at each step (§4.10).
type Separator int

const (
	// NonExclusive ("/") edges form a persistent mapping from key to
	// child; multiple children may coexist.
	NonExclusive Separator = iota
	// Exclusive ("!") edges hold at most one (key, child) pair; writing a
	// new key overwrites (and subtracts) the prior branch.
	Exclusive
)

func (s Separator) String() string {
	if s == Exclusive {
		return "!"
	}
	return "/"
}

// PathElem is one (separator, key) step of an exclusion-logic sentence.
// Key is ground on Write/Delete; it may be an unbound *Var on Lookup, in
// which case Lookup enumerates every matching key.
type PathElem struct {
	Sep Separator
	Key Term
}

// KBNode is one node of the persistent exclusion-logic trie (§4.10).
// Nodes are never mutated: Write and Delete return a new root node that
// shares untouched subtrees with the old one.
type KBNode struct {
	NonExcl   map[Atom]*KBNode
	HasExcl   bool
	ExclKey   Atom
	ExclChild *KBNode
	Terminal  bool // a sentence ends exactly at this node
}

// NewKB returns an empty exclusion-logic trie root.
func NewKB() *KBNode { return &KBNode{} }

func (n *KBNode) clone() *KBNode {
	if n == nil {
		return &KBNode{}
	}
	c := *n
	return &c
}

func groundKey(t Term) (Atom, error) {
	a, ok := t.(Atom)
	if !ok {
		return Atom{}, fmt.Errorf("exclusion-logic key must be a ground atom, got %s", t)
	}
	return a, nil
}

// Write extends n with path, returning the new root. Separator mismatch
// — reaching the same (node, key) through both "/" and "!" — is a fatal
// error per §4.10/§6.
func (n *KBNode) Write(path []PathElem) (*KBNode, error) {
	Logger().Named("kb").Trace("write", "path", renderSentence(path))
	c := n.clone()
	if len(path) == 0 {
		c.Terminal = true
		return c, nil
	}

	elem := path[0]
	key, err := groundKey(elem.Key)
	if err != nil {
		return nil, err
	}

	if elem.Sep == NonExclusive {
		if c.HasExcl && c.ExclKey == key {
			return nil, fmt.Errorf("exclusion-logic KB: separator mismatch on key %v (already exclusive)", key)
		}
		child := c.NonExcl[key]
		if child == nil {
			child = &KBNode{}
		}
		newChild, err := child.Write(path[1:])
		if err != nil {
			return nil, err
		}
		newMap := make(map[Atom]*KBNode, len(c.NonExcl)+1)
		for k, v := range c.NonExcl {
			newMap[k] = v
		}
		newMap[key] = newChild
		c.NonExcl = newMap
		return c, nil
	}

	// Exclusive.
	if _, exists := c.NonExcl[key]; exists {
		return nil, fmt.Errorf("exclusion-logic KB: separator mismatch on key %v (already non-exclusive)", key)
	}
	var child *KBNode
	if c.HasExcl && c.ExclKey == key {
		child = c.ExclChild // same key: keep writing into the existing subtree
	} else {
		child = &KBNode{} // new key: subtract the prior exclusive branch
	}
	newChild, err := child.Write(path[1:])
	if err != nil {
		return nil, err
	}
	c.HasExcl = true
	c.ExclKey = key
	c.ExclChild = newChild
	return c, nil
}

// Delete removes path from n, returning the new root and whether the
// sentence had existed. Deleting an absent sentence is a no-op, not an
// error.
func (n *KBNode) Delete(path []PathElem) (*KBNode, bool) {
	Logger().Named("kb").Trace("delete", "path", renderSentence(path))
	if n == nil {
		return n, false
	}
	if len(path) == 0 {
		if !n.Terminal {
			return n, false
		}
		c := n.clone()
		c.Terminal = false
		return c, true
	}

	elem := path[0]
	key, err := groundKey(elem.Key)
	if err != nil {
		return n, false
	}

	if elem.Sep == NonExclusive {
		child, ok := n.NonExcl[key]
		if !ok {
			return n, false
		}
		newChild, existed := child.Delete(path[1:])
		if !existed {
			return n, false
		}
		c := n.clone()
		newMap := make(map[Atom]*KBNode, len(n.NonExcl))
		for k, v := range n.NonExcl {
			newMap[k] = v
		}
		newMap[key] = newChild
		c.NonExcl = newMap
		return c, true
	}

	if !n.HasExcl || n.ExclKey != key {
		return n, false
	}
	newChild, existed := n.ExclChild.Delete(path[1:])
	if !existed {
		return n, false
	}
	c := n.clone()
	c.ExclChild = newChild
	return c, true
}

// Lookup enumerates every binding list under which path matches an
// existing sentence in n, unifying any unbound-variable keys in path
// against the trie's actual keys (§4.10: "lookup...unifies over
// non-ground keys and thereby enumerates matching sentences").
func (n *KBNode) Lookup(path []PathElem, binds *BindingList) []*BindingList {
	var out []*BindingList
	n.lookup(path, binds, &out)
	return out
}

func (n *KBNode) lookup(path []PathElem, binds *BindingList, out *[]*BindingList) {
	if n == nil {
		return
	}
	if len(path) == 0 {
		if n.Terminal {
			*out = append(*out, binds)
		}
		return
	}

	elem := path[0]
	rest := path[1:]
	keyTerm := Deref(elem.Key, binds)

	if elem.Sep == NonExclusive {
		if ka, ok := keyTerm.(Atom); ok {
			if child, exists := n.NonExcl[ka]; exists {
				child.lookup(rest, binds, out)
			}
			return
		}
		for k, child := range n.NonExcl {
			nb, ok := Unify(elem.Key, k, binds)
			if !ok {
				continue
			}
			child.lookup(rest, nb, out)
		}
		return
	}

	if !n.HasExcl {
		return
	}
	if ka, ok := keyTerm.(Atom); ok {
		if ka == n.ExclKey {
			n.ExclChild.lookup(rest, binds, out)
		}
		return
	}
	nb, ok := Unify(elem.Key, n.ExclKey, binds)
	if !ok {
		return
	}
	n.ExclChild.lookup(rest, nb, out)
}

// Dump produces the sorted list of every complete sentence stored in n,
// rendered like "/a/b!c".
func (n *KBNode) Dump() []string {
	var out []string
	n.dump(nil, &out)
	sort.Strings(out)
	return out
}

func (n *KBNode) dump(prefix []PathElem, out *[]string) {
	if n == nil {
		return
	}
	if n.Terminal {
		*out = append(*out, renderSentence(prefix))
	}
	for k, child := range n.NonExcl {
		child.dump(append(append([]PathElem{}, prefix...), PathElem{Sep: NonExclusive, Key: k}), out)
	}
	if n.HasExcl {
		n.ExclChild.dump(append(append([]PathElem{}, prefix...), PathElem{Sep: Exclusive, Key: n.ExclKey}), out)
	}
}

func renderSentence(path []PathElem) string {
	var b strings.Builder
	for _, e := range path {
		b.WriteString(e.Sep.String())
		if a, ok := e.Key.(Atom); ok {
			fmt.Fprintf(&b, "%v", a.Value)
		} else {
			b.WriteString(e.Key.String())
		}
	}
	return b.String()
}

// KBStateKey is the reserved state-variable key under which the
// exclusion-logic KB root lives in an Env's State (§4.10, §6: "The
// exclusion-logic KB root uses a reserved key").
var KBStateKey = &StateKey{
	Name:    "$kb",
	Default: func() Term { return Atom{Value: NewKB()} },
}

// KBFrom extracts the current KB root from env's state.
func KBFrom(env *Env) *KBNode {
	a, _ := env.State.TryGet(KBStateKey).(Atom)
	kb, _ := a.Value.(*KBNode)
	if kb == nil {
		return NewKB()
	}
	return kb
}

// KBWith returns a new Env whose KB state is replaced by kb.
func KBWith(env *Env, kb *KBNode) *Env {
	return env.WithState(env.State.Bind(KBStateKey, Atom{Value: kb}))
}
