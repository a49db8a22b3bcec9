package match

import "github.com/gaurav-prasanna/pastepipe/core/normalize"

// List kinds used as values of the list attribute.
const (
	ListOrdered   = "ordered"
	ListBullet    = "bullet"
	ListChecked   = "checked"
	ListUnchecked = "unchecked"
)

// ListFrame is one enclosing list during traversal.
type ListFrame struct {
	Kind string
	Node *normalize.Node
}

// State is the traversal context handed to transforms. It is a value:
// nested calls get their own copy, so a subtree can be converted in
// isolation.
type State struct {
	Registry *Registry
	Lists    []ListFrame // outermost first
}

// Depth is the list nesting depth: 0 outside lists, 1 in a top-level list.
func (s State) Depth() int { return len(s.Lists) }

// List returns the nearest enclosing list.
func (s State) List() (ListFrame, bool) {
	if len(s.Lists) == 0 {
		return ListFrame{}, false
	}
	return s.Lists[len(s.Lists)-1], true
}

// Enter returns the state for n's children.
func (s State) Enter(n *normalize.Node) State {
	if !n.Is("ol", "ul") {
		return s
	}
	lists := make([]ListFrame, len(s.Lists), len(s.Lists)+1)
	copy(lists, s.Lists)
	s.Lists = append(lists, ListFrame{Kind: listKind(n), Node: n})
	return s
}

func listKind(n *normalize.Node) string {
	switch {
	case n.Is("ol"):
		return ListOrdered
	case n.Attr("data-checked") == "true":
		return ListChecked
	case n.Attr("data-checked") == "false":
		return ListUnchecked
	default:
		return ListBullet
	}
}
