package hierarchy

import "sort"

// Entry is the flat form of a category the tree is built from.
type Entry struct {
	ID       string
	ParentID string
	Name     string
	Path     Path
}

// Expanded is one category reached while expanding a set of hierarchies.
type Expanded struct {
	ID         string
	Name       string
	Identifier string
}

type node struct {
	entry    Entry
	parent   int
	children []int
}

// Tree is an arena of categories. Nodes reference their parent and children by
// index, and index maps an id to its slot.
type Tree struct {
	nodes []node
	index map[string]int
}

// NewTree builds a tree from a flat list. Duplicate ids keep their first
// occurrence; a parent id that is unknown or points at the node itself leaves
// the node detached as a root.
func NewTree(entries []Entry) *Tree {
	t := &Tree{
		nodes: make([]node, 0, len(entries)),
		index: make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		if _, dup := t.index[e.ID]; dup {
			continue
		}
		t.index[e.ID] = len(t.nodes)
		t.nodes = append(t.nodes, node{entry: e, parent: -1})
	}

	for i := range t.nodes {
		parentID := t.nodes[i].entry.ParentID
		if parentID == "" {
			continue
		}
		p, ok := t.index[parentID]
		if !ok || p == i {
			continue
		}
		t.nodes[i].parent = p
		t.nodes[p].children = append(t.nodes[p].children, i)
	}

	for i := range t.nodes {
		t.sortChildren(i)
	}

	return t
}

func (t *Tree) sortChildren(i int) {
	children := t.nodes[i].children
	sort.SliceStable(children, func(a, b int) bool {
		return t.lessNode(children[a], children[b])
	})
}

func (t *Tree) lessNode(a, b int) bool {
	ea, eb := t.nodes[a].entry, t.nodes[b].entry
	if ea.Path != eb.Path {
		return Less(ea.Path, eb.Path)
	}
	return ea.Name < eb.Name
}

// Len returns the number of categories in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get looks up a category by id.
func (t *Tree) Get(id string) (Entry, bool) {
	i, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.nodes[i].entry, true
}

// Parent returns the parent of id, if it has one.
func (t *Tree) Parent(id string) (Entry, bool) {
	i, ok := t.index[id]
	if !ok || t.nodes[i].parent < 0 {
		return Entry{}, false
	}
	return t.nodes[t.nodes[i].parent].entry, true
}

// Children returns the direct children of id.
func (t *Tree) Children(id string) []Entry {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	out := make([]Entry, 0, len(t.nodes[i].children))
	for _, c := range t.nodes[i].children {
		out = append(out, t.nodes[c].entry)
	}
	return out
}

// Roots returns every category without a parent.
func (t *Tree) Roots() []Entry {
	var out []Entry
	for _, n := range t.nodes {
		if n.parent < 0 {
			out = append(out, n.entry)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Path != out[b].Path {
			return Less(out[a].Path, out[b].Path)
		}
		return out[a].Name < out[b].Name
	})
	return out
}

// Expand walks the parent->children relation below every id in roots and
// returns each category reached exactly once, the roots included. The walk
// stops at leaves and unknown ids are skipped.
func (t *Tree) Expand(roots []string) []Expanded {
	seen := make(map[int]bool, len(t.nodes))
	var out []Expanded

	var walk func(i int)
	walk = func(i int) {
		if seen[i] {
			return
		}
		seen[i] = true
		e := t.nodes[i].entry
		out = append(out, Expanded{ID: e.ID, Name: e.Name, Identifier: e.Path.Identifier})
		for _, c := range t.nodes[i].children {
			walk(c)
		}
	}

	for _, id := range roots {
		if i, ok := t.index[id]; ok {
			walk(i)
		}
	}
	return out
}

// Identifiers maps every category reached by Expand to its hierarchy identifier.
func (t *Tree) Identifiers(roots []string) map[string]string {
	expanded := t.Expand(roots)
	out := make(map[string]string, len(expanded))
	for _, e := range expanded {
		out[e.ID] = e.Identifier
	}
	return out
}

// Descendants returns the ids of every category below id, id excluded.
func (t *Tree) Descendants(id string) []string {
	expanded := t.Expand([]string{id})
	if len(expanded) == 0 {
		return nil
	}
	out := make([]string, 0, len(expanded)-1)
	for _, e := range expanded[1:] {
		out = append(out, e.ID)
	}
	return out
}

// IsDescendant reports whether id sits somewhere below ancestor.
func (t *Tree) IsDescendant(ancestor, id string) bool {
	a, ok := t.index[ancestor]
	if !ok {
		return false
	}
	i, ok := t.index[id]
	if !ok {
		return false
	}
	// bounded so a corrupted parent chain cannot loop forever
	for steps := 0; steps < len(t.nodes); steps++ {
		i = t.nodes[i].parent
		if i < 0 {
			return false
		}
		if i == a {
			return true
		}
	}
	return false
}

// Ordered returns every category sorted by (base, identifier), ties broken by
// name.
func (t *Tree) Ordered() []Entry {
	idx := make([]int, len(t.nodes))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return t.lessNode(idx[a], idx[b])
	})
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, t.nodes[i].entry)
	}
	return out
}
