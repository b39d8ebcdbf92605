package vdom

// Diff compares two node trees and returns the patches needed to transform
// prev into next. A nil prev yields an empty set: the first render has no
// patches, only full HTML.
func Diff(prev, next *Node) PatchSet {
	if prev == nil || next == nil {
		return nil
	}
	var patches PatchSet
	diff(prev, next, nil, &patches)
	return patches
}

// diff recursively compares nodes and appends patches. path addresses the
// node being compared, by child index from the root.
func diff(prev, next *Node, path []int, patches *PatchSet) {
	// Different kinds or tags - replace wholesale.
	if prev.Kind != next.Kind || prev.Tag != next.Tag {
		*patches = append(*patches, Patch{
			Op:   PatchReplaceNode,
			Path: clonePath(path),
			HTML: next.HTML(),
		})
		return
	}

	if prev.Kind == KindText {
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{
				Op:    PatchSetText,
				Path:  clonePath(path),
				Value: next.Text,
			})
		}
		return
	}

	diffAttrs(prev, next, path, patches)
	diffChildren(prev, next, path, patches)
}

func diffAttrs(prev, next *Node, path []int, patches *PatchSet) {
	for _, key := range sortedKeys(next.Attrs) {
		if old, ok := prev.Attrs[key]; !ok || old != next.Attrs[key] {
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				Path:  clonePath(path),
				Name:  key,
				Value: next.Attrs[key],
			})
		}
	}
	for _, key := range sortedKeys(prev.Attrs) {
		if _, ok := next.Attrs[key]; !ok {
			*patches = append(*patches, Patch{
				Op:   PatchRemoveAttr,
				Path: clonePath(path),
				Name: key,
			})
		}
	}
}

func diffChildren(prev, next *Node, path []int, patches *PatchSet) {
	shared := len(prev.Children)
	if len(next.Children) < shared {
		shared = len(next.Children)
	}
	for i := 0; i < shared; i++ {
		diff(prev.Children[i], next.Children[i], append(path, i), patches)
	}
	for i := shared; i < len(next.Children); i++ {
		*patches = append(*patches, Patch{
			Op:   PatchInsertNode,
			Path: clonePath(append(path, i)),
			HTML: next.Children[i].HTML(),
		})
	}
	// Removals run back-to-front so earlier indexes stay valid while the
	// client applies them in order.
	for i := len(prev.Children) - 1; i >= shared; i-- {
		*patches = append(*patches, Patch{
			Op:   PatchRemoveNode,
			Path: clonePath(append(path, i)),
		})
	}
}

func clonePath(path []int) []int {
	if len(path) == 0 {
		return nil
	}
	out := make([]int, len(path))
	copy(out, path)
	return out
}
