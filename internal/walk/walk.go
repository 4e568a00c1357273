// Package walk provides lazy breadth-first enumeration of directory trees.
package walk

import "iter"

// Lister returns the child directories of dir as full paths, in listing
// order. It is the only capability the walker needs, so the same walker
// serves local and remote trees.
type Lister func(dir string) ([]string, error)

// Tree returns a lazy, finite sequence of directory paths rooted at root,
// in breadth-first order: the root first, then each discovered subdirectory
// in the order its parent listed it, level by level.
//
// The sequence is not restartable; every range over it re-walks the tree
// with fresh listing calls. A listing error is yielded with an empty path
// and terminates the walk.
func Tree(root string, subdirs Lister) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if !yield(root, nil) {
			return
		}

		queue := []string{root}
		for len(queue) > 0 {
			dir := queue[0]
			queue = queue[1:]

			children, err := subdirs(dir)
			if err != nil {
				yield("", err)
				return
			}

			for _, child := range children {
				if !yield(child, nil) {
					return
				}
				queue = append(queue, child)
			}
		}
	}
}
