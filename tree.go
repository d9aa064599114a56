package oram

// treeParams returns the height L, number of leaves (2^L), and total bucket
// count (2^(L+1)-1) of the perfect binary tree for numBlocks blocks; the
// bucket size does not enter into it. L = ceil(log2(max(numBlocks, 2))),
// so even a 1-block ORAM gets a tree with at least one internal split.
func treeParams(numBlocks int) (height, numLeaves, numNodes int) {
	n := numBlocks
	if n < 2 {
		n = 2
	}
	height = 0
	for (1 << height) < n {
		height++
	}
	numLeaves = 1 << height
	numNodes = (1 << (height + 1)) - 1
	return
}

// nodeID returns the breadth-first node id of leaf index leaf (0-based
// among the 2^height leaves).
func nodeID(height, leaf int) int {
	return (1 << height) - 1 + leaf
}

// path returns the ordered node ids from the root (index 0) to the leaf
// node (index height), length height+1. This is root-first, per spec.md
// §4.D — the teacher's original Path() returned leaf-first, which this
// corrects to let the eviction loop walk the slice in reverse for
// leaf-to-root order (spec.md §4.G step 4).
func path(height, leaf int) []int {
	p := make([]int, height+1)
	node := nodeID(height, leaf)
	for i := height; i >= 0; i-- {
		p[i] = node
		if node == 0 {
			break
		}
		node = (node - 1) / 2
	}
	return p
}

// onPath reports whether bucketIdx lies on the root-to-leaf path of leaf,
// i.e. bucketIdx is an ancestor of (or equal to) leaf's own node.
func onPath(height, leaf, bucketIdx int) bool {
	node := nodeID(height, leaf)
	for {
		if node == bucketIdx {
			return true
		}
		if node == 0 {
			return false
		}
		node = (node - 1) / 2
	}
}
