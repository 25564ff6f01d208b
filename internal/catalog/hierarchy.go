package catalog

// DescendantIDs computes the transitive closure of the parent→child edge
// starting at root: the root id plus every activity reachable by following
// child edges. childrenOf indexes child ids by parent id.
//
// The traversal is a worklist BFS guarded by a visited set, so it
// terminates even if the acyclicity invariant of the taxonomy is ever
// violated. An id with no children (or one absent from the index entirely)
// yields the singleton {root}; existence checking is the caller's concern.
//
// The root id is always first in the result; remaining ids follow in
// breadth-first discovery order.
func DescendantIDs(root int64, childrenOf map[int64][]int64) []int64 {
	visited := map[int64]bool{root: true}
	ids := []int64{root}

	queue := []int64{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, child := range childrenOf[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}

	return ids
}
