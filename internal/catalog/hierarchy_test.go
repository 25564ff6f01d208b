package catalog

import (
	"sort"
	"testing"
)

func sortedIDs(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDescendantIDs_ThreeLevelChain(t *testing.T) {
	// root=1 (level 1) -> child=2 (level 2) -> grandchild=3 (level 3)
	childrenOf := map[int64][]int64{
		1: {2},
		2: {3},
	}

	tests := []struct {
		name string
		root int64
		want []int64
	}{
		{"from root", 1, []int64{1, 2, 3}},
		{"from middle", 2, []int64{2, 3}},
		{"from leaf", 3, []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DescendantIDs(tt.root, childrenOf)
			if !equalIDs(sortedIDs(got), tt.want) {
				t.Errorf("DescendantIDs(%d) = %v, want %v", tt.root, got, tt.want)
			}
		})
	}
}

func TestDescendantIDs_IncludesRootFirst(t *testing.T) {
	childrenOf := map[int64][]int64{10: {11, 12}}

	got := DescendantIDs(10, childrenOf)
	if len(got) == 0 || got[0] != 10 {
		t.Errorf("expected root id first, got %v", got)
	}
}

func TestDescendantIDs_UnknownID(t *testing.T) {
	got := DescendantIDs(99, map[int64][]int64{1: {2}})
	if !equalIDs(got, []int64{99}) {
		t.Errorf("expected singleton {99} for unknown id, got %v", got)
	}
}

func TestDescendantIDs_Forest(t *testing.T) {
	// Two separate trees; the closure must not leak across roots.
	childrenOf := map[int64][]int64{
		1: {2, 3},
		4: {5},
	}

	got := DescendantIDs(1, childrenOf)
	if !equalIDs(sortedIDs(got), []int64{1, 2, 3}) {
		t.Errorf("expected {1,2,3}, got %v", got)
	}
}

func TestDescendantIDs_EveryMemberReachableFromRoot(t *testing.T) {
	childrenOf := map[int64][]int64{
		1: {2, 3},
		2: {4, 5},
		3: {6},
	}
	parentOf := map[int64]int64{2: 1, 3: 1, 4: 2, 5: 2, 6: 3}

	for _, id := range DescendantIDs(1, childrenOf) {
		// Follow parent links backward; every member must terminate at 1.
		cur := id
		for steps := 0; cur != 1; steps++ {
			if steps > len(parentOf) {
				t.Fatalf("id %d does not reach root via parent chain", id)
			}
			cur = parentOf[cur]
		}
	}
}

// TestDescendantIDs_TerminatesOnCycle exercises the visited-set defense:
// a malformed parent chain must not hang the traversal.
func TestDescendantIDs_TerminatesOnCycle(t *testing.T) {
	childrenOf := map[int64][]int64{
		1: {2},
		2: {3},
		3: {1},
	}

	got := DescendantIDs(1, childrenOf)
	if !equalIDs(sortedIDs(got), []int64{1, 2, 3}) {
		t.Errorf("expected {1,2,3} on cycle, got %v", got)
	}
}
