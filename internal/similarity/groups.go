// Carousel Optimizer - Product Image Quality Ranking and Carousel Ordering
// Copyright 2026 Santiago Maresca (SantiagoMaresca)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SantiagoMaresca/carousel-optimizer

package similarity

import "sort"

// unionFind is a minimal disjoint-set structure over image ids, used to
// build connected components of the duplicate graph. At N <= 12 no rank
// heuristics are needed; path compression keeps it tidy anyway.
type unionFind struct {
	parent map[string]string
}

func newUnionFind(ids []string) *unionFind {
	parent := make(map[string]string, len(ids))
	for _, id := range ids {
		parent[id] = id
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

// union merges two sets, keeping the lexicographically smaller root so
// component representatives are deterministic.
func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}

// duplicateGroups computes connected components over DUPLICATE edges.
// Only RELATED pairs never merge components. Singleton components are
// omitted; they are not duplicate groups.
func duplicateGroups(images []Input, pairs []Pair) [][]string {
	ids := make([]string, len(images))
	for i, img := range images {
		ids[i] = img.ID
	}

	uf := newUnionFind(ids)
	for _, p := range pairs {
		if p.Class == ClassDuplicate {
			uf.union(p.A, p.B)
		}
	}

	members := make(map[string][]string)
	for _, id := range ids {
		root := uf.find(id)
		members[root] = append(members[root], id)
	}

	groups := make([][]string, 0, len(members))
	for _, group := range members {
		if len(group) < 2 {
			continue
		}
		sort.Strings(group)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})

	return groups
}
