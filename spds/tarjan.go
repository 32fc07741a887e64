// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spds

import "github.com/katalvlaran/lvlath/core"

// tarjanState carries the bookkeeping of Tarjan's SCC algorithm across
// recursive calls without package-level state (so Build is safe to call
// concurrently for independent directions).
type tarjanState struct {
	adj      func(string) []string
	index    map[string]int
	low      map[string]int
	onStack  map[string]bool
	stack    []string
	counter  int
	sccs     [][]string
}

func tarjanSCCs(g *core.Graph) [][]string {
	adj := func(u string) []string {
		nbrs, _ := g.NeighborIDs(u)
		return nbrs
	}
	return runTarjan(g.Vertices(), adj)
}

func tarjanSCCsOf(verts []string, adj map[string][]string) [][]string {
	return runTarjan(verts, func(u string) []string { return adj[u] })
}

func runTarjan(verts []string, adj func(string) []string) [][]string {
	st := &tarjanState{
		adj:     adj,
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, v := range verts {
		if _, seen := st.index[v]; !seen {
			st.strongConnect(v)
		}
	}
	return st.sccs
}

func (st *tarjanState) strongConnect(v string) {
	st.index[v] = st.counter
	st.low[v] = st.counter
	st.counter++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range st.adj(v) {
		if _, seen := st.index[w]; !seen {
			st.strongConnect(w)
			if st.low[w] < st.low[v] {
				st.low[v] = st.low[w]
			}
		} else if st.onStack[w] {
			if st.index[w] < st.low[v] {
				st.low[v] = st.index[w]
			}
		}
	}

	if st.low[v] == st.index[v] {
		var scc []string
		for {
			n := len(st.stack) - 1
			w := st.stack[n]
			st.stack = st.stack[:n]
			st.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		st.sccs = append(st.sccs, scc)
	}
}
