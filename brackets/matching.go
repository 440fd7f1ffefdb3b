package brackets

import "slices"

// MatchEdge is an undirected edge between vertices U and V of a matching graph.
type MatchEdge struct {
	U, V   int
	Weight int64
}

// MaxWeightMatching computes a maximum-weight matching of a general graph with
// Edmonds' blossom algorithm and primal-dual updates, in O(n³) time.
//
// When maxCardinality is set, only matchings of maximum cardinality are
// considered and the heaviest of those is returned; negative weights are
// allowed in that mode. The result maps every vertex to its mate, or -1.
// Vertices are numbered 0..n-1 where n-1 is the largest endpoint in edges.
func MaxWeightMatching(edges []MatchEdge, maxCardinality bool) []int {
	if len(edges) == 0 {
		return nil
	}
	m := newMatcher(edges, maxCardinality)
	m.solve()
	return m.result()
}

type matcher struct {
	edges          []MatchEdge
	nvertex        int
	maxCardinality bool

	// endpoint[p] is the vertex at end p; edge k has ends 2k and 2k+1.
	endpoint []int
	// neighbend[v] lists the remote endpoints of the edges incident to v.
	neighbend [][]int
	// mate[v] is the remote endpoint of v's matched edge, or -1.
	mate []int

	// label: 0 free, 1 S-vertex/blossom, 2 T-vertex/blossom. Bit 4 marks scanBlossom.
	label    []int
	labelend []int

	inblossom        []int
	blossomparent    []int
	blossomchilds    [][]int
	blossombase      []int
	blossomendps     [][]int
	bestedge         []int
	blossombestedges [][]int
	unusedblossoms   []int

	dualvar   []int64
	allowedge []bool
	queue     []int
}

func newMatcher(edges []MatchEdge, maxCardinality bool) *matcher {
	nvertex := 0
	var maxweight int64
	for _, e := range edges {
		if e.U < 0 || e.V < 0 || e.U == e.V {
			panic("brackets: invalid matching edge")
		}
		nvertex = max(nvertex, e.U+1, e.V+1)
		maxweight = max(maxweight, e.Weight)
	}

	m := &matcher{
		edges:            edges,
		nvertex:          nvertex,
		maxCardinality:   maxCardinality,
		endpoint:         make([]int, 2*len(edges)),
		neighbend:        make([][]int, nvertex),
		mate:             make([]int, nvertex),
		label:            make([]int, 2*nvertex),
		labelend:         make([]int, 2*nvertex),
		inblossom:        make([]int, nvertex),
		blossomparent:    make([]int, 2*nvertex),
		blossomchilds:    make([][]int, 2*nvertex),
		blossombase:      make([]int, 2*nvertex),
		blossomendps:     make([][]int, 2*nvertex),
		bestedge:         make([]int, 2*nvertex),
		blossombestedges: make([][]int, 2*nvertex),
		dualvar:          make([]int64, 2*nvertex),
		allowedge:        make([]bool, len(edges)),
	}
	for p := range m.endpoint {
		if p%2 == 0 {
			m.endpoint[p] = edges[p/2].U
		} else {
			m.endpoint[p] = edges[p/2].V
		}
	}
	for k, e := range edges {
		m.neighbend[e.U] = append(m.neighbend[e.U], 2*k+1)
		m.neighbend[e.V] = append(m.neighbend[e.V], 2*k)
	}
	for v := 0; v < nvertex; v++ {
		m.mate[v] = -1
		m.inblossom[v] = v
		m.blossombase[v] = v
		m.dualvar[v] = maxweight
	}
	for b := 0; b < 2*nvertex; b++ {
		m.labelend[b] = -1
		m.blossomparent[b] = -1
		m.bestedge[b] = -1
		if b >= nvertex {
			m.blossombase[b] = -1
			m.unusedblossoms = append(m.unusedblossoms, b)
		}
	}
	return m
}

func (m *matcher) slack(k int) int64 {
	e := m.edges[k]
	return m.dualvar[e.U] + m.dualvar[e.V] - 2*e.Weight
}

func (m *matcher) blossomLeaves(b int) []int {
	if b < m.nvertex {
		return []int{b}
	}
	var leaves []int
	for _, t := range m.blossomchilds[b] {
		if t < m.nvertex {
			leaves = append(leaves, t)
		} else {
			leaves = append(leaves, m.blossomLeaves(t)...)
		}
	}
	return leaves
}

// assignLabel labels w (and its top-level blossom) with t, reached through endpoint p.
func (m *matcher) assignLabel(w, t, p int) {
	b := m.inblossom[w]
	m.label[w], m.label[b] = t, t
	m.labelend[w], m.labelend[b] = p, p
	m.bestedge[w], m.bestedge[b] = -1, -1
	switch t {
	case 1:
		m.queue = append(m.queue, m.blossomLeaves(b)...)
	case 2:
		base := m.blossombase[b]
		m.assignLabel(m.endpoint[m.mate[base]], 1, m.mate[base]^1)
	}
}

// scanBlossom traces back from v and w to find a new blossom base, or -1 for an augmenting path.
func (m *matcher) scanBlossom(v, w int) int {
	var path []int
	base := -1
	for v != -1 || w != -1 {
		b := m.inblossom[v]
		if m.label[b]&4 != 0 {
			base = m.blossombase[b]
			break
		}
		path = append(path, b)
		m.label[b] = 5
		if m.labelend[b] == -1 {
			v = -1
		} else {
			v = m.endpoint[m.labelend[b]]
			b = m.inblossom[v]
			v = m.endpoint[m.labelend[b]]
		}
		if w != -1 {
			v, w = w, v
		}
	}
	for _, b := range path {
		m.label[b] = 1
	}
	return base
}

// addBlossom contracts the odd cycle closed by edge k into a new blossom with the given base.
func (m *matcher) addBlossom(base, k int) {
	v, w := m.edges[k].U, m.edges[k].V
	bb := m.inblossom[base]
	bv := m.inblossom[v]
	bw := m.inblossom[w]

	b := m.unusedblossoms[len(m.unusedblossoms)-1]
	m.unusedblossoms = m.unusedblossoms[:len(m.unusedblossoms)-1]

	m.blossombase[b] = base
	m.blossomparent[b] = -1
	m.blossomparent[bb] = b

	var path, endps []int
	for bv != bb {
		m.blossomparent[bv] = b
		path = append(path, bv)
		endps = append(endps, m.labelend[bv])
		v = m.endpoint[m.labelend[bv]]
		bv = m.inblossom[v]
	}
	path = append(path, bb)
	slices.Reverse(path)
	slices.Reverse(endps)
	endps = append(endps, 2*k)
	for bw != bb {
		m.blossomparent[bw] = b
		path = append(path, bw)
		endps = append(endps, m.labelend[bw]^1)
		w = m.endpoint[m.labelend[bw]]
		bw = m.inblossom[w]
	}
	m.blossomchilds[b] = path
	m.blossomendps[b] = endps

	m.label[b] = 1
	m.labelend[b] = m.labelend[bb]
	m.dualvar[b] = 0
	for _, leaf := range m.blossomLeaves(b) {
		if m.label[m.inblossom[leaf]] == 2 {
			m.queue = append(m.queue, leaf)
		}
		m.inblossom[leaf] = b
	}

	bestedgeto := make([]int, 2*m.nvertex)
	for i := range bestedgeto {
		bestedgeto[i] = -1
	}
	for _, sub := range path {
		var nblists [][]int
		if m.blossombestedges[sub] == nil {
			for _, leaf := range m.blossomLeaves(sub) {
				nblist := make([]int, len(m.neighbend[leaf]))
				for i, p := range m.neighbend[leaf] {
					nblist[i] = p / 2
				}
				nblists = append(nblists, nblist)
			}
		} else {
			nblists = [][]int{m.blossombestedges[sub]}
		}
		for _, nblist := range nblists {
			for _, ek := range nblist {
				j := m.edges[ek].V
				if m.inblossom[j] == b {
					j = m.edges[ek].U
				}
				bj := m.inblossom[j]
				if bj != b && m.label[bj] == 1 &&
					(bestedgeto[bj] == -1 || m.slack(ek) < m.slack(bestedgeto[bj])) {
					bestedgeto[bj] = ek
				}
			}
		}
		m.blossombestedges[sub] = nil
		m.bestedge[sub] = -1
	}

	best := []int{}
	for _, ek := range bestedgeto {
		if ek != -1 {
			best = append(best, ek)
		}
	}
	m.blossombestedges[b] = best
	m.bestedge[b] = -1
	for _, ek := range best {
		if m.bestedge[b] == -1 || m.slack(ek) < m.slack(m.bestedge[b]) {
			m.bestedge[b] = ek
		}
	}
}

// expandBlossom undoes blossom b. At the end of a stage, zero-dual sub-blossoms expand recursively.
func (m *matcher) expandBlossom(b int, endstage bool) {
	for _, s := range m.blossomchilds[b] {
		m.blossomparent[s] = -1
		switch {
		case s < m.nvertex:
			m.inblossom[s] = s
		case endstage && m.dualvar[s] == 0:
			m.expandBlossom(s, endstage)
		default:
			for _, leaf := range m.blossomLeaves(s) {
				m.inblossom[leaf] = s
			}
		}
	}

	if !endstage && m.label[b] == 2 {
		childs := m.blossomchilds[b]
		endps := m.blossomendps[b]
		entrychild := m.inblossom[m.endpoint[m.labelend[b]^1]]
		j := slices.Index(childs, entrychild)
		var jstep, endptrick int
		if j&1 != 0 {
			j -= len(childs)
			jstep = 1
			endptrick = 0
		} else {
			jstep = -1
			endptrick = 1
		}
		at := func(list []int, i int) int {
			if i < 0 {
				i += len(list)
			}
			return list[i]
		}

		p := m.labelend[b]
		for j != 0 {
			m.label[m.endpoint[p^1]] = 0
			m.label[m.endpoint[at(endps, j-endptrick)^endptrick^1]] = 0
			m.assignLabel(m.endpoint[p^1], 2, p)
			m.allowedge[at(endps, j-endptrick)/2] = true
			j += jstep
			p = at(endps, j-endptrick) ^ endptrick
			m.allowedge[p/2] = true
			j += jstep
		}

		bv := at(childs, j)
		m.label[m.endpoint[p^1]] = 2
		m.label[bv] = 2
		m.labelend[m.endpoint[p^1]] = p
		m.labelend[bv] = p
		m.bestedge[bv] = -1
		j += jstep
		for at(childs, j) != entrychild {
			bv = at(childs, j)
			if m.label[bv] == 1 {
				j += jstep
				continue
			}
			labeled := -1
			for _, leaf := range m.blossomLeaves(bv) {
				if m.label[leaf] != 0 {
					labeled = leaf
					break
				}
			}
			if labeled != -1 {
				m.label[labeled] = 0
				m.label[m.endpoint[m.mate[m.blossombase[bv]]]] = 0
				m.assignLabel(labeled, 2, m.labelend[labeled])
			}
			j += jstep
		}
	}

	m.label[b] = -1
	m.labelend[b] = -1
	m.blossomchilds[b] = nil
	m.blossomendps[b] = nil
	m.blossombase[b] = -1
	m.blossombestedges[b] = nil
	m.bestedge[b] = -1
	m.unusedblossoms = append(m.unusedblossoms, b)
}

// augmentBlossom swaps matched and unmatched edges along the path from v to the base of b.
func (m *matcher) augmentBlossom(b, v int) {
	t := v
	for m.blossomparent[t] != b {
		t = m.blossomparent[t]
	}
	if t >= m.nvertex {
		m.augmentBlossom(t, v)
	}

	childs := m.blossomchilds[b]
	endps := m.blossomendps[b]
	at := func(list []int, i int) int {
		if i < 0 {
			i += len(list)
		}
		return list[i]
	}

	i := slices.Index(childs, t)
	j := i
	var jstep, endptrick int
	if i&1 != 0 {
		j -= len(childs)
		jstep = 1
		endptrick = 0
	} else {
		jstep = -1
		endptrick = 1
	}
	for j != 0 {
		j += jstep
		t = at(childs, j)
		p := at(endps, j-endptrick) ^ endptrick
		if t >= m.nvertex {
			m.augmentBlossom(t, m.endpoint[p])
		}
		j += jstep
		t = at(childs, j)
		if t >= m.nvertex {
			m.augmentBlossom(t, m.endpoint[p^1])
		}
		m.mate[m.endpoint[p]] = p ^ 1
		m.mate[m.endpoint[p^1]] = p
	}

	m.blossomchilds[b] = append(append([]int{}, childs[i:]...), childs[:i]...)
	m.blossomendps[b] = append(append([]int{}, endps[i:]...), endps[:i]...)
	m.blossombase[b] = m.blossombase[m.blossomchilds[b][0]]
}

// augmentMatching flips the augmenting path through edge k.
func (m *matcher) augmentMatching(k int) {
	v, w := m.edges[k].U, m.edges[k].V
	for _, start := range [2][2]int{{v, 2*k + 1}, {w, 2 * k}} {
		s, p := start[0], start[1]
		for {
			bs := m.inblossom[s]
			if bs >= m.nvertex {
				m.augmentBlossom(bs, s)
			}
			m.mate[s] = p
			if m.labelend[bs] == -1 {
				break
			}
			t := m.endpoint[m.labelend[bs]]
			bt := m.inblossom[t]
			s = m.endpoint[m.labelend[bt]]
			j := m.endpoint[m.labelend[bt]^1]
			if bt >= m.nvertex {
				m.augmentBlossom(bt, j)
			}
			m.mate[j] = m.labelend[bt]
			p = m.labelend[bt] ^ 1
		}
	}
}

func (m *matcher) resetStage() {
	for i := range m.label {
		m.label[i] = 0
		m.bestedge[i] = -1
	}
	for b := m.nvertex; b < 2*m.nvertex; b++ {
		m.blossombestedges[b] = nil
	}
	for k := range m.allowedge {
		m.allowedge[k] = false
	}
	m.queue = m.queue[:0]
}

func (m *matcher) solve() {
	for stage := 0; stage < m.nvertex; stage++ {
		m.resetStage()
		for v := 0; v < m.nvertex; v++ {
			if m.mate[v] == -1 && m.label[m.inblossom[v]] == 0 {
				m.assignLabel(v, 1, -1)
			}
		}

		var augmented bool
		for {
			augmented = m.growTrees()
			if augmented {
				break
			}
			if done := m.adjustDuals(); done {
				break
			}
		}
		if !augmented {
			break
		}

		for b := m.nvertex; b < 2*m.nvertex; b++ {
			if m.blossomparent[b] == -1 && m.blossombase[b] >= 0 &&
				m.label[b] == 1 && m.dualvar[b] == 0 {
				m.expandBlossom(b, true)
			}
		}
	}
}

// growTrees scans queued S-vertices along tight edges. It reports whether the matching was augmented.
func (m *matcher) growTrees() bool {
	for len(m.queue) > 0 {
		v := m.queue[len(m.queue)-1]
		m.queue = m.queue[:len(m.queue)-1]

		for _, p := range m.neighbend[v] {
			k := p / 2
			w := m.endpoint[p]
			if m.inblossom[v] == m.inblossom[w] {
				continue
			}
			var kslack int64
			if !m.allowedge[k] {
				kslack = m.slack(k)
				if kslack <= 0 {
					m.allowedge[k] = true
				}
			}
			switch {
			case m.allowedge[k]:
				switch {
				case m.label[m.inblossom[w]] == 0:
					m.assignLabel(w, 2, p^1)
				case m.label[m.inblossom[w]] == 1:
					base := m.scanBlossom(v, w)
					if base >= 0 {
						m.addBlossom(base, k)
					} else {
						m.augmentMatching(k)
						return true
					}
				case m.label[w] == 0:
					m.label[w] = 2
					m.labelend[w] = p ^ 1
				}
			case m.label[m.inblossom[w]] == 1:
				b := m.inblossom[v]
				if m.bestedge[b] == -1 || kslack < m.slack(m.bestedge[b]) {
					m.bestedge[b] = k
				}
			case m.label[w] == 0:
				if m.bestedge[w] == -1 || kslack < m.slack(m.bestedge[w]) {
					m.bestedge[w] = k
				}
			}
		}
	}
	return false
}

// adjustDuals applies the smallest dual change that makes progress. It reports
// whether the stage is over without augmentation.
func (m *matcher) adjustDuals() bool {
	const (
		deltaNone = iota
		deltaVertex
		deltaFreeEdge
		deltaBlossomEdge
		deltaExpand
	)
	deltatype := deltaNone
	var delta int64
	deltaedge, deltablossom := -1, -1

	if !m.maxCardinality {
		deltatype = deltaVertex
		delta = slices.Min(m.dualvar[:m.nvertex])
	}
	for v := 0; v < m.nvertex; v++ {
		if m.label[m.inblossom[v]] == 0 && m.bestedge[v] != -1 {
			d := m.slack(m.bestedge[v])
			if deltatype == deltaNone || d < delta {
				delta = d
				deltatype = deltaFreeEdge
				deltaedge = m.bestedge[v]
			}
		}
	}
	for b := 0; b < 2*m.nvertex; b++ {
		if m.blossomparent[b] == -1 && m.label[b] == 1 && m.bestedge[b] != -1 {
			d := m.slack(m.bestedge[b]) / 2
			if deltatype == deltaNone || d < delta {
				delta = d
				deltatype = deltaBlossomEdge
				deltaedge = m.bestedge[b]
			}
		}
	}
	for b := m.nvertex; b < 2*m.nvertex; b++ {
		if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 && m.label[b] == 2 &&
			(deltatype == deltaNone || m.dualvar[b] < delta) {
			delta = m.dualvar[b]
			deltatype = deltaExpand
			deltablossom = b
		}
	}
	if deltatype == deltaNone {
		// only reachable with maxCardinality: no further augmentation is possible
		deltatype = deltaVertex
		delta = max(0, slices.Min(m.dualvar[:m.nvertex]))
	}

	for v := 0; v < m.nvertex; v++ {
		switch m.label[m.inblossom[v]] {
		case 1:
			m.dualvar[v] -= delta
		case 2:
			m.dualvar[v] += delta
		}
	}
	for b := m.nvertex; b < 2*m.nvertex; b++ {
		if m.blossombase[b] >= 0 && m.blossomparent[b] == -1 {
			switch m.label[b] {
			case 1:
				m.dualvar[b] += delta
			case 2:
				m.dualvar[b] -= delta
			}
		}
	}

	switch deltatype {
	case deltaVertex:
		return true
	case deltaFreeEdge:
		m.allowedge[deltaedge] = true
		i, j := m.edges[deltaedge].U, m.edges[deltaedge].V
		if m.label[m.inblossom[i]] == 0 {
			i = j
		}
		m.queue = append(m.queue, i)
	case deltaBlossomEdge:
		m.allowedge[deltaedge] = true
		m.queue = append(m.queue, m.edges[deltaedge].U)
	case deltaExpand:
		m.expandBlossom(deltablossom, false)
	}
	return false
}

func (m *matcher) result() []int {
	mate := make([]int, m.nvertex)
	for v := range mate {
		if m.mate[v] >= 0 {
			mate[v] = m.endpoint[m.mate[v]]
		} else {
			mate[v] = -1
		}
	}
	return mate
}
