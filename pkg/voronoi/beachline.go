package voronoi

import (
	"math"

	"github.com/golang/geo/r2"
)

// beachNode is a node of the beach line. Leaves are arcs, internal nodes are
// breakpoints; an internal node always has two children. Payload never moves
// between nodes, so indices held elsewhere survive rotations.
type beachNode struct {
	parent, left, right int
	height              int

	// лист (дуга)
	site       int
	event      int
	prev, next int

	// внутренний узел (точка излома): lsite слева, rsite справа
	lsite, rsite int
	edge         int
}

func (n *beachNode) isLeaf() bool {
	return n.left == nilIndex
}

// beachLine is an AVL tree over an index arena with threaded leaves.
type beachLine struct {
	nodes []beachNode
	free  []int
	root  int
	sites []r2.Point
}

func newBeachLine(sites []r2.Point) *beachLine {
	return &beachLine{
		nodes: make([]beachNode, 0, 4*len(sites)),
		root:  nilIndex,
		sites: sites,
	}
}

func (b *beachLine) alloc(n beachNode) int {
	if k := len(b.free); k > 0 {
		id := b.free[k-1]
		b.free = b.free[:k-1]
		b.nodes[id] = n
		return id
	}
	b.nodes = append(b.nodes, n)
	return len(b.nodes) - 1
}

func (b *beachLine) release(id int) {
	b.nodes[id] = beachNode{parent: nilIndex, left: nilIndex, right: nilIndex}
	b.free = append(b.free, id)
}

func (b *beachLine) newLeaf(site int) int {
	return b.alloc(beachNode{
		parent: nilIndex, left: nilIndex, right: nilIndex, height: 1,
		site: site, event: nilIndex, prev: nilIndex, next: nilIndex,
		lsite: nilIndex, rsite: nilIndex, edge: nilIndex,
	})
}

func (b *beachLine) newBreakpoint(lsite, rsite, edge, left, right int) int {
	id := b.alloc(beachNode{
		parent: nilIndex, left: left, right: right,
		site: nilIndex, event: nilIndex, prev: nilIndex, next: nilIndex,
		lsite: lsite, rsite: rsite, edge: edge,
	})
	b.nodes[left].parent = id
	b.nodes[right].parent = id
	b.update(id)
	return id
}

func (b *beachLine) empty() bool {
	return b.root == nilIndex
}

// first returns the leftmost arc.
func (b *beachLine) first() int {
	if b.root == nilIndex {
		return nilIndex
	}
	n := b.root
	for !b.nodes[n].isLeaf() {
		n = b.nodes[n].left
	}
	return n
}

// locate returns the arc directly above x for the sweep at y = sweep.
func (b *beachLine) locate(x, sweep float64) int {
	n := b.root
	for n != nilIndex && !b.nodes[n].isLeaf() {
		node := &b.nodes[n]
		if x < breakpointX(b.sites[node.lsite], b.sites[node.rsite], sweep) {
			n = node.left
		} else {
			n = node.right
		}
	}
	return n
}

// replace puts node in old's place under old's parent.
func (b *beachLine) replace(old, node int) {
	parent := b.nodes[old].parent
	b.nodes[node].parent = parent
	switch {
	case parent == nilIndex:
		b.root = node
	case b.nodes[parent].left == old:
		b.nodes[parent].left = node
	default:
		b.nodes[parent].right = node
	}
}

// splitThree replaces arc q with q, p, q. The leaf of q is reused as the left copy.
// It returns the new arc of p and the right copy of q.
func (b *beachLine) splitThree(q, p, leftEdge, rightEdge int) (int, int) {
	qsite := b.nodes[q].site
	pleaf := b.newLeaf(p)
	qright := b.newLeaf(qsite)

	next := b.nodes[q].next
	b.nodes[q].next = pleaf
	b.nodes[pleaf].prev = q
	b.nodes[pleaf].next = qright
	b.nodes[qright].prev = pleaf
	b.nodes[qright].next = next
	if next != nilIndex {
		b.nodes[next].prev = qright
	}

	parent := b.nodes[q].parent
	inner := b.newBreakpoint(p, qsite, rightEdge, pleaf, qright)
	// q еще висит на месте, узел outer займет его позицию
	outer := b.alloc(beachNode{
		parent: nilIndex, left: nilIndex, right: inner,
		site: nilIndex, event: nilIndex, prev: nilIndex, next: nilIndex,
		lsite: qsite, rsite: p, edge: leftEdge,
	})
	b.nodes[inner].parent = outer
	b.replace(q, outer)
	b.nodes[outer].left = q
	b.nodes[q].parent = outer
	b.update(outer)
	b.rebalance(parent)
	return pleaf, qright
}

// splitTwo inserts p beside q when both lie on the sweep line.
// It returns the new arc of p.
func (b *beachLine) splitTwo(q, p, edge int) int {
	pleaf := b.newLeaf(p)
	parent := b.nodes[q].parent
	var bp int
	if b.sites[p].X > b.sites[b.nodes[q].site].X {
		next := b.nodes[q].next
		b.nodes[q].next = pleaf
		b.nodes[pleaf].prev = q
		b.nodes[pleaf].next = next
		if next != nilIndex {
			b.nodes[next].prev = pleaf
		}
		bp = b.alloc(beachNode{
			parent: nilIndex, left: nilIndex, right: pleaf,
			site: nilIndex, event: nilIndex, prev: nilIndex, next: nilIndex,
			lsite: b.nodes[q].site, rsite: p, edge: edge,
		})
		b.replace(q, bp)
		b.nodes[bp].left = q
	} else {
		prev := b.nodes[q].prev
		b.nodes[q].prev = pleaf
		b.nodes[pleaf].next = q
		b.nodes[pleaf].prev = prev
		if prev != nilIndex {
			b.nodes[prev].next = pleaf
		}
		bp = b.alloc(beachNode{
			parent: nilIndex, left: pleaf, right: nilIndex,
			site: nilIndex, event: nilIndex, prev: nilIndex, next: nilIndex,
			lsite: p, rsite: b.nodes[q].site, edge: edge,
		})
		b.replace(q, bp)
		b.nodes[bp].right = q
	}
	b.nodes[q].parent = bp
	b.nodes[pleaf].parent = bp
	b.update(bp)
	b.rebalance(parent)
	return pleaf
}

// boundingBreakpoints returns the breakpoints on the left and on the right of an arc.
func (b *beachLine) boundingBreakpoints(arc int) (left, right int) {
	left, right = nilIndex, nilIndex
	child := arc
	for n := b.nodes[arc].parent; n != nilIndex && (left == nilIndex || right == nilIndex); n = b.nodes[n].parent {
		if b.nodes[n].right == child && left == nilIndex {
			left = n
		}
		if b.nodes[n].left == child && right == nilIndex {
			right = n
		}
		child = n
	}
	return left, right
}

// remove deletes an arc that has neighbours on both sides. The breakpoint that
// survives now separates the two neighbours and traces edge; it is returned.
func (b *beachLine) remove(arc, edge int) int {
	leftBP, rightBP := b.boundingBreakpoints(arc)
	parent := b.nodes[arc].parent

	survivor := leftBP
	if parent == leftBP {
		survivor = rightBP
	}

	prev, next := b.nodes[arc].prev, b.nodes[arc].next
	b.nodes[prev].next = next
	b.nodes[next].prev = prev

	sibling := b.nodes[parent].left
	if sibling == arc {
		sibling = b.nodes[parent].right
	}
	grand := b.nodes[parent].parent
	b.replace(parent, sibling)

	b.nodes[survivor].lsite = b.nodes[prev].site
	b.nodes[survivor].rsite = b.nodes[next].site
	b.nodes[survivor].edge = edge

	b.release(arc)
	b.release(parent)
	b.rebalance(grand)
	return survivor
}

func (b *beachLine) height(n int) int {
	if n == nilIndex {
		return 0
	}
	return b.nodes[n].height
}

func (b *beachLine) update(n int) {
	node := &b.nodes[n]
	if node.isLeaf() {
		node.height = 1
		return
	}
	node.height = 1 + max(b.height(node.left), b.height(node.right))
}

func (b *beachLine) balance(n int) int {
	return b.height(b.nodes[n].left) - b.height(b.nodes[n].right)
}

// rebalance restores heights and the AVL property from n up to the root.
func (b *beachLine) rebalance(n int) {
	for n != nilIndex {
		b.update(n)
		switch bal := b.balance(n); {
		case bal > 1:
			if b.balance(b.nodes[n].left) < 0 {
				b.rotateLeft(b.nodes[n].left)
			}
			n = b.rotateRight(n)
		case bal < -1:
			if b.balance(b.nodes[n].right) > 0 {
				b.rotateRight(b.nodes[n].right)
			}
			n = b.rotateLeft(n)
		}
		n = b.nodes[n].parent
	}
}

// rotateLeft lifts the right child of p and returns it.
func (b *beachLine) rotateLeft(p int) int {
	q := b.nodes[p].right
	b.replace(p, q)
	b.nodes[p].right = b.nodes[q].left
	b.nodes[b.nodes[p].right].parent = p
	b.nodes[q].left = p
	b.nodes[p].parent = q
	b.update(p)
	b.update(q)
	return q
}

// rotateRight lifts the left child of p and returns it.
func (b *beachLine) rotateRight(p int) int {
	q := b.nodes[p].left
	b.replace(p, q)
	b.nodes[p].left = b.nodes[q].right
	b.nodes[b.nodes[p].left].parent = p
	b.nodes[q].right = p
	b.nodes[p].parent = q
	b.update(p)
	b.update(q)
	return q
}

// arcs lists the arcs from left to right.
func (b *beachLine) arcs() []int {
	var out []int
	for n := b.first(); n != nilIndex; n = b.nodes[n].next {
		out = append(out, n)
	}
	return out
}

// arcBounds returns the x-extent of an arc at the given sweep position.
func (b *beachLine) arcBounds(arc int, sweep float64) (float64, float64) {
	lo, hi := math.Inf(-1), math.Inf(1)
	node := &b.nodes[arc]
	if node.prev != nilIndex {
		lo = breakpointX(b.sites[b.nodes[node.prev].site], b.sites[node.site], sweep)
	}
	if node.next != nilIndex {
		hi = breakpointX(b.sites[node.site], b.sites[b.nodes[node.next].site], sweep)
	}
	return lo, hi
}
