package voronoi

// rbTree - красно-черное дерево с прошивкой previous/next.
// Используется очередью событий: first всегда указывает на минимальный элемент,
// поэтому извлечение следующего события - O(log n) без поиска.
type rbTree[T any] struct {
	root  *rbNode[T]
	first *rbNode[T]
	size  int
	less  func(a, b T) bool
}

type rbNode[T any] struct {
	value    T
	left     *rbNode[T]
	right    *rbNode[T]
	parent   *rbNode[T]
	previous *rbNode[T]
	next     *rbNode[T]
	red      bool
}

func newRBTree[T any](less func(a, b T) bool) *rbTree[T] {
	return &rbTree[T]{less: less}
}

func (t *rbTree[T]) Len() int {
	return t.size
}

// Insert places value after every element that is not greater than it,
// so equal values keep insertion order.
func (t *rbTree[T]) Insert(value T) *rbNode[T] {
	var predecessor *rbNode[T]
	node := t.root
	for node != nil {
		if t.less(value, node.value) {
			if node.left == nil {
				predecessor = node.previous
				break
			}
			node = node.left
		} else {
			if node.right == nil {
				predecessor = node
				break
			}
			node = node.right
		}
	}
	return t.insertSuccessor(predecessor, value)
}

// PopFirst removes and returns the smallest value.
func (t *rbTree[T]) PopFirst() (T, bool) {
	var zero T
	if t.first == nil {
		return zero, false
	}
	node := t.first
	t.removeNode(node)
	return node.value, true
}

// Each walks the values in order until fn returns false.
func (t *rbTree[T]) Each(fn func(T) bool) {
	for node := t.first; node != nil; node = node.next {
		if !fn(node.value) {
			return
		}
	}
}

func (t *rbTree[T]) insertSuccessor(node *rbNode[T], value T) *rbNode[T] {
	successor := &rbNode[T]{value: value}
	t.size++

	var parent *rbNode[T]
	if node != nil {
		successor.previous = node
		successor.next = node.next
		if node.next != nil {
			node.next.previous = successor
		}
		node.next = successor
		if node.right != nil {
			node = t.getFirst(node.right)
			node.left = successor
		} else {
			node.right = successor
		}
		parent = node
	} else if t.root != nil {
		node = t.getFirst(t.root)
		successor.next = node
		node.previous = successor
		node.left = successor
		parent = node
	} else {
		t.root = successor
	}
	if successor.previous == nil {
		t.first = successor
	}
	successor.parent = parent
	successor.red = true

	node = successor
	for parent != nil && parent.red {
		grandpa := parent.parent
		if parent == grandpa.left {
			uncle := grandpa.right
			if uncle != nil && uncle.red {
				parent.red = false
				uncle.red = false
				grandpa.red = true
				node = grandpa
			} else {
				if node == parent.right {
					t.rotateLeft(parent)
					node = parent
					parent = node.parent
				}
				parent.red = false
				grandpa.red = true
				t.rotateRight(grandpa)
			}
		} else {
			uncle := grandpa.left
			if uncle != nil && uncle.red {
				parent.red = false
				uncle.red = false
				grandpa.red = true
				node = grandpa
			} else {
				if node == parent.left {
					t.rotateRight(parent)
					node = parent
					parent = node.parent
				}
				parent.red = false
				grandpa.red = true
				t.rotateLeft(grandpa)
			}
		}
		parent = node.parent
	}
	t.root.red = false
	return successor
}

func (t *rbTree[T]) removeNode(node *rbNode[T]) {
	t.size--
	if t.first == node {
		t.first = node.next
	}
	if node.next != nil {
		node.next.previous = node.previous
	}
	if node.previous != nil {
		node.previous.next = node.next
	}
	node.next = nil
	node.previous = nil

	parent := node.parent
	left := node.left
	right := node.right
	var next *rbNode[T]
	switch {
	case left == nil:
		next = right
	case right == nil:
		next = left
	default:
		next = t.getFirst(right)
	}
	if parent != nil {
		if parent.left == node {
			parent.left = next
		} else {
			parent.right = next
		}
	} else {
		t.root = next
	}

	var isRed bool
	if left != nil && right != nil {
		isRed = next.red
		next.red = node.red
		next.left = left
		left.parent = next
		if next != right {
			parent = next.parent
			next.parent = node.parent
			node = next.right
			parent.left = node
			next.right = right
			right.parent = next
		} else {
			next.parent = parent
			parent = next
			node = next.right
		}
	} else {
		isRed = node.red
		node = next
	}
	if node != nil {
		node.parent = parent
	}
	if isRed {
		return
	}
	if node != nil && node.red {
		node.red = false
		return
	}

	for node != t.root {
		var sibling *rbNode[T]
		if node == parent.left {
			sibling = parent.right
			if sibling.red {
				sibling.red = false
				parent.red = true
				t.rotateLeft(parent)
				sibling = parent.right
			}
			if isRedNode(sibling.left) || isRedNode(sibling.right) {
				if !isRedNode(sibling.right) {
					sibling.left.red = false
					sibling.red = true
					t.rotateRight(sibling)
					sibling = parent.right
				}
				sibling.red = parent.red
				parent.red = false
				sibling.right.red = false
				t.rotateLeft(parent)
				node = t.root
				break
			}
		} else {
			sibling = parent.left
			if sibling.red {
				sibling.red = false
				parent.red = true
				t.rotateRight(parent)
				sibling = parent.left
			}
			if isRedNode(sibling.left) || isRedNode(sibling.right) {
				if !isRedNode(sibling.left) {
					sibling.right.red = false
					sibling.red = true
					t.rotateLeft(sibling)
					sibling = parent.left
				}
				sibling.red = parent.red
				parent.red = false
				sibling.left.red = false
				t.rotateRight(parent)
				node = t.root
				break
			}
		}
		sibling.red = true
		node = parent
		parent = parent.parent
		if node.red {
			break
		}
	}
	if node != nil {
		node.red = false
	}
}

func isRedNode[T any](node *rbNode[T]) bool {
	return node != nil && node.red
}

func (t *rbTree[T]) rotateLeft(p *rbNode[T]) {
	q := p.right
	parent := p.parent
	if parent != nil {
		if parent.left == p {
			parent.left = q
		} else {
			parent.right = q
		}
	} else {
		t.root = q
	}
	q.parent = parent
	p.parent = q
	p.right = q.left
	if p.right != nil {
		p.right.parent = p
	}
	q.left = p
}

func (t *rbTree[T]) rotateRight(p *rbNode[T]) {
	q := p.left
	parent := p.parent
	if parent != nil {
		if parent.left == p {
			parent.left = q
		} else {
			parent.right = q
		}
	} else {
		t.root = q
	}
	q.parent = parent
	p.parent = q
	p.left = q.right
	if p.left != nil {
		p.left.parent = p
	}
	q.right = p
}

func (t *rbTree[T]) getFirst(node *rbNode[T]) *rbNode[T] {
	for node.left != nil {
		node = node.left
	}
	return node
}
