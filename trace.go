package lazyslot

import (
	"sync"
	"time"
)

// ResolutionStatus is the outcome recorded for a trace node
type ResolutionStatus string

const (
	// StatusRunning indicates a computation still in flight (or one that
	// panicked before reporting an outcome)
	StatusRunning ResolutionStatus = "running"
	// StatusResolved indicates a successful computation
	StatusResolved ResolutionStatus = "resolved"
	// StatusFailed indicates a failed computation
	StatusFailed ResolutionStatus = "failed"
	// StatusForwarded indicates a re-entrant read answered with the forward
	// value
	StatusForwarded ResolutionStatus = "forwarded"
)

// ResolutionNode is one recorded resolution event
type ResolutionNode struct {
	ID        uint64
	Attr      string
	Owner     string
	Goroutine int64
	Depth     int
	// Parent is the node of the enclosing computation on the same
	// goroutine, 0 for top-level resolutions.
	Parent uint64
	Start  time.Time
	End    time.Time
	Status ResolutionStatus
	Err    error
}

// ResolutionTrace is a bounded record of an owner's resolutions, kept for
// debugging and observability. Nesting follows the call stack: a node's
// parent is the computation that was running on the same goroutine when the
// node started.
type ResolutionTrace struct {
	mu      sync.Mutex
	nodes   []*ResolutionNode
	open    map[int64][]*ResolutionNode
	nextID  uint64
	cap     int
	dropped int
}

func newResolutionTrace(capacity int) *ResolutionTrace {
	return &ResolutionTrace{
		nodes: make([]*ResolutionNode, 0, 32),
		open:  make(map[int64][]*ResolutionNode),
		cap:   capacity,
	}
}

// push opens a node for a computation that is starting on gid.
func (t *ResolutionTrace) push(attr, owner string, gid int64, depth int) *ResolutionNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	n := &ResolutionNode{
		ID:        t.nextID,
		Attr:      attr,
		Owner:     owner,
		Goroutine: gid,
		Depth:     depth,
		Start:     time.Now(),
		Status:    StatusRunning,
	}
	if stack := t.open[gid]; len(stack) > 0 {
		n.Parent = stack[len(stack)-1].ID
	}
	t.open[gid] = append(t.open[gid], n)
	t.record(n)
	return n
}

// pop closes the goroutine's stack entry for n. Runs on every exit path,
// panics included, so parenting stays correct afterwards.
func (t *ResolutionTrace) pop(gid int64, n *ResolutionNode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stack := t.open[gid]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == n {
			stack = append(stack[:i], stack[i+1:]...)
			break
		}
	}
	if len(stack) == 0 {
		delete(t.open, gid)
	} else {
		t.open[gid] = stack
	}
}

// finish records the outcome of a pushed node.
func (t *ResolutionTrace) finish(n *ResolutionNode, status ResolutionStatus, err error) {
	t.mu.Lock()
	n.End = time.Now()
	n.Status = status
	n.Err = err
	t.mu.Unlock()
}

// event records an instantaneous node (forward-value returns).
func (t *ResolutionTrace) event(attr, owner string, gid int64, depth int, status ResolutionStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	now := time.Now()
	n := &ResolutionNode{
		ID:        t.nextID,
		Attr:      attr,
		Owner:     owner,
		Goroutine: gid,
		Depth:     depth,
		Start:     now,
		End:       now,
		Status:    status,
	}
	if stack := t.open[gid]; len(stack) > 0 {
		n.Parent = stack[len(stack)-1].ID
	}
	t.record(n)
}

// record appends a node, honoring the capacity bound. Caller holds t.mu.
func (t *ResolutionTrace) record(n *ResolutionNode) {
	if t.cap > 0 && len(t.nodes) >= t.cap {
		t.dropped++
		return
	}
	t.nodes = append(t.nodes, n)
}

// Nodes returns a snapshot of all recorded nodes in recording order
func (t *ResolutionTrace) Nodes() []ResolutionNode {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]ResolutionNode, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = *n
	}
	return out
}

// Roots returns the recorded top-level resolutions
func (t *ResolutionTrace) Roots() []ResolutionNode {
	return t.Filter(func(n ResolutionNode) bool {
		return n.Parent == 0
	})
}

// Children returns the recorded nodes nested directly under id
func (t *ResolutionTrace) Children(id uint64) []ResolutionNode {
	return t.Filter(func(n ResolutionNode) bool {
		return n.Parent == id
	})
}

// Walk visits the node id and its descendants depth-first. Returning false
// from fn stops the walk.
func (t *ResolutionTrace) Walk(id uint64, fn func(ResolutionNode) bool) {
	var node ResolutionNode
	found := false
	for _, n := range t.Nodes() {
		if n.ID == id {
			node = n
			found = true
			break
		}
	}
	if !found {
		return
	}
	t.walk(node, fn)
}

func (t *ResolutionTrace) walk(n ResolutionNode, fn func(ResolutionNode) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range t.Children(n.ID) {
		if !t.walk(child, fn) {
			return false
		}
	}
	return true
}

// Filter returns the recorded nodes matching fn, in recording order
func (t *ResolutionTrace) Filter(fn func(ResolutionNode) bool) []ResolutionNode {
	var out []ResolutionNode
	for _, n := range t.Nodes() {
		if fn(n) {
			out = append(out, n)
		}
	}
	return out
}

// Dropped returns how many nodes were discarded due to the capacity bound
func (t *ResolutionTrace) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}
