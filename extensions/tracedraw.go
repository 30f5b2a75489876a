package extensions

import (
	"fmt"
	"log/slog"

	"github.com/m1gwings/treedrawer/tree"

	lazyslot "github.com/lazyslot/lazyslot-go"
)

// TraceDrawExtension logs a drawing of the owner's resolution trace when a
// computation fails, making nested and forwarded resolutions visible at a
// glance.
//
// Usage:
//
//	handler := extensions.NewHumanHandler(os.Stderr, slog.LevelError)
//	owner := lazyslot.NewOwner("Schema",
//	    lazyslot.WithExtension(extensions.NewTraceDrawExtension(handler)),
//	)
type TraceDrawExtension struct {
	lazyslot.BaseExtension
	logger *slog.Logger
}

// NewTraceDrawExtension creates a new trace drawing extension.
// logHandler: slog.Handler for output (HumanHandler recommended)
func NewTraceDrawExtension(logHandler slog.Handler) *TraceDrawExtension {
	return &TraceDrawExtension{
		BaseExtension: lazyslot.NewBaseExtension("trace-draw"),
		logger:        slog.New(logHandler),
	}
}

// OnError logs the drawn resolution trace for the failing owner
func (e *TraceDrawExtension) OnError(err error, op *lazyslot.Operation, o *lazyslot.Owner) {
	e.logger.Error("resolution failed",
		"owner", o.Name(),
		"attr", op.Attr,
		"error", err.Error(),
		"trace", Draw(o.Trace()),
	)
}

// Draw renders a resolution trace as a tree, one node per recorded
// resolution, nested the way the computations nested at runtime.
func Draw(tr *lazyslot.ResolutionTrace) string {
	t := tree.NewTree(tree.NodeString("resolutions"))
	drawInto(t, tr, tr.Roots())
	return t.String()
}

func drawInto(t *tree.Tree, tr *lazyslot.ResolutionTrace, nodes []lazyslot.ResolutionNode) {
	for i, n := range nodes {
		t.AddChild(tree.NodeString(nodeLabel(n)))
		child, err := t.Child(i)
		if err != nil {
			continue
		}
		drawInto(child, tr, tr.Children(n.ID))
	}
}

func nodeLabel(n lazyslot.ResolutionNode) string {
	label := fmt.Sprintf("%s.%s %s", n.Owner, n.Attr, n.Status)
	if n.Err != nil {
		label = fmt.Sprintf("%s: %v", label, n.Err)
	}
	return label
}
