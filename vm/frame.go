package vm

import (
	"github.com/hetu-lang/hetu/class"
	"github.com/hetu-lang/hetu/function"
	"github.com/hetu-lang/hetu/namespace"
	"github.com/hetu-lang/hetu/values"
)

// LoopRecord tracks one active loop's jump targets and the namespace it was
// entered with, so break/continue can unwind to the right ip and scope
// (§3 "Stack frame").
type LoopRecord struct {
	StartIP     int
	ContinueIP  int
	BreakIP     int
	Namespace   *namespace.Namespace
}

// Frame is one call/script-body activation (§3 "Stack frame"): a fixed
// register bank, a namespace (variable storage lives there, not in the
// frame), the loop-record stack consulted by breakLoop/continueLoop, and
// the goto-anchor stack consulted by the Anchor/Goto opcode pair.
type Frame struct {
	Function  *function.Function // nil for the top-level {main} frame
	Namespace *namespace.Namespace
	This      *values.Value

	Registers      RegisterBank
	LoopStack      []LoopRecord
	AnchorStack    []int
	NamespaceStack []*namespace.Namespace

	// CallArgs/CallNamed accumulate a pending call's arguments between the
	// Register pushes that build them and the Call instruction that
	// consumes them (§4.H "Call").
	CallArgs  []*values.Value
	CallNamed map[string]*values.Value

	// ClassStack holds the class declaration(s) currently open (§4.E "Class
	// decl sequence"); VarDecl/FuncDecl route into the innermost entry's
	// field/method table instead of the frame's namespace while non-empty.
	ClassStack []*class.Class

	IP   int
	Line int
	File string
}

// NewFrame creates a fresh activation over ns.
func NewFrame(fn *function.Function, ns *namespace.Namespace, this *values.Value) *Frame {
	return &Frame{Function: fn, Namespace: ns, This: this}
}

func (f *Frame) pushLoop(rec LoopRecord) { f.LoopStack = append(f.LoopStack, rec) }

func (f *Frame) popLoop() {
	if len(f.LoopStack) == 0 {
		return
	}
	f.LoopStack = f.LoopStack[:len(f.LoopStack)-1]
}

func (f *Frame) currentLoop() (LoopRecord, bool) {
	if len(f.LoopStack) == 0 {
		return LoopRecord{}, false
	}
	return f.LoopStack[len(f.LoopStack)-1], true
}

func (f *Frame) pushNamespace(ns *namespace.Namespace) {
	f.NamespaceStack = append(f.NamespaceStack, f.Namespace)
	f.Namespace = ns
}

func (f *Frame) popNamespace() {
	if len(f.NamespaceStack) == 0 {
		return
	}
	idx := len(f.NamespaceStack) - 1
	f.Namespace = f.NamespaceStack[idx]
	f.NamespaceStack = f.NamespaceStack[:idx]
}

func (f *Frame) pushAnchor(ip int) { f.AnchorStack = append(f.AnchorStack, ip) }

func (f *Frame) popAnchor() (int, bool) {
	if len(f.AnchorStack) == 0 {
		return 0, false
	}
	ip := f.AnchorStack[len(f.AnchorStack)-1]
	f.AnchorStack = f.AnchorStack[:len(f.AnchorStack)-1]
	return ip, true
}
