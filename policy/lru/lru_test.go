package lru

import (
	"testing"

	"github.com/IvanBrykalov/splaycache/policy"
)

// --- test doubles ---

type testNode[V any] struct {
	v V
}

func (n *testNode[V]) Value() *V { return &n.v }

type mockHooks[V any] struct {
	pushFrontCnt   int
	moveToFrontCnt int

	lastPush policy.Node[V]
	lastMove policy.Node[V]

	backVal policy.Node[V]
}

func (h *mockHooks[V]) MoveToFront(n policy.Node[V]) { h.moveToFrontCnt++; h.lastMove = n }
func (h *mockHooks[V]) PushFront(n policy.Node[V])   { h.pushFrontCnt++; h.lastPush = n }
func (h *mockHooks[V]) Back() policy.Node[V]         { return h.backVal }

// --- tests ---

// OnAdd should push the node to MRU.
func TestLRU_OnAdd_PushFront(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	n := &testNode[int]{v: 1}
	p.OnAdd(n)

	if h.pushFrontCnt != 1 || h.lastPush != n {
		t.Fatalf("OnAdd must call PushFront exactly once with the node")
	}
	if h.moveToFrontCnt != 0 {
		t.Fatalf("OnAdd must not call MoveToFront")
	}
}

// OnGet and OnUpdate should both promote the node to MRU.
func TestLRU_OnGetOnUpdate_MoveToFront(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	a := &testNode[int]{v: 2}
	b := &testNode[int]{v: 3}
	p.OnGet(a)
	if h.moveToFrontCnt != 1 || h.lastMove != a {
		t.Fatalf("OnGet must call MoveToFront exactly once with the node")
	}
	p.OnUpdate(b)
	if h.moveToFrontCnt != 2 || h.lastMove != b {
		t.Fatalf("OnUpdate must call MoveToFront with the node")
	}
	if h.pushFrontCnt != 0 {
		t.Fatalf("OnGet/OnUpdate must not call PushFront")
	}
}

// OnRemove is a no-op for pure LRU.
func TestLRU_OnRemove_NoOp(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	p.OnRemove(&testNode[int]{v: 4})

	if h.pushFrontCnt != 0 || h.moveToFrontCnt != 0 {
		t.Fatalf("OnRemove for LRU must be no-op (no hooks should be called)")
	}
}

// Victim is whatever the list reports as its back.
func TestLRU_Victim_Back(t *testing.T) {
	t.Parallel()

	h := &mockHooks[int]{}
	p := New[int]().New(h)

	if v := p.Victim(); v != nil {
		t.Fatalf("Victim on empty list must be nil, got %v", v)
	}
	tail := &testNode[int]{v: 5}
	h.backVal = tail
	if v := p.Victim(); v != tail {
		t.Fatalf("Victim must return Back(), got %v", v)
	}
}
