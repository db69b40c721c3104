// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package expr

import (
	"sync"

	"github.com/arborql/arbor/dtype"
	"github.com/arborql/arbor/dynamic"
	"github.com/arborql/arbor/internal/arberr"
	"github.com/arborql/arbor/payload"
	"github.com/arborql/arbor/selector"
)

// OwnedState is the owned/borrowed/unknown tri-state tracked per node
// (spec.md §3.4). It only becomes meaningful once a node has been
// evaluated; before that it is OwnedUnknown.
type OwnedState uint8

const (
	OwnedUnknown OwnedState = iota
	OwnedTrue
	OwnedFalse
)

// RefMode controls whether ChainF anchors the upstream Expr so its
// backing buffer stays reachable for the lifetime of a borrowed view
// (spec.md §3.4/§4.2):
//
//   - RefTrue always anchors — f may return a view into the upstream
//     buffer.
//   - RefFalse never anchors — f always produces a fresh, independently
//     owned result (most aggregation/map kernels, since they allocate).
//   - RefKeep anchors only if the upstream node's ownership is not
//     already known-owned, i.e. it might itself be a borrowed view.
type RefMode uint8

const (
	RefKeep RefMode = iota
	RefTrue
	RefFalse
)

// Evaluator resolves a selector against whatever column source an Expr
// chain is being evaluated within. DataDict implements this; expr never
// imports the datadict package, avoiding an import cycle (spec.md §3.5's
// Context is this interface's sole concrete implementation in arbor).
type Evaluator interface {
	Lookup(sel selector.Selector) (*Expr, error)
}

// ChainFunc is the boxed thunk a chain stage wraps: it consumes the
// resolved payload from the previous stage (or the node's base) plus
// the current Evaluator, and produces the next payload plus whatever
// Evaluator downstream stages should see (spec.md §3.4: "certain
// operations ... consume [the context] and return None").
type ChainFunc func(payload.Data, Evaluator) (payload.Data, Evaluator, error)

func identityChain(d payload.Data, c Evaluator) (payload.Data, Evaluator, error) {
	return d, c, nil
}

type baseKind uint8

const (
	baseIsData baseKind = iota
	baseIsExpr
)

// base is the payload-source slot of an exprNode: either a concrete
// Data payload, or another Expr this node chains from (spec.md §3.4,
// "base: the payload source").
type base struct {
	kind baseKind
	data payload.Data
	expr *Expr
}

// exprNode is the shared, mutex-guarded state behind an Expr handle.
// Two Expr values produced by Clone share the same *exprNode, so
// evaluating one memoizes the result for both — the "Arc<Mutex<...>>"
// sharing spec.md §3.4 describes, implemented here with a plain pointer
// since Go's garbage collector already keeps a shared node (and
// whatever buffers it anchors) alive for as long as any Expr references
// it.
type exprNode struct {
	mu      sync.Mutex
	base    base
	chain   ChainFunc
	step    int
	owned   OwnedState
	name    string
	anchors []*Expr
	castTag *dtype.Tag // see simplify.go
}

// Expr is the lazy, shareable handle to a deferred tensor computation
// (spec.md §3.4). Its zero value is not usable; construct one with
// FromData, FromArr, or FromSelector.
type Expr struct {
	inner *exprNode
}

func newNode(b base, name string, owned OwnedState) *Expr {
	return &Expr{inner: &exprNode{base: b, chain: identityChain, step: 0, owned: owned, name: name}}
}

// FromData wraps an already-available payload as a leaf Expr (step 0,
// nothing pending).
func FromData(d payload.Data) *Expr {
	return newNode(base{kind: baseIsData, data: d}, "", ownedOf(d))
}

// FromArr wraps a single dynamic tensor as a leaf Expr.
func FromArr(a dynamic.ArrOk) *Expr { return FromData(payload.FromArr(a)) }

// FromSelector builds a leaf Expr whose base is a deferred lookup,
// resolved against whatever Evaluator is supplied the first time the
// Expr is evaluated (spec.md §3.4/§4.5).
func FromSelector(sel selector.Selector) *Expr {
	return newNode(base{kind: baseIsData, data: payload.FromSelector(sel)}, "", OwnedUnknown)
}

func ownedOf(d payload.Data) OwnedState {
	if d.Kind == payload.KContext {
		return OwnedUnknown
	}
	if d.IsOwned() {
		return OwnedTrue
	}
	return OwnedFalse
}

// Name reports the node's display name (e.g. the originating DataDict
// column name), empty if never set.
func (e *Expr) Name() string {
	e.inner.mu.Lock()
	defer e.inner.mu.Unlock()
	return e.inner.name
}

// Rename returns e itself after setting its display name; renaming does
// not create a new node since it does not affect the value a chain
// computes, only how a DataDict labels the resulting column.
func (e *Expr) Rename(name string) *Expr {
	e.inner.mu.Lock()
	e.inner.name = name
	e.inner.mu.Unlock()
	return e
}

// Step reports the number of chain stages still pending evaluation.
func (e *Expr) Step() int {
	e.inner.mu.Lock()
	defer e.inner.mu.Unlock()
	return e.inner.step
}

// Owned reports the node's current owned/borrowed/unknown tri-state.
func (e *Expr) Owned() OwnedState {
	e.inner.mu.Lock()
	defer e.inner.mu.Unlock()
	return e.inner.owned
}

// Clone returns a new Expr handle sharing the same underlying node, so
// evaluating either one evaluates and memoizes the chain exactly once
// (spec.md §8's lazy-purity property: "clone().value(ctx) equals the
// original's value(ctx) without recomputation").
func (e *Expr) Clone() *Expr { return &Expr{inner: e.inner} }

// dataSnapshot reads the node's current base payload under lock. Only
// meaningful once Step() == 0.
func (e *Expr) dataSnapshot() payload.Data {
	e.inner.mu.Lock()
	defer e.inner.mu.Unlock()
	return e.inner.base.data
}

// ChainF appends a transformation stage to e (spec.md §4.2): it
// allocates a new node whose base is e itself and whose chain is f,
// rather than mutating e's node in place. This always takes the
// "shared, copy-on-write" branch of spec.md §9's "unique -> mutate;
// shared -> copy-on-write" contract, which is sufficient to satisfy the
// same observable behavior (every chain extension is safe regardless of
// how many other Expr handles alias e) at the cost of the in-place fast
// path Rust's unique-Arc check would otherwise take.
func (e *Expr) ChainF(f ChainFunc, mode RefMode) *Expr {
	out := &exprNode{
		base:    base{kind: baseIsExpr, expr: e},
		chain:   f,
		step:    1,
		owned:   OwnedUnknown,
		name:    e.Name(),
		anchors: anchorsFor(mode, e),
	}
	return &Expr{inner: out}
}

func anchorsFor(mode RefMode, e *Expr) []*Expr {
	switch mode {
	case RefTrue:
		return []*Expr{e}
	case RefFalse:
		return nil
	default: // RefKeep
		if e.Owned() == OwnedTrue {
			return nil
		}
		return []*Expr{e}
	}
}

// resolveContext looks d up against ctx if d is a deferred selector
// lookup, evaluating the resolved Expr and returning its payload. The
// context is consumed (nil returned) once a lookup has happened,
// matching spec.md §3.4's "selector resolution ... consumes [the
// context] and returns None".
func resolveContext(d payload.Data, ctx Evaluator) (payload.Data, Evaluator, error) {
	if d.Kind != payload.KContext {
		return d, ctx, nil
	}
	if ctx == nil {
		return payload.Data{}, nil, arberr.ErrSelectorMiss
	}
	col, err := ctx.Lookup(d.Ctx)
	if err != nil {
		return payload.Data{}, nil, err
	}
	if _, err := col.EvalInplace(ctx); err != nil {
		return payload.Data{}, nil, err
	}
	return col.dataSnapshot(), nil, nil
}

// EvalInplace forces e's chain to run to completion, installing the
// result as the new base and resetting Step() to 0 (spec.md §3.4's
// lifecycle: "Install the result as the new base ... bump step back to
// 0"). It is idempotent and memoized: calling it again on an
// already-evaluated node is a no-op.
//
// Expr evaluation itself is single-threaded per spec.md §5 ("Concurrency
// model: single-threaded cooperative expression evaluation"); only the
// kernels a chain stage calls into may fork across arbor's worker pool.
// EvalInplace therefore does not need to defend against concurrent
// evaluation of the same node from two goroutines.
func (e *Expr) EvalInplace(ctx Evaluator) (Evaluator, error) {
	inner := e.inner
	inner.mu.Lock()
	defer inner.mu.Unlock()

	if inner.step == 0 {
		switch inner.base.kind {
		case baseIsExpr:
			return inner.base.expr.EvalInplace(ctx)
		default:
			resolved, newCtx, err := resolveContext(inner.base.data, ctx)
			if err != nil {
				return ctx, err
			}
			inner.base.data = resolved
			return newCtx, nil
		}
	}

	chain := inner.chain
	baseVal := inner.base
	inner.chain = identityChain
	inner.base = base{}

	var inData payload.Data
	var err error
	switch baseVal.kind {
	case baseIsExpr:
		ctx, err = baseVal.expr.EvalInplace(ctx)
		if err != nil {
			inner.chain = chain
			inner.base = baseVal
			return ctx, err
		}
		inData = baseVal.expr.dataSnapshot()
	default:
		inData, ctx, err = resolveContext(baseVal.data, ctx)
		if err != nil {
			inner.chain = chain
			inner.base = baseVal
			return ctx, err
		}
	}

	outData, newCtx, err := chain(inData, ctx)
	if err != nil {
		inner.chain = chain
		inner.base = baseVal
		return ctx, err
	}

	inner.base = base{kind: baseIsData, data: outData}
	inner.owned = ownedOf(outData)
	if inner.owned == OwnedTrue {
		inner.anchors = nil
	}
	inner.step = 0
	return newCtx, nil
}

// TryView returns e's current payload without forcing evaluation,
// failing with ErrNotEvaluated if a chain is still pending.
func (e *Expr) TryView() (payload.Data, error) {
	inner := e.inner
	inner.mu.Lock()
	defer inner.mu.Unlock()
	if inner.step != 0 || inner.base.kind != baseIsData || inner.base.data.Kind == payload.KContext {
		return payload.Data{}, arberr.ErrNotEvaluated
	}
	return inner.base.data, nil
}

// Value evaluates e against ctx and returns its resulting payload — the
// terminal operation most callers use, combining EvalInplace and
// TryView (spec.md §4.2).
func (e *Expr) Value(ctx Evaluator) (payload.Data, error) {
	if _, err := e.EvalInplace(ctx); err != nil {
		return payload.Data{}, err
	}
	return e.TryView()
}

// Arr is a convenience wrapper around Value for the common case of a
// single-tensor result, panicking on a Vec/shared-OLS payload mismatch
// the same way payload.Data.AsArr does.
func (e *Expr) Arr(ctx Evaluator) (dynamic.ArrOk, error) {
	d, err := e.Value(ctx)
	if err != nil {
		return dynamic.ArrOk{}, err
	}
	return d.AsArr(), nil
}
