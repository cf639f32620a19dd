package model

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/sametz/fit-o-mat/expr"
)

// Registry arbitrates between models in a multi-model session. Compilation
// results are cached by an xxHash64 of formula source and parameter
// declaration, and exactly one model is active at a time.
type Registry struct {
	models map[uint64]*Model
	active *Model
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[uint64]*Model)}
}

// cacheKey hashes the formula source, the free-parameter declaration, and
// the fixed-parameter bindings. Fixed values participate because they are
// baked into the compiled preamble; changing one must miss the cache.
func cacheKey(src, decl string, params ParamSet) uint64 {
	digest := xxhash.New()
	_, _ = digest.WriteString(src)
	_, _ = digest.Write([]byte{0})
	_, _ = digest.WriteString(decl)
	for _, p := range params {
		if p.Free {
			continue
		}
		_, _ = digest.Write([]byte{0})
		_, _ = digest.WriteString(p.Name)
		_, _ = digest.WriteString(fmt.Sprintf("=%x", math.Float64bits(p.Value)))
	}

	return digest.Sum64()
}

// Activate compiles src against the free parameters of params and makes the
// resulting model active, retiring the previous one. On compilation failure
// the previous model stays active and the error is returned.
//
// A cache hit reuses the compiled formula but rebinds the parameter set, so
// switching back to an earlier formula does not recompile it.
func (r *Registry) Activate(src string, params ParamSet, opts ...expr.Option) (*Model, error) {
	decl := params.Decl()
	key := cacheKey(src, decl, params)

	var m *Model
	if cached, ok := r.models[key]; ok {
		rebound, err := New(cached.Compiled(), params)
		if err != nil {
			return nil, err
		}
		m = rebound
	} else {
		fixed := fixedConsts(params)
		compileOpts := make([]expr.Option, 0, len(opts)+len(fixed))
		for name, val := range fixed {
			compileOpts = append(compileOpts, expr.WithConst(name, val))
		}
		compileOpts = append(compileOpts, opts...)

		compiled, err := expr.Compile(src, decl, params.FreeValues(), compileOpts...)
		if err != nil {
			return nil, err
		}
		built, err := New(compiled, params)
		if err != nil {
			return nil, err
		}
		m = built
	}

	if r.active != nil {
		r.active.Retire()
	}
	m.Activate()
	r.models[key] = m
	r.active = m

	return m, nil
}

// Active returns the currently active model, or nil before the first
// successful Activate.
func (r *Registry) Active() *Model { return r.active }

// fixedConsts collects fixed parameters for the compile-time preamble. Later
// duplicates win, matching Lookup.
func fixedConsts(params ParamSet) map[string]float64 {
	out := make(map[string]float64)
	for _, p := range params {
		if !p.Free {
			out[p.Name] = p.Value
		}
	}

	return out
}
