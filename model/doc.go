// Package model owns the fit model: the compiled formula, the full parameter
// vector (free and fixed), and the simulation cache used by dependent plots.
//
// A Model is either Active or Retired. Retiring happens when another model
// supersedes it in a multi-model session; a retired model stops evaluating
// and keeps serving its cached curve. The Registry arbitrates this: it caches
// compiled models by an xxHash64 of formula source plus parameter
// declaration, activates newly compiled models atomically, and keeps the
// previous model active when compilation fails.
package model
