// Package game holds the deterministic activity engines. Engines are
// pure functions over activity payloads; all randomness flows through
// the Source interface so tests can inject fixed draws.
package game

import "math/rand/v2"

type Source interface {
	IntN(n int) int
	Float64() float64
}

type systemSource struct{}

func (systemSource) IntN(n int) int   { return rand.IntN(n) }
func (systemSource) Float64() float64 { return rand.Float64() }

func NewSource() Source {
	return systemSource{}
}
