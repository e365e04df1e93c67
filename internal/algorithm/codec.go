package algorithm

import (
	"fmt"

	"custombudget/internal/core"
	"custombudget/internal/segment"
)

// Encode writes the kind tag followed by the variant's fixed-size payload.
// Fixed has no payload.
func (a Algorithm) Encode(w *segment.Writer) {
	w.Uint32(uint32(a.kind))

	switch a.kind {
	case ResidentialTotalPopulation:
		w.Float32(a.factors[0])
	case ResidentialWealthGroupPopulation:
		w.Float32(a.factors[0])
		w.Float32(a.factors[1])
		w.Float32(a.factors[2])
	case Tourism:
		w.Float32(a.factors[0])
		w.Int64(a.geopolitics)
	}
}

// Decode reads an algorithm written by Encode.
func Decode(r *segment.Reader) (Algorithm, error) {
	kind := Kind(r.Uint32())
	if err := r.Err(); err != nil {
		return Algorithm{}, err
	}

	var a Algorithm
	switch kind {
	case Fixed:
		a = NewFixed()
	case ResidentialTotalPopulation:
		a = NewResidentialTotalPopulation(r.Float32())
	case ResidentialWealthGroupPopulation:
		a = NewResidentialWealthGroupPopulation(r.Float32(), r.Float32(), r.Float32())
	case Tourism:
		factor := r.Float32()
		geopolitics := r.Int64()
		if err := r.Err(); err != nil {
			return Algorithm{}, err
		}
		var err error
		if a, err = NewTourism(factor, geopolitics); err != nil {
			return Algorithm{}, fmt.Errorf("decode %v: %w", kind, err)
		}
	default:
		return Algorithm{}, fmt.Errorf("decode: %w: tag %d", core.ErrUnknownAlgorithm, uint32(kind))
	}

	if err := r.Err(); err != nil {
		return Algorithm{}, err
	}
	return a, nil
}
