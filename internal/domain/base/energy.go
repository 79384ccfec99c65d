package base

import (
	"time"

	"github.com/stellaredge/empire-engine/internal/domain/catalog"
)

// EnergyBalance is the derived energy view of one base.
// Invariant: Balance == Produced - Consumed.
type EnergyBalance struct {
	Produced int
	Consumed int
	Balance  int
}

// ComputeEnergyBalance sums the energy deltas of the base's
// effectively active buildings plus the terrain-derived solar and gas
// output. Producers contribute positive deltas, consumers negative.
// Pure; used both for status views and, via Project, for admission.
func ComputeEnergyBalance(b *Base, records []*BuildingRecord, lookup catalog.Lookup, now time.Time) (EnergyBalance, error) {
	produced := 0
	consumed := 0

	for _, rec := range records {
		if !IsEffectivelyActive(rec, now) {
			continue
		}
		spec, err := lookup.GetSpec(rec.CatalogKey)
		if err != nil {
			return EnergyBalance{}, err
		}

		produced += spec.SolarEnergyPerRating * b.SolarRating * rec.Level
		produced += spec.GasEnergyPerRating * b.GasRating * rec.Level

		delta := spec.EnergyDelta * rec.Level
		if delta >= 0 {
			produced += delta
		} else {
			consumed += -delta
		}
	}

	return EnergyBalance{
		Produced: produced,
		Consumed: consumed,
		Balance:  produced - consumed,
	}, nil
}

// Project returns the balance after applying a proposed structure's
// per-level energy delta, without mutating the snapshot.
func (e EnergyBalance) Project(delta int) int {
	return e.Balance + delta
}
