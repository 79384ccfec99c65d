package queue

import (
	"fmt"

	"github.com/stellaredge/empire-engine/internal/domain/catalog"
)

// Kind names one of the per-base order queues
type Kind string

const (
	KindStructure Kind = "STRUCTURE"
	KindTech      Kind = "TECH"
	KindUnit      Kind = "UNIT"
	KindDefense   Kind = "DEFENSE"
)

// IsValid checks whether the kind is one of the known values
func (k Kind) IsValid() bool {
	switch k {
	case KindStructure, KindTech, KindUnit, KindDefense:
		return true
	}
	return false
}

// KindForCatalog maps a catalog entry kind to its queue
func KindForCatalog(ck catalog.Kind) (Kind, error) {
	switch ck {
	case catalog.KindStructure:
		return KindStructure, nil
	case catalog.KindTech:
		return KindTech, nil
	case catalog.KindUnit:
		return KindUnit, nil
	case catalog.KindDefense:
		return KindDefense, nil
	}
	return "", fmt.Errorf("no queue for catalog kind %q", ck)
}
