package domain

import "strings"

type UnitClass string

func (u UnitClass) String() string {
	return string(u)
}

const (
	UnitWeight UnitClass = "weight" // kg, sold down to grams
	UnitVolume UnitClass = "volume" // liters, sold down to ml
	UnitCount  UnitClass = "count"  // whole packs/pieces
	UnitOther  UnitClass = "other"
)

// DefaultUnitLabel is used when a catalog row carries no unit column.
const DefaultUnitLabel = "Kg"

var unitLabels = map[string]UnitClass{
	"kg":       UnitWeight,
	"kilogram": UnitWeight,
	"kgs":      UnitWeight,
	"liter":    UnitVolume,
	"litre":    UnitVolume,
	"l":        UnitVolume,
	"liters":   UnitVolume,
	"litres":   UnitVolume,
	"pack":     UnitCount,
	"packs":    UnitCount,
	"pcs":      UnitCount,
	"piece":    UnitCount,
	"pieces":   UnitCount,
}

// ClassifyUnit maps a free-text unit label onto its unit class.
func ClassifyUnit(label string) UnitClass {
	if class, ok := unitLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return class
	}
	return UnitOther
}

func (u UnitClass) IsDiscrete() bool {
	return u == UnitCount
}
