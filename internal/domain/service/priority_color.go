package service

import "mtasks/internal/domain/valueobject"

// PriorityPalette maps priorities to display colors
type PriorityPalette struct {
	High     string `yaml:"high"`
	Medium   string `yaml:"medium"`
	Low      string `yaml:"low"`
	Fallback string `yaml:"fallback"`
}

// DefaultPriorityPalette returns the built-in red/orange/green palette
func DefaultPriorityPalette() PriorityPalette {
	return PriorityPalette{
		High:     "#FF3B30",
		Medium:   "#FF9500",
		Low:      "#34C759",
		Fallback: "#8E8E93",
	}
}

// Color returns the color for p, or the fallback for unknown values.
// Empty entries take the default palette's value.
func (pp PriorityPalette) Color(p valueobject.Priority) string {
	def := DefaultPriorityPalette()
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}

	switch p {
	case valueobject.PriorityHigh:
		return pick(pp.High, def.High)
	case valueobject.PriorityMedium:
		return pick(pp.Medium, def.Medium)
	case valueobject.PriorityLow:
		return pick(pp.Low, def.Low)
	default:
		return pick(pp.Fallback, def.Fallback)
	}
}

// PriorityColor returns the default palette color for p
func PriorityColor(p valueobject.Priority) string {
	return DefaultPriorityPalette().Color(p)
}
