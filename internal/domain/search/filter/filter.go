package filter

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/partdex/internal/domain/component"
)

// MaxValuesPerField is the maximum number of accepted values for one filter field.
const MaxValuesPerField = 32

// Field names accepted in model-suggested filters.
const (
	FieldCategory     = "category"
	FieldType         = "type"
	FieldMaterial     = "material"
	FieldStandard     = "standard"
	FieldManufacturer = "manufacturer"
)

// PriceRange is an inclusive [Min, Max] price bound. Serialized as a two-element array.
type PriceRange struct {
	Min float64
	Max float64
}

// NewPriceRange returns a range only when both bounds are present.
// A single bound yields nil: one-sided ranges are not supported.
func NewPriceRange(minPrice, maxPrice *float64) *PriceRange {
	if minPrice == nil || maxPrice == nil {
		return nil
	}
	return &PriceRange{Min: *minPrice, Max: *maxPrice}
}

// MarshalJSON encodes the range as [min, max].
func (p PriceRange) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.Min, p.Max})
}

// UnmarshalJSON decodes [min, max].
func (p *PriceRange) UnmarshalJSON(data []byte) error {
	var bounds []float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return fmt.Errorf("priceRange must be [min, max]: %w", err)
	}
	if len(bounds) != 2 {
		return fmt.Errorf("priceRange must have exactly 2 bounds, got %d", len(bounds))
	}
	p.Min, p.Max = bounds[0], bounds[1]
	return nil
}

// Filters is the structured part of a search. Values inside one field are OR'd,
// fields are AND'd. An empty field imposes no constraint.
type Filters struct {
	Category     []string         `json:"category,omitempty"`
	Type         []component.Type `json:"type,omitempty"`
	Material     []string         `json:"material,omitempty"`
	Standard     []string         `json:"standard,omitempty"`
	Manufacturer []string         `json:"manufacturer,omitempty"`
	PriceRange   *PriceRange      `json:"priceRange,omitempty"`
	Availability *bool            `json:"availability,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f Filters) IsEmpty() bool {
	return len(f.Category) == 0 && len(f.Type) == 0 && len(f.Material) == 0 &&
		len(f.Standard) == 0 && len(f.Manufacturer) == 0 &&
		f.PriceRange == nil && f.Availability == nil
}

// Normalize validates the filters and returns a cleaned copy: blank values are
// dropped and component types are parsed to their canonical form.
func (f Filters) Normalize() (Filters, error) {
	out := Filters{
		Category:     cleanValues(f.Category),
		Material:     cleanValues(f.Material),
		Standard:     cleanValues(f.Standard),
		Manufacturer: cleanValues(f.Manufacturer),
		Availability: f.Availability,
	}
	for name, vals := range map[string][]string{
		FieldCategory: out.Category, FieldMaterial: out.Material,
		FieldStandard: out.Standard, FieldManufacturer: out.Manufacturer,
	} {
		if len(vals) > MaxValuesPerField {
			return Filters{}, fmt.Errorf("too many %s values (max %d)", name, MaxValuesPerField)
		}
	}
	if len(f.Type) > MaxValuesPerField {
		return Filters{}, fmt.Errorf("too many type values (max %d)", MaxValuesPerField)
	}
	for _, raw := range f.Type {
		if strings.TrimSpace(string(raw)) == "" {
			continue
		}
		t, err := component.ParseType(string(raw))
		if err != nil {
			return Filters{}, err
		}
		if !slices.Contains(out.Type, t) {
			out.Type = append(out.Type, t)
		}
	}
	if f.PriceRange != nil {
		if f.PriceRange.Min > f.PriceRange.Max {
			return Filters{}, fmt.Errorf("priceRange min %.2f is greater than max %.2f",
				f.PriceRange.Min, f.PriceRange.Max)
		}
		pr := *f.PriceRange
		out.PriceRange = &pr
	}
	return out, nil
}

// FromSuggestions converts a loosely-typed model suggestion into Filters.
// Unknown keys and unknown component types are dropped.
func FromSuggestions(s map[string][]string) Filters {
	var out Filters
	for key, vals := range s {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case FieldCategory:
			out.Category = cleanValues(vals)
		case FieldMaterial:
			out.Material = cleanValues(vals)
		case FieldStandard:
			out.Standard = cleanValues(vals)
		case FieldManufacturer:
			out.Manufacturer = cleanValues(vals)
		case FieldType:
			for _, v := range vals {
				if t, err := component.ParseType(v); err == nil && !slices.Contains(out.Type, t) {
					out.Type = append(out.Type, t)
				}
			}
		}
	}
	return out
}

// Merge fills every field the user left unset with the suggested value.
// A field the user set is never overwritten.
func Merge(user, suggested Filters) Filters {
	out := user.clone()
	if len(out.Category) == 0 {
		out.Category = slices.Clone(suggested.Category)
	}
	if len(out.Type) == 0 {
		out.Type = slices.Clone(suggested.Type)
	}
	if len(out.Material) == 0 {
		out.Material = slices.Clone(suggested.Material)
	}
	if len(out.Standard) == 0 {
		out.Standard = slices.Clone(suggested.Standard)
	}
	if len(out.Manufacturer) == 0 {
		out.Manufacturer = slices.Clone(suggested.Manufacturer)
	}
	if out.PriceRange == nil && suggested.PriceRange != nil {
		pr := *suggested.PriceRange
		out.PriceRange = &pr
	}
	if out.Availability == nil && suggested.Availability != nil {
		v := *suggested.Availability
		out.Availability = &v
	}
	return out
}

// Canonical returns a copy with every value set sorted, so that equal filter
// sets serialize identically regardless of input order.
func (f Filters) Canonical() Filters {
	out := f.clone()
	slices.Sort(out.Category)
	slices.Sort(out.Type)
	slices.Sort(out.Material)
	slices.Sort(out.Standard)
	slices.Sort(out.Manufacturer)
	return out
}

func (f Filters) clone() Filters {
	out := Filters{
		Category:     slices.Clone(f.Category),
		Type:         slices.Clone(f.Type),
		Material:     slices.Clone(f.Material),
		Standard:     slices.Clone(f.Standard),
		Manufacturer: slices.Clone(f.Manufacturer),
	}
	if f.PriceRange != nil {
		pr := *f.PriceRange
		out.PriceRange = &pr
	}
	if f.Availability != nil {
		v := *f.Availability
		out.Availability = &v
	}
	return out
}

func cleanValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
