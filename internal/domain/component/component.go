package component

import (
	"fmt"
	"strings"
	"time"
)

// Type is the enumerated kind of a catalog component.
type Type string

// Component type constants (stored upper-case in the catalog).
const (
	TypeScrew   Type = "SCREW"
	TypeBolt    Type = "BOLT"
	TypeNut     Type = "NUT"
	TypeWasher  Type = "WASHER"
	TypeRivet   Type = "RIVET"
	TypeAnchor  Type = "ANCHOR"
	TypePin     Type = "PIN"
	TypeSpring  Type = "SPRING"
	TypeBearing Type = "BEARING"
	TypeOther   Type = "OTHER"
)

var knownTypes = map[Type]struct{}{
	TypeScrew: {}, TypeBolt: {}, TypeNut: {}, TypeWasher: {}, TypeRivet: {},
	TypeAnchor: {}, TypePin: {}, TypeSpring: {}, TypeBearing: {}, TypeOther: {},
}

// IsValid checks if the type is one of the catalog kinds.
func (t Type) IsValid() bool {
	_, ok := knownTypes[t]
	return ok
}

// ParseType normalizes user or model input ("bolt", "Bolts", "BOLT") to a Type.
func ParseType(s string) (Type, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if t := Type(v); t.IsValid() {
		return t, nil
	}
	// plural forms: "SCREWS", "WASHERS"
	if strings.HasSuffix(v, "S") {
		if t := Type(strings.TrimSuffix(v, "S")); t.IsValid() {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown component type %q", s)
}

// Specification is a name/value/unit triple attached to a component.
type Specification struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value string  `json:"value"`
	Unit  *string `json:"unit,omitempty"`
}

// Image is the primary image summary of a component.
type Image struct {
	ID       string  `json:"id"`
	Filename string  `json:"filename"`
	Alt      *string `json:"alt,omitempty"`
}

// CADFile is a CAD file summary; file contents are never loaded by search.
type CADFile struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	FileType string `json:"fileType"`
	Format   string `json:"format"`
}

// Component is a catalog entry describing one fastener/hardware part.
type Component struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Subcategory    *string         `json:"subcategory,omitempty"`
	Type           Type            `json:"type"`
	Material       *string         `json:"material,omitempty"`
	Finish         *string         `json:"finish,omitempty"`
	Grade          *string         `json:"grade,omitempty"`
	Standard       *string         `json:"standard,omitempty"`
	Manufacturer   *string         `json:"manufacturer,omitempty"`
	PartNumber     string          `json:"partNumber"`
	SKU            string          `json:"sku"`
	Price          *float64        `json:"price,omitempty"`
	Availability   bool            `json:"availability"`
	Stock          int             `json:"stock"`
	Tags           []string        `json:"tags"`
	Dimensions     map[string]any  `json:"dimensions,omitempty"`
	Specifications []Specification `json:"specifications"`
	Images         []Image         `json:"images"`
	CADFiles       []CADFile       `json:"cadFiles"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Deref returns the value of an optional string field or "".
func Deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Match describes a recommended component profile to look up in the catalog.
// Type is matched against name, category and description; Material and
// Standard, when non-empty, must be contained in the respective field.
type Match struct {
	Type     string
	Material string
	Standard string
	Limit    int
}
