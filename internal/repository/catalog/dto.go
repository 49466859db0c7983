package catalog

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kailas-cloud/partdex/internal/domain/component"
)

type componentModel struct {
	ID             string `gorm:"primaryKey;type:text"`
	Name           string `gorm:"not null;index"`
	Description    string `gorm:"not null;default:''"`
	Category       string `gorm:"not null;index"`
	Subcategory    *string
	Type           string  `gorm:"not null;index"`
	Material       *string `gorm:"index"`
	Finish         *string
	Grade          *string
	Standard       *string                     `gorm:"index"`
	Manufacturer   *string                     `gorm:"index"`
	PartNumber     string                      `gorm:"not null;uniqueIndex"`
	SKU            string                      `gorm:"column:sku;not null;uniqueIndex"`
	Price          *float64                    `gorm:"type:numeric(12,4)"`
	Availability   bool                        `gorm:"not null;default:true;index"`
	Stock          int                         `gorm:"not null;default:0"`
	Tags           datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"`
	Dimensions     datatypes.JSONMap           `gorm:"type:jsonb"`
	Specifications []specificationModel        `gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
	Images         []imageModel                `gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
	CADFiles       []cadFileModel              `gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (componentModel) TableName() string { return "components" }

// BeforeSave stores nil tags as an empty array; a JSON null would break
// jsonb_array_elements_text in the text predicate.
func (m *componentModel) BeforeSave(*gorm.DB) error {
	if m.Tags == nil {
		m.Tags = datatypes.JSONSlice[string]{}
	}
	return nil
}

type specificationModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	ComponentID string `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	Value       string `gorm:"not null"`
	Unit        *string
}

func (specificationModel) TableName() string { return "specifications" }

type imageModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	ComponentID string `gorm:"not null;index"`
	Filename    string `gorm:"not null"`
	Alt         *string
	IsPrimary   bool `gorm:"not null;default:false"`
}

func (imageModel) TableName() string { return "component_images" }

type cadFileModel struct {
	ID          string `gorm:"primaryKey;type:text"`
	ComponentID string `gorm:"not null;index"`
	Filename    string `gorm:"not null"`
	FileType    string `gorm:"not null"`
	Format      string `gorm:"not null"`
}

func (cadFileModel) TableName() string { return "cad_files" }

// Models lists the catalog tables for schema migration.
func Models() []any {
	return []any{&componentModel{}, &specificationModel{}, &imageModel{}, &cadFileModel{}}
}

func toDomain(m *componentModel) component.Component {
	c := component.Component{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Category:       m.Category,
		Subcategory:    m.Subcategory,
		Type:           component.Type(m.Type),
		Material:       m.Material,
		Finish:         m.Finish,
		Grade:          m.Grade,
		Standard:       m.Standard,
		Manufacturer:   m.Manufacturer,
		PartNumber:     m.PartNumber,
		SKU:            m.SKU,
		Price:          m.Price,
		Availability:   m.Availability,
		Stock:          m.Stock,
		Tags:           []string(m.Tags),
		Dimensions:     map[string]any(m.Dimensions),
		Specifications: make([]component.Specification, 0, len(m.Specifications)),
		Images:         make([]component.Image, 0, len(m.Images)),
		CADFiles:       make([]component.CADFile, 0, len(m.CADFiles)),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	for _, s := range m.Specifications {
		c.Specifications = append(c.Specifications, component.Specification{
			ID: s.ID, Name: s.Name, Value: s.Value, Unit: s.Unit,
		})
	}
	for _, img := range m.Images {
		c.Images = append(c.Images, component.Image{ID: img.ID, Filename: img.Filename, Alt: img.Alt})
	}
	for _, f := range m.CADFiles {
		c.CADFiles = append(c.CADFiles, component.CADFile{
			ID: f.ID, Filename: f.Filename, FileType: f.FileType, Format: f.Format,
		})
	}
	return c
}
