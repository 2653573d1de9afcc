package domain

// Tag is reference data; rows are imported, never written by the API.
type Tag struct {
	ID    int64  `json:"id" gorm:"primaryKey"`
	Name  string `json:"name" gorm:"size:200;uniqueIndex;not null" validate:"required,max=200"`
	Color string `json:"color" gorm:"size:7;uniqueIndex;not null" validate:"required,hexcolor36"`
	Slug  string `json:"slug" gorm:"size:200;uniqueIndex;not null" validate:"required,max=200,slug"`
}

func (Tag) TableName() string { return "tags" }
