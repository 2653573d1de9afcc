package domain

type Ingredient struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:200;not null;uniqueIndex:idx_ingredient_name_unit" validate:"required,max=200"`
}

func (Ingredient) TableName() string { return "ingredients" }
