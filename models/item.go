package models

import "time"

const (
	CategoryFood  = "food"
	CategorySnack = "snack"
	CategoryDrink = "drink"
)

type Item struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string    `gorm:"type:varchar(20);not null" json:"category"`
	SubCategory string    `gorm:"type:varchar(50)" json:"sub_category"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	ImageUrl    string    `gorm:"type:varchar(255)" json:"image_url"`
	IsAvailable bool      `gorm:"not null;default:false" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// ValidCategory reports whether c is one of the catalog categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryFood, CategorySnack, CategoryDrink:
		return true
	}
	return false
}
