package models

import "gorm.io/gorm"

type MenuItem struct {
	gorm.Model
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Price       Money  `json:"price" binding:"required"`
	Image       string `json:"image"`
	CuisineType string `json:"cuisineType" gorm:"size:32"`
	IsAvailable bool   `json:"isAvailable"`
}
