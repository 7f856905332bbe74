package places

import "time"

type Place struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
	Category  string    `json:"category"`
	Tenant    string    `json:"tenant" gorm:"index"`
	Lat       float64   `json:"latitude" gorm:"column:lat;index"`
	Lon       float64   `json:"longitude" gorm:"column:lon;index"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
