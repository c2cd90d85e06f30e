package models

import "time"

type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Phone     string `gorm:"size:20;not null"`
	Email     string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Vehicles []Vehicle
}

type VehicleType string

const (
	VehicleMoped VehicleType = "moped"
	VehicleBike  VehicleType = "bike"
)

type Vehicle struct {
	ID             uint `gorm:"primaryKey"`
	CustomerID     uint `gorm:"index;not null"`
	Customer       Customer
	Make           string      `gorm:"size:100;not null"`
	Model          string      `gorm:"size:100;not null"`
	RegistrationNo string      `gorm:"size:20;uniqueIndex;not null"`
	VehicleType    VehicleType `gorm:"size:20;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
