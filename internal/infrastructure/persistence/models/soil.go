package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
)

// SoilReadingModel is the persistence model for the SoilReading entity.
type SoilReadingModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_soil_readings_user_created,priority:1"`
	Nitrogen    float64    `gorm:"not null"`
	Phosphorus  float64    `gorm:"not null"`
	Potassium   float64    `gorm:"not null"`
	PH          float64    `gorm:"column:ph;not null"`
	Moisture    float64    `gorm:"not null"`
	Temperature float64    `gorm:"not null"`
	CropType    string     `gorm:"type:varchar(20);not null"`
	Location    string     `gorm:"type:varchar(200)"`
	CreatedAt   time.Time  `gorm:"not null;index:idx_soil_readings_user_created,priority:2,sort:desc"`
	User        *UserModel `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (SoilReadingModel) TableName() string {
	return "soil_readings"
}

// ToDomain converts the model to a domain SoilReading.
// The owner is populated only when User was preloaded.
func (m *SoilReadingModel) ToDomain() *soil.SoilReading {
	reading := &soil.SoilReading{
		ID:     m.ID,
		UserID: m.UserID,
		Measurements: soil.Measurements{
			Nitrogen:    m.Nitrogen,
			Phosphorus:  m.Phosphorus,
			Potassium:   m.Potassium,
			PH:          m.PH,
			Moisture:    m.Moisture,
			Temperature: m.Temperature,
			CropType:    soil.CropType(m.CropType),
		},
		Location:  m.Location,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		reading.Owner = ownerOf(m.User)
	}
	return reading
}

// SoilReadingModelFromDomain creates a persistence model from a domain SoilReading.
func SoilReadingModelFromDomain(r *soil.SoilReading) *SoilReadingModel {
	return &SoilReadingModel{
		ID:          r.ID,
		UserID:      r.UserID,
		Nitrogen:    r.Nitrogen,
		Phosphorus:  r.Phosphorus,
		Potassium:   r.Potassium,
		PH:          r.PH,
		Moisture:    r.Moisture,
		Temperature: r.Temperature,
		CropType:    string(r.CropType),
		Location:    r.Location,
		CreatedAt:   r.CreatedAt,
	}
}

func ownerOf(u *UserModel) *shared.Owner {
	return &shared.Owner{ID: u.ID, Name: u.Name, Email: u.Email}
}
