package models

import (
	"github.com/go-playground/validator/v10"
)

// DriverEntry is one row of the championship leaderboard.
type DriverEntry struct {
	ID             int64   `db:"id" json:"id"`
	DriverName     string  `db:"driver_name" json:"driverName" validate:"required"`
	Points         int     `db:"points" json:"points" validate:"gte=0"`
	ProfilePicture *string `db:"profile_picture" json:"profilePicture"`
}

func (d *DriverEntry) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}
