package utils

import (
	"github.com/google/uuid"
)

// NewRunID identifies one analysis run in reports.
func NewRunID() string {
	return uuid.New().String()
}
