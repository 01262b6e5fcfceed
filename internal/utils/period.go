package utils

import (
	"regexp"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidatePeriod checks the YYYY-MM submission month of an upload.
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return apperror.New(apperror.CodeInvalidPeriod, "period must be in YYYY-MM format")
	}
	return nil
}
