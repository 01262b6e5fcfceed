package utils

import (
	"fmt"
	"strconv"

	"github.com/feedasfor-cyber/expense-management-app/internal/apperror"
)

// ParsePage reads 1-based page and size query values. Empty values fall back
// to page 1 and defaultSize; size must stay within [1, maxSize].
func ParsePage(pageParam, sizeParam string, defaultSize, maxSize int) (int, int, error) {
	page, err := parsePositive(pageParam, 1, "page")
	if err != nil {
		return 0, 0, err
	}
	size, err := parsePositive(sizeParam, defaultSize, "size")
	if err != nil {
		return 0, 0, err
	}
	if size > maxSize {
		return 0, 0, apperror.New(apperror.CodeInvalidPagination, fmt.Sprintf("size must be at most %d", maxSize))
	}
	return page, size, nil
}

func parsePositive(raw string, fallback int, name string) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperror.New(apperror.CodeInvalidPagination, name+" must be a positive integer")
	}
	return n, nil
}

func Offset(page, size int) int {
	return (page - 1) * size
}
