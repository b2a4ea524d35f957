package validators

import (
	"errors"
	"slices"
)

var (
	ErrTitleEmpty       = errors.New("no title provided")
	ErrAuthorEmpty      = errors.New("no author provided")
	ErrGenreEmpty       = errors.New("no genre provided")
	ErrInvalidCondition = errors.New("invalid book condition provided")
	ErrInvalidStatus    = errors.New("invalid availability status provided")
)

var (
	ValidConditions = []string{"New", "Like New", "Very Good", "Good", "Fair", "Poor"}
	ValidStatuses   = []string{"Available", "Currently Lent", "Reserved", "Not Available"}
)

func ConditionValidator(c string) error {
	if !slices.Contains(ValidConditions, c) {
		return ErrInvalidCondition
	}

	return nil
}

func StatusValidator(s string) error {
	if !slices.Contains(ValidStatuses, s) {
		return ErrInvalidStatus
	}

	return nil
}
