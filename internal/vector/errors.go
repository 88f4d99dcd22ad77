package vector

import (
	"fmt"

	"github.com/hyperjump/ragd/internal/models"
)

// DimensionMismatchError reports a vector whose length differs from the index dimension.
// ID is empty when the offending vector is a query.
type DimensionMismatchError struct {
	ID   string
	Got  int
	Want int
}

func (e *DimensionMismatchError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("query vector dimension mismatch: got %d, expected %d", e.Got, e.Want)
	}
	return fmt.Sprintf("vector dimension mismatch for item %q: got %d, expected %d", e.ID, e.Got, e.Want)
}

// Kind implements models.Kinded.
func (e *DimensionMismatchError) Kind() string { return models.KindDimensionMismatch }

// DuplicateIDError reports two catalog items sharing an ID.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate item id %q", e.ID)
}

// Kind implements models.Kinded.
func (e *DuplicateIDError) Kind() string { return models.KindDuplicateID }
