// Package ids generates the string identifiers used across tables. Every
// entity type carries a readable prefix in front of a random UUID; uniqueness
// within a table is all that is guaranteed, ordering is not.
package ids

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	PrefixProduct   = "PROD-"
	PrefixCost      = "COST-"
	PrefixPayment   = "PAY-"
	PrefixLink      = "LNK-"
	PrefixMilestone = "MS-"
)

func New(prefix string) string {
	return prefix + uuid.NewString()
}

func NewProduct() string   { return New(PrefixProduct) }
func NewCost() string      { return New(PrefixCost) }
func NewPayment() string   { return New(PrefixPayment) }
func NewLink() string      { return New(PrefixLink) }
func NewMilestone() string { return New(PrefixMilestone) }

// OrderNumber formats the order identifier for a year and a 1-based sequence,
// e.g. PO-2026-0007.
func OrderNumber(year, seq int) string {
	return fmt.Sprintf("PO-%d-%04d", year, seq)
}
