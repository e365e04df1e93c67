// Package ledger describes the host budget ledger the custom departments are
// written to: departments, their line items and the simulator owning them.
package ledger

import (
	"errors"

	"custombudget/internal/core"
)

// DisplayFlag controls how the host budget window renders a line item.
type DisplayFlag uint32

const (
	ShowLineItem DisplayFlag = 1 << iota
	// ShowSecondaryInfoField renders the building count next to the name.
	ShowSecondaryInfoField
)

var (
	ErrDepartmentExists = errors.New("department already exists")
	ErrLineItemExists   = errors.New("line item already exists")
)

// LineItem is one row of a department. The secondary info field holds the
// number of buildings contributing to the row.
type LineItem interface {
	ID() uint32
	Kind() core.ItemKind
	SetKind(kind core.ItemKind)
	Name() core.StringResourceKey
	SetName(key core.StringResourceKey)

	SecondaryInfo() int64
	SetSecondaryInfo(value int64)

	FullExpenses() int64
	SetFullExpenses(value int64)
	AddToFullExpenses(delta int64)
	Income() int64
	SetIncome(value int64)
	AddToIncome(delta int64)

	DisplayFlags() DisplayFlag
	SetDisplayFlag(flag DisplayFlag, on bool)
}

type Department interface {
	ID() uint32
	BudgetGroup() uint32
	Name() core.StringResourceKey
	SetName(key core.StringResourceKey)
	FixedFunding() bool
	SetFixedFunding(fixed bool)

	LineItem(id uint32) (LineItem, bool)
	CreateLineItem(id uint32) (LineItem, error)
	RemoveLineItem(id uint32) bool
	LineItemIDs() []uint32
}

// BudgetSimulator owns the city's departments.
type BudgetSimulator interface {
	Department(id uint32) (Department, bool)
	CreateDepartment(id, budgetGroup uint32) (Department, error)
}
