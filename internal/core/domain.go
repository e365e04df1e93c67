package core

import (
	"errors"
	"fmt"
)

// Purpose ids recognised in a building's budget item purpose property.
const (
	PurposeExpense uint32 = 0x87BD3990
	PurposeIncome  uint32 = 0x46261226
)

// Building property ids read by the loader and the algorithm factory.
const (
	PropertyBudgetItemDepartment uint32 = 0xEA54D283
	PropertyBudgetItemLine       uint32 = 0xEA54D284
	PropertyBudgetItemPurpose    uint32 = 0xEA54D285
	PropertyBudgetItemCost       uint32 = 0xEA54D286

	PropertyDepartmentBudgetGroup uint32 = 0x90222B81
	PropertyDepartmentNameKey     uint32 = 0x4252085F
	PropertyLineItemAlgorithm     uint32 = 0x9EE1240F

	PropertyTotalPopulationExpenseTuning uint32 = 0x9EE12410
	PropertyTotalPopulationIncomeTuning  uint32 = 0x9EE12411
	PropertyWealthGroupExpenseTuning     uint32 = 0x9EE12412
	PropertyWealthGroupIncomeTuning      uint32 = 0x9EE12413
	PropertyTourismExpenseTuning         uint32 = 0x9EE12414
	PropertyTourismIncomeTuning          uint32 = 0x9EE12415
)

const (
	Expense ItemKind = iota + 1
	Income
)

type (
	// ItemKind tells whether a line item contributes an expense or an income.
	ItemKind uint32

	// StringResourceKey locates a localized string by text group and instance.
	StringResourceKey struct {
		Group    uint32
		Instance uint32
	}

	// Declaration is one budget item declared by a building. A building may
	// declare several, including repeats of the same (department, line) pair.
	Declaration struct {
		Kind           ItemKind
		DepartmentID   uint32
		LineID         uint32
		FixedCost      int64
		BudgetGroup    uint32
		DepartmentName StringResourceKey
	}
)

var (
	ErrMalformedDeclaration  = errors.New("malformed budget item declaration")
	ErrAlgorithmConstruction = errors.New("cost algorithm construction failed")
	ErrInvalidBudgetGroup    = errors.New("invalid budget group")
	ErrVersionMismatch       = errors.New("unsupported persisted state version")
	ErrUnknownAlgorithm      = errors.New("unknown cost algorithm")
)

// KindFromPurpose maps a purpose id to an item kind. ok is false for any id
// that is not a custom department purpose.
func KindFromPurpose(purpose uint32) (kind ItemKind, ok bool) {
	switch purpose {
	case PurposeExpense:
		return Expense, true
	case PurposeIncome:
		return Income, true
	default:
		return 0, false
	}
}

// IsCustomPurpose reports whether purpose is one of the custom department purposes.
func IsCustomPurpose(purpose uint32) bool {
	_, ok := KindFromPurpose(purpose)
	return ok
}

func (k ItemKind) String() string {
	switch k {
	case Expense:
		return "expense"
	case Income:
		return "income"
	default:
		return fmt.Sprintf("ItemKind(%d)", uint32(k))
	}
}

// IsIncome returns true for income declarations.
func (d Declaration) IsIncome() bool {
	return d.Kind == Income
}

// Validate checks the fields the manager relies on.
func (d Declaration) Validate() error {
	if d.Kind != Expense && d.Kind != Income {
		return fmt.Errorf("%w: invalid kind %v", ErrMalformedDeclaration, d.Kind)
	}
	if !IsValidBudgetGroup(d.BudgetGroup) {
		return fmt.Errorf("%w: 0x%08x", ErrInvalidBudgetGroup, d.BudgetGroup)
	}
	return nil
}
