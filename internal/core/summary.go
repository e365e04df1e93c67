package core

import "sort"

// Budget groups a custom department may be created under. Each one is a
// top-level window of the host's budget UI.
const (
	BudgetGroupBusinessDeals       uint32 = 0x0A5A72D1
	BudgetGroupCityBeautification  uint32 = 0x6A357B96
	BudgetGroupGovernmentBuildings uint32 = 0xEA597195
	BudgetGroupHealthAndEducation  uint32 = 0x6A357B7F
	BudgetGroupPublicSafety        uint32 = 0x4A357B40
	BudgetGroupTransportation      uint32 = 0xAA369059
	BudgetGroupUtilities           uint32 = 0x4A357EAF
)

var budgetGroupNames = map[uint32]string{
	BudgetGroupBusinessDeals:       "Business Deals",
	BudgetGroupCityBeautification:  "City Beautification",
	BudgetGroupGovernmentBuildings: "Government Buildings",
	BudgetGroupHealthAndEducation:  "Health & Education",
	BudgetGroupPublicSafety:        "Public Safety",
	BudgetGroupTransportation:      "Transportation",
	BudgetGroupUtilities:           "Utilities",
}

// IsValidBudgetGroup reports whether id is one of the seven budget groups.
func IsValidBudgetGroup(id uint32) bool {
	_, ok := budgetGroupNames[id]
	return ok
}

// BudgetGroupName returns the UI window name of a budget group, or "" when
// the id is not a budget group.
func BudgetGroupName(id uint32) string {
	return budgetGroupNames[id]
}

// BudgetGroups returns the whitelisted budget group ids in ascending order.
func BudgetGroups() []uint32 {
	ids := make([]uint32, 0, len(budgetGroupNames))
	for id := range budgetGroupNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LineSummary is a flattened view of one ledger line item.
type LineSummary struct {
	DepartmentID  uint32
	BudgetGroup   uint32
	LineID        uint32
	Kind          ItemKind
	BuildingCount int64
	Expense       int64
	Income        int64
	Algorithm     string
}

// Net returns income minus expense.
func (s LineSummary) Net() int64 {
	return s.Income - s.Expense
}
