package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"custombudget/internal/core"
)

// ID is a 32-bit id written as a number, a hex literal or one of the names
// below.
type ID uint32

var names = map[string]uint32{
	"expense": core.PurposeExpense,
	"income":  core.PurposeIncome,

	"budget_item_department":          core.PropertyBudgetItemDepartment,
	"budget_item_line":                core.PropertyBudgetItemLine,
	"budget_item_purpose":             core.PropertyBudgetItemPurpose,
	"budget_item_cost":                core.PropertyBudgetItemCost,
	"department_budget_group":         core.PropertyDepartmentBudgetGroup,
	"department_name_key":             core.PropertyDepartmentNameKey,
	"line_item_algorithm":             core.PropertyLineItemAlgorithm,
	"total_population_expense_tuning": core.PropertyTotalPopulationExpenseTuning,
	"total_population_income_tuning":  core.PropertyTotalPopulationIncomeTuning,
	"wealth_group_expense_tuning":     core.PropertyWealthGroupExpenseTuning,
	"wealth_group_income_tuning":      core.PropertyWealthGroupIncomeTuning,
	"tourism_expense_tuning":          core.PropertyTourismExpenseTuning,
	"tourism_income_tuning":           core.PropertyTourismIncomeTuning,

	"business_deals":       core.BudgetGroupBusinessDeals,
	"city_beautification":  core.BudgetGroupCityBeautification,
	"government_buildings": core.BudgetGroupGovernmentBuildings,
	"health_and_education": core.BudgetGroupHealthAndEducation,
	"public_safety":        core.BudgetGroupPublicSafety,
	"transportation":       core.BudgetGroupTransportation,
	"utilities":            core.BudgetGroupUtilities,
}

// ParseID resolves a literal or a name.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if v, ok := names[strings.ToLower(s)]; ok {
		return ID(v), nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(v), nil
}

func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", node.Line)
	}
	v, err := ParseID(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*id = v
	return nil
}

func (id ID) String() string {
	return fmt.Sprintf("0x%08x", uint32(id))
}
