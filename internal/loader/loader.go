// Package loader decodes the custom budget items a building declares in its
// property record.
package loader

import (
	"errors"
	"fmt"

	"custombudget/internal/core"
	"custombudget/internal/log"
	"custombudget/internal/property"
)

// Policy selects how entry-level problems are handled. By default the bad
// entry is skipped and the building's other entries are kept; setting a flag
// discards the whole declaration set instead.
type Policy struct {
	AbortOnUnknownPurpose   bool
	AbortOnMissingSideTable bool
}

type Loader struct {
	policy Policy
	logger *log.Logger
}

func New(policy Policy, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Discard()
	}
	return &Loader{policy: policy, logger: logger.WithComponent(log.ComponentLoader)}
}

// Load returns the building's declarations in property order. A building
// without custom purposes yields no declarations and no error; the purpose
// property is shared with the host's built-in budget items. A structurally
// invalid record fails with core.ErrMalformedDeclaration.
func (l *Loader) Load(h property.Holder) ([]core.Declaration, error) {
	purposes, err := property.GetUint32s(h, core.PropertyBudgetItemPurpose)
	if errors.Is(err, property.ErrPropertyMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, malformed(err)
	}
	if !hasCustomPurpose(purposes) {
		return nil, nil
	}

	departments, err := property.GetUint32s(h, core.PropertyBudgetItemDepartment)
	if err != nil {
		return nil, malformed(err)
	}
	lines, err := property.GetUint32s(h, core.PropertyBudgetItemLine)
	if err != nil {
		return nil, malformed(err)
	}
	costs, err := property.GetSint64s(h, core.PropertyBudgetItemCost)
	if err != nil {
		return nil, malformed(err)
	}

	count := len(purposes)
	if len(departments) != count || len(lines) != count || len(costs) != count {
		return nil, fmt.Errorf("%w: parallel arrays differ in length: purposes=%d departments=%d lines=%d costs=%d",
			core.ErrMalformedDeclaration, count, len(departments), len(lines), len(costs))
	}

	groups, err := budgetGroupTable(h)
	if err != nil {
		return nil, malformed(err)
	}
	names, err := nameKeyTable(h)
	if err != nil {
		return nil, malformed(err)
	}

	decls := make([]core.Declaration, 0, count)
	for i, purpose := range purposes {
		kind, ok := core.KindFromPurpose(purpose)
		if !ok {
			if l.policy.AbortOnUnknownPurpose {
				return nil, fmt.Errorf("%w: entry %d has unknown purpose 0x%08x", core.ErrMalformedDeclaration, i, purpose)
			}
			l.logger.Warn("Skipping budget item with unknown purpose",
				"index", i, "purpose", log.Hex(purpose),
				log.FieldDepartmentID, log.Hex(departments[i]),
				log.FieldLineID, log.Hex(lines[i]))
			continue
		}

		group, hasGroup := groups[departments[i]]
		name, hasName := names[departments[i]]
		if !hasGroup || !hasName {
			missing := core.PropertyDepartmentBudgetGroup
			if hasGroup {
				missing = core.PropertyDepartmentNameKey
			}
			if l.policy.AbortOnMissingSideTable {
				return nil, fmt.Errorf("%w: department 0x%08x has no entry in property 0x%08x",
					core.ErrMalformedDeclaration, departments[i], missing)
			}
			l.logger.Warn("Skipping budget item without department table entry",
				log.NewFields().
					WithLineItem(departments[i], lines[i]).
					WithProperty(missing).
					ToSlice()...)
			continue
		}

		decls = append(decls, core.Declaration{
			Kind:           kind,
			DepartmentID:   departments[i],
			LineID:         lines[i],
			FixedCost:      costs[i],
			BudgetGroup:    group,
			DepartmentName: name,
		})
	}

	return decls, nil
}

func hasCustomPurpose(purposes []uint32) bool {
	for _, p := range purposes {
		if core.IsCustomPurpose(p) {
			return true
		}
	}
	return false
}

// The first entry for a department wins.
func budgetGroupTable(h property.Holder) (map[uint32]uint32, error) {
	rows, err := property.Uint32Groups(h, core.PropertyDepartmentBudgetGroup, 2)
	if err != nil {
		return nil, err
	}
	table := make(map[uint32]uint32, len(rows))
	for _, r := range rows {
		if _, ok := table[r[0]]; !ok {
			table[r[0]] = r[1]
		}
	}
	return table, nil
}

func nameKeyTable(h property.Holder) (map[uint32]core.StringResourceKey, error) {
	rows, err := property.Uint32Groups(h, core.PropertyDepartmentNameKey, 3)
	if err != nil {
		return nil, err
	}
	table := make(map[uint32]core.StringResourceKey, len(rows))
	for _, r := range rows {
		if _, ok := table[r[0]]; !ok {
			table[r[0]] = core.StringResourceKey{Group: r[1], Instance: r[2]}
		}
	}
	return table, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %w", core.ErrMalformedDeclaration, err)
}
