// Package memory is an in-process BudgetSimulator used by the scenario runner
// and tests.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"custombudget/internal/core"
	"custombudget/internal/ledger"
)

// Simulator keeps every department in memory. One mutex guards the whole
// ledger, including the departments and line items it hands out.
type Simulator struct {
	mu          *sync.Mutex
	departments map[uint32]*Department

	// Failure injection for rollback paths.
	FailDepartments map[uint32]bool
	FailLineItems   map[uint32]bool
}

func New() *Simulator {
	return &Simulator{
		mu:              &sync.Mutex{},
		departments:     make(map[uint32]*Department),
		FailDepartments: make(map[uint32]bool),
		FailLineItems:   make(map[uint32]bool),
	}
}

func (s *Simulator) Department(id uint32) (ledger.Department, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, false
	}
	return d, true
}

func (s *Simulator) CreateDepartment(id, budgetGroup uint32) (ledger.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDepartments[id] {
		return nil, fmt.Errorf("create department 0x%08x: rejected", id)
	}
	if _, ok := s.departments[id]; ok {
		return nil, fmt.Errorf("create department 0x%08x: %w", id, ledger.ErrDepartmentExists)
	}
	d := &Department{
		sim:         s,
		id:          id,
		budgetGroup: budgetGroup,
		items:       make(map[uint32]*LineItem),
	}
	s.departments[id] = d
	return d, nil
}

// Reset drops every department, as a new city would.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments = make(map[uint32]*Department)
}

// Summaries flattens the ledger ordered by department then line id.
func (s *Simulator) Summaries() []core.LineSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.LineSummary
	for _, d := range s.departments {
		for _, li := range d.items {
			out = append(out, core.LineSummary{
				DepartmentID:  d.id,
				BudgetGroup:   d.budgetGroup,
				LineID:        li.id,
				Kind:          li.kind,
				BuildingCount: li.secondaryInfo,
				Expense:       li.fullExpenses,
				Income:        li.income,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartmentID != out[j].DepartmentID {
			return out[i].DepartmentID < out[j].DepartmentID
		}
		return out[i].LineID < out[j].LineID
	})
	return out
}

type Department struct {
	sim          *Simulator
	id           uint32
	budgetGroup  uint32
	name         core.StringResourceKey
	fixedFunding bool
	items        map[uint32]*LineItem
}

func (d *Department) ID() uint32 { return d.id }

func (d *Department) BudgetGroup() uint32 { return d.budgetGroup }

func (d *Department) Name() core.StringResourceKey {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	return d.name
}

func (d *Department) SetName(key core.StringResourceKey) {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	d.name = key
}

func (d *Department) FixedFunding() bool {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	return d.fixedFunding
}

func (d *Department) SetFixedFunding(fixed bool) {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	d.fixedFunding = fixed
}

func (d *Department) LineItem(id uint32) (ledger.LineItem, bool) {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	li, ok := d.items[id]
	if !ok {
		return nil, false
	}
	return li, true
}

// CreateLineItem adds a visible expense row.
func (d *Department) CreateLineItem(id uint32) (ledger.LineItem, error) {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	if d.sim.FailLineItems[id] {
		return nil, fmt.Errorf("create line item 0x%08x: rejected", id)
	}
	if _, ok := d.items[id]; ok {
		return nil, fmt.Errorf("create line item 0x%08x: %w", id, ledger.ErrLineItemExists)
	}
	li := &LineItem{mu: d.sim.mu, id: id, kind: core.Expense, flags: ledger.ShowLineItem}
	d.items[id] = li
	return li, nil
}

func (d *Department) RemoveLineItem(id uint32) bool {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	if _, ok := d.items[id]; !ok {
		return false
	}
	delete(d.items, id)
	return true
}

func (d *Department) LineItemIDs() []uint32 {
	d.sim.mu.Lock()
	defer d.sim.mu.Unlock()
	ids := make([]uint32, 0, len(d.items))
	for id := range d.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type LineItem struct {
	mu            *sync.Mutex
	id            uint32
	kind          core.ItemKind
	name          core.StringResourceKey
	secondaryInfo int64
	fullExpenses  int64
	income        int64
	flags         ledger.DisplayFlag
}

func (l *LineItem) ID() uint32 { return l.id }

func (l *LineItem) Kind() core.ItemKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kind
}

func (l *LineItem) SetKind(kind core.ItemKind) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kind = kind
}

func (l *LineItem) Name() core.StringResourceKey {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name
}

func (l *LineItem) SetName(key core.StringResourceKey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.name = key
}

func (l *LineItem) SecondaryInfo() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.secondaryInfo
}

func (l *LineItem) SetSecondaryInfo(value int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.secondaryInfo = value
}

func (l *LineItem) FullExpenses() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fullExpenses
}

func (l *LineItem) SetFullExpenses(value int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fullExpenses = value
}

func (l *LineItem) AddToFullExpenses(delta int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fullExpenses += delta
}

func (l *LineItem) Income() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.income
}

func (l *LineItem) SetIncome(value int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.income = value
}

func (l *LineItem) AddToIncome(delta int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.income += delta
}

func (l *LineItem) DisplayFlags() ledger.DisplayFlag {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.flags
}

func (l *LineItem) SetDisplayFlag(flag ledger.DisplayFlag, on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if on {
		l.flags |= flag
	} else {
		l.flags &^= flag
	}
}
