// Package budget keeps the custom budget departments of a city in step with
// the buildings that declare them.
package budget

import (
	"context"
	"fmt"
	"sort"
	"time"

	"custombudget/internal/core"
	"custombudget/internal/ledger"
	"custombudget/internal/loader"
	"custombudget/internal/log"
	"custombudget/internal/population"
	"custombudget/internal/property"
	"custombudget/internal/transaction"
)

// Building is a building occupant: its property record and exemplar type.
type Building interface {
	property.Holder
	BuildingType() uint32
}

// City is what the manager needs from a running city session.
type City interface {
	Budget() ledger.BudgetSimulator
	Stats() population.CityStats
	Region() population.Region
	Location() (x, z int32)
}

// Manager owns the line item transactions of the active city. The ledger
// holds the building count of each line item; the manager holds the cost
// model. A transaction exists exactly while its ledger line item does.
//
// Handlers are driven one at a time by the host dispatch loop and are not
// safe for concurrent use.
type Manager struct {
	loader     *loader.Loader
	population *population.Provider
	events     *EventLog
	logger     *log.Logger
	now        func() time.Time

	budget      ledger.BudgetSimulator
	cityID      string
	departments map[uint32]map[uint32]transaction.LineItem
}

// NewManager wires a manager. events may be nil when nobody consumes them.
func NewManager(l *loader.Loader, pop *population.Provider, events *EventLog, logger *log.Logger) *Manager {
	if pop == nil {
		pop = population.NewProvider()
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		loader:      l,
		population:  pop,
		events:      events,
		logger:      logger.WithComponent(log.ComponentBudget),
		now:         time.Now,
		departments: make(map[uint32]map[uint32]transaction.LineItem),
	}
}

// PostCityInit attaches the city's ledger and captures the regional
// population. State restored by Load is kept.
func (m *Manager) PostCityInit(ctx context.Context, city City, cityID string) error {
	m.budget = city.Budget()
	m.cityID = cityID

	x, z := city.Location()
	if err := m.population.Init(city.Stats(), city.Region(), x, z); err != nil {
		m.logger.ErrorContext(ctx, "Population provider init failed",
			log.FieldCityID, cityID, log.FieldError, err)
		return err
	}
	m.logger.InfoContext(ctx, "City session started",
		log.FieldCityID, cityID,
		"line_items", m.Len(),
		"region_population", m.population.RegionResidentialPopulation())
	return nil
}

// PostCityShutdown forgets every transaction and the ledger.
func (m *Manager) PostCityShutdown(ctx context.Context) {
	m.logger.InfoContext(ctx, "City session ended", log.FieldCityID, m.cityID, "line_items", m.Len())
	m.clear()
	m.budget = nil
	m.cityID = ""
	m.population.Shutdown()
}

// InsertBuilding adds one building's contribution to every line item it
// declares. Failures drop the affected contribution and are logged.
func (m *Manager) InsertBuilding(ctx context.Context, b Building) {
	if m.budget == nil {
		return
	}
	decls, err := m.loader.Load(b)
	if err != nil {
		m.logger.WarnContext(ctx, "Ignoring building budget items",
			log.FieldBuildingType, log.Hex(b.BuildingType()),
			log.FieldOperation, log.OpInsert,
			log.FieldError, err)
		return
	}
	for _, d := range decls {
		m.insertLineItem(ctx, b, d)
	}
}

func (m *Manager) insertLineItem(ctx context.Context, b Building, d core.Declaration) {
	item, created, err := m.getOrCreateTransaction(b, d)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to create line item transaction",
			log.NewFields().
				WithLineItem(d.DepartmentID, d.LineID).
				WithOperation(log.OpInsert).
				WithError(err).
				ToSlice()...)
		return
	}

	dept, err := m.getOrCreateDepartment(ctx, d)
	if err != nil {
		m.rollback(d, created)
		return
	}
	li, err := m.getOrCreateLineItem(ctx, dept, b, d)
	if err != nil {
		m.rollback(d, created)
		return
	}

	count := li.SecondaryInfo() + 1
	li.SetSecondaryInfo(count)

	total := item.Total(count, m.population)
	setTotal(li, d.IsIncome(), total)

	if count > 1 {
		li.SetDisplayFlag(ledger.ShowSecondaryInfoField, true)
	}
	m.record(EventInserted, d.DepartmentID, d.LineID, d.Kind, count, total)
}

// RemoveBuilding takes one building's contribution back out. Line items
// created before transactions were tracked fall back to subtracting the
// building's fixed cost.
func (m *Manager) RemoveBuilding(ctx context.Context, b Building) {
	if m.budget == nil {
		return
	}
	decls, err := m.loader.Load(b)
	if err != nil {
		m.logger.WarnContext(ctx, "Ignoring building budget items",
			log.FieldBuildingType, log.Hex(b.BuildingType()),
			log.FieldOperation, log.OpRemove,
			log.FieldError, err)
		return
	}
	for _, d := range decls {
		m.removeLineItem(ctx, d)
	}
}

func (m *Manager) removeLineItem(ctx context.Context, d core.Declaration) {
	dept, ok := m.budget.Department(d.DepartmentID)
	if !ok {
		return
	}
	li, ok := dept.LineItem(d.LineID)
	if !ok {
		return
	}

	count := li.SecondaryInfo()
	item, tracked := m.Lookup(d.DepartmentID, d.LineID)

	var total int64
	if tracked {
		total = item.Total(count-1, m.population)
		setTotal(li, d.IsIncome(), total)
	} else {
		if d.IsIncome() {
			li.AddToIncome(-d.FixedCost)
			total = li.Income()
		} else {
			li.AddToFullExpenses(-d.FixedCost)
			total = li.FullExpenses()
		}
		m.logger.DebugContext(ctx, "Removed untracked building contribution",
			log.NewFields().WithLineItem(d.DepartmentID, d.LineID).ToSlice()...)
	}

	if count > 1 {
		count--
		li.SetSecondaryInfo(count)
		if count == 1 {
			li.SetDisplayFlag(ledger.ShowSecondaryInfoField, false)
		}
		m.record(EventRemoved, d.DepartmentID, d.LineID, d.Kind, count, total)
		return
	}

	dept.RemoveLineItem(d.LineID)
	if tracked {
		m.removeTransaction(d.DepartmentID, d.LineID)
	}
	m.record(EventDeleted, d.DepartmentID, d.LineID, d.Kind, 0, 0)
}

// SimNewMonth recomputes every variable cost line item from the current
// population. Fixed cost line items never change after insertion.
func (m *Manager) SimNewMonth(ctx context.Context) {
	if m.budget == nil {
		return
	}
	recomputed := 0
	for _, e := range m.Entries() {
		if e.Item.IsFixed() {
			continue
		}
		dept, ok := m.budget.Department(e.DepartmentID)
		if !ok {
			continue
		}
		li, ok := dept.LineItem(e.LineID)
		if !ok {
			continue
		}
		count := li.SecondaryInfo()
		total := e.Item.Total(count, m.population)
		setTotal(li, e.Item.IsIncome(), total)
		m.record(EventRecomputed, e.DepartmentID, e.LineID, e.Item.Kind(), count, total)
		recomputed++
	}
	m.logger.DebugContext(ctx, "Recomputed variable line items", "count", recomputed)
}

// Lookup returns the transaction of a line item.
func (m *Manager) Lookup(departmentID, lineID uint32) (transaction.LineItem, bool) {
	lines, ok := m.departments[departmentID]
	if !ok {
		return transaction.LineItem{}, false
	}
	item, ok := lines[lineID]
	return item, ok
}

// Len returns the number of tracked line items.
func (m *Manager) Len() int {
	n := 0
	for _, lines := range m.departments {
		n += len(lines)
	}
	return n
}

// Entry is one tracked line item.
type Entry struct {
	DepartmentID uint32
	LineID       uint32
	Item         transaction.LineItem
}

// Entries lists the tracked line items ordered by department then line id.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, 0, m.Len())
	for deptID, lines := range m.departments {
		for lineID, item := range lines {
			out = append(out, Entry{DepartmentID: deptID, LineID: lineID, Item: item})
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

// CityID returns the id passed to PostCityInit.
func (m *Manager) CityID() string {
	return m.cityID
}

// Population returns the snapshot the line item totals are computed from.
func (m *Manager) Population() population.Snapshot {
	return m.population
}

// getOrCreateTransaction reports whether the transaction was created by this
// call, so a failed insertion only rolls back what it added.
func (m *Manager) getOrCreateTransaction(b Building, d core.Declaration) (transaction.LineItem, bool, error) {
	if item, ok := m.Lookup(d.DepartmentID, d.LineID); ok {
		return item, false, nil
	}
	item, err := transaction.FromDeclaration(b, d)
	if err != nil {
		return transaction.LineItem{}, false, err
	}
	lines, ok := m.departments[d.DepartmentID]
	if !ok {
		lines = make(map[uint32]transaction.LineItem)
		m.departments[d.DepartmentID] = lines
	}
	lines[d.LineID] = item
	return item, true, nil
}

func (m *Manager) getOrCreateDepartment(ctx context.Context, d core.Declaration) (ledger.Department, error) {
	if dept, ok := m.budget.Department(d.DepartmentID); ok {
		return dept, nil
	}

	if !core.IsValidBudgetGroup(d.BudgetGroup) {
		err := fmt.Errorf("department 0x%08x: %w: 0x%08x", d.DepartmentID, core.ErrInvalidBudgetGroup, d.BudgetGroup)
		m.logger.ErrorContext(ctx, "Invalid budget group",
			log.NewFields().
				WithLineItem(d.DepartmentID, d.LineID).
				WithBudgetGroup(d.BudgetGroup).
				ToSlice()...)
		return nil, err
	}

	dept, err := m.budget.CreateDepartment(d.DepartmentID, d.BudgetGroup)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to create budget department",
			log.FieldDepartmentID, log.Hex(d.DepartmentID),
			log.FieldError, err)
		return nil, err
	}
	dept.SetFixedFunding(true)
	dept.SetName(d.DepartmentName)
	return dept, nil
}

// A new line item is named after the building type and is an expense unless
// declared as income.
func (m *Manager) getOrCreateLineItem(ctx context.Context, dept ledger.Department, b Building, d core.Declaration) (ledger.LineItem, error) {
	if li, ok := dept.LineItem(d.LineID); ok {
		return li, nil
	}
	li, err := dept.CreateLineItem(d.LineID)
	if err != nil {
		m.logger.ErrorContext(ctx, "Failed to create line item",
			log.NewFields().
				WithLineItem(d.DepartmentID, d.LineID).
				WithError(err).
				ToSlice()...)
		return nil, err
	}
	li.SetName(core.StringResourceKey{Group: 0, Instance: b.BuildingType()})
	if d.IsIncome() {
		li.SetKind(core.Income)
	}
	return li, nil
}

func (m *Manager) rollback(d core.Declaration, created bool) {
	if created {
		m.removeTransaction(d.DepartmentID, d.LineID)
	}
}

func (m *Manager) removeTransaction(departmentID, lineID uint32) {
	lines, ok := m.departments[departmentID]
	if !ok {
		return
	}
	delete(lines, lineID)
	if len(lines) == 0 {
		delete(m.departments, departmentID)
	}
}

func (m *Manager) clear() {
	m.departments = make(map[uint32]map[uint32]transaction.LineItem)
}

func (m *Manager) record(t EventType, departmentID, lineID uint32, kind core.ItemKind, count, total int64) {
	if m.events == nil {
		return
	}
	m.events.Record(Event{
		Type:          t,
		CityID:        m.cityID,
		DepartmentID:  departmentID,
		LineID:        lineID,
		Kind:          kind,
		BuildingCount: count,
		Total:         total,
		At:            m.now(),
	})
}

func setTotal(li ledger.LineItem, isIncome bool, total int64) {
	if isIncome {
		li.SetIncome(total)
	} else {
		li.SetFullExpenses(total)
	}
}
