package budget

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"custombudget/internal/core"
	"custombudget/internal/log"
	"custombudget/internal/segment"
	"custombudget/internal/transaction"
)

// StateVersion is the version of the persisted department map.
const StateVersion uint32 = 1

// PersistKey locates the custom department state in a city save.
var PersistKey = segment.Key{Type: 0xFE005706, Group: 0xFE005707, Instance: 0}

// Encode writes the department map: version, department count, then per
// department its id and line count, and per line its id and transaction.
// Departments and lines are written in ascending id order.
func (m *Manager) Encode(w io.Writer) error {
	sw := segment.NewWriter(w)
	sw.Uint32(StateVersion)
	sw.Uint32(uint32(len(m.departments)))

	entries := m.Entries()
	for i := 0; i < len(entries); {
		deptID := entries[i].DepartmentID
		j := i
		for j < len(entries) && entries[j].DepartmentID == deptID {
			j++
		}
		sw.Uint32(deptID)
		sw.Uint32(uint32(j - i))
		for _, e := range entries[i:j] {
			sw.Uint32(e.LineID)
			e.Item.Encode(sw)
		}
		i = j
	}
	return sw.Err()
}

// Decode replaces the department map with one written by Encode. On any
// error the manager is left with no departments.
func (m *Manager) Decode(r io.Reader) error {
	departments, err := decodeDepartments(segment.NewReader(r))
	if err != nil {
		m.clear()
		return err
	}
	m.departments = departments
	return nil
}

func decodeDepartments(r *segment.Reader) (map[uint32]map[uint32]transaction.LineItem, error) {
	version := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if version != StateVersion {
		return nil, fmt.Errorf("custom departments: %w: got %d, want %d", core.ErrVersionMismatch, version, StateVersion)
	}

	deptCount := r.Uint32()
	if err := r.Err(); err != nil {
		return nil, err
	}

	departments := make(map[uint32]map[uint32]transaction.LineItem)
	for i := uint32(0); i < deptCount; i++ {
		deptID := r.Uint32()
		lineCount := r.Uint32()
		if err := r.Err(); err != nil {
			return nil, err
		}

		lines := make(map[uint32]transaction.LineItem)
		for j := uint32(0); j < lineCount; j++ {
			lineID := r.Uint32()
			if err := r.Err(); err != nil {
				return nil, err
			}
			item, err := transaction.Decode(r)
			if err != nil {
				return nil, fmt.Errorf("department 0x%08x line 0x%08x: %w", deptID, lineID, err)
			}
			lines[lineID] = item
		}
		if len(lines) > 0 {
			departments[deptID] = lines
		}
	}
	return departments, nil
}

// Save writes the state to the city save. Nothing is written when no custom
// line item is tracked; a store implementing segment.Deleter drops the
// previous record instead.
func (m *Manager) Save(ctx context.Context, store segment.Store) error {
	if m.Len() == 0 {
		if d, ok := store.(segment.Deleter); ok {
			if err := d.Delete(ctx, PersistKey); err != nil {
				return fmt.Errorf("clear custom departments: %w", err)
			}
		}
		return nil
	}
	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return fmt.Errorf("encode custom departments: %w", err)
	}
	if err := store.Write(ctx, PersistKey, buf.Bytes()); err != nil {
		return fmt.Errorf("save custom departments: %w", err)
	}
	m.logger.DebugContext(ctx, "Saved custom departments",
		log.FieldCityID, m.cityID, "line_items", m.Len(), "bytes", buf.Len())
	return nil
}

// Load restores the state from the city save. A save without custom
// department state loads as empty.
func (m *Manager) Load(ctx context.Context, store segment.Store) error {
	data, err := store.Read(ctx, PersistKey)
	if errors.Is(err, segment.ErrNotFound) {
		m.clear()
		return nil
	}
	if err != nil {
		m.clear()
		return fmt.Errorf("load custom departments: %w", err)
	}
	if err := m.Decode(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("load custom departments: %w", err)
	}
	m.logger.DebugContext(ctx, "Loaded custom departments", "line_items", m.Len())
	return nil
}
