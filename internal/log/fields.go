package log

import "fmt"

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldCityID        = "city_id"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldMonth         = "month"
	FieldDepartmentID  = "department_id"
	FieldLineID        = "line_id"
	FieldPropertyID    = "property_id"
	FieldBudgetGroup   = "budget_group"
	FieldBuildingType  = "building_type"
	FieldBuildingCount = "building_count"
	FieldAlgorithm     = "algorithm"
	FieldTotal         = "total"
	FieldVersion       = "version"
	FieldDuration      = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentLoader   = "loader"
	ComponentBudget   = "budget"
	ComponentHost     = "host"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentReport   = "report"
	ComponentSheets   = "sheets"
	ComponentBackend  = "backend"
	ComponentScenario = "scenario"
)

// Operations defines standard operation names
const (
	OpInsert    = "insert"
	OpRemove    = "remove"
	OpRecompute = "recompute"
	OpLoad      = "load"
	OpSave      = "save"
	OpExport    = "export"
	OpParse     = "parse"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithCityID adds the city session id
func (f LogFields) WithCityID(cityID string) LogFields {
	f[FieldCityID] = cityID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithLineItem adds the department and line item ids
func (f LogFields) WithLineItem(departmentID, lineID uint32) LogFields {
	f[FieldDepartmentID] = Hex(departmentID)
	f[FieldLineID] = Hex(lineID)
	return f
}

// WithProperty adds a building property id
func (f LogFields) WithProperty(propertyID uint32) LogFields {
	f[FieldPropertyID] = Hex(propertyID)
	return f
}

// WithBudgetGroup adds a budget group id
func (f LogFields) WithBudgetGroup(group uint32) LogFields {
	f[FieldBudgetGroup] = Hex(group)
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

// Hex formats a host resource id the way the game's data tools print it.
func Hex(id uint32) string {
	return fmt.Sprintf("0x%08x", id)
}
