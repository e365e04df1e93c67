package host

import (
	"context"

	"custombudget/internal/budget"
	"custombudget/internal/log"
)

var directorMessages = []uint32{
	MsgPostCityInit,
	MsgPostCityShutdown,
	MsgInsertOccupant,
	MsgRemoveOccupant,
	MsgLoad,
	MsgSave,
	MsgSimNewMonth,
}

// Director subscribes the budget manager to the city notifications.
type Director struct {
	manager *budget.Manager
	logger  *log.Logger
}

func NewDirector(manager *budget.Manager, logger *log.Logger) *Director {
	if logger == nil {
		logger = log.Discard()
	}
	return &Director{manager: manager, logger: logger.WithComponent(log.ComponentHost)}
}

func (d *Director) Register(s *Server) {
	s.AddNotification(d, directorMessages...)
}

func (d *Director) Unregister(s *Server) {
	s.RemoveNotification(d, directorMessages...)
}

// loggerFor prefers the session logger carried by ctx.
func (d *Director) loggerFor(ctx context.Context) *log.Logger {
	if logger, ok := log.FromContext(ctx); ok {
		return logger.WithComponent(log.ComponentHost)
	}
	return d.logger
}

func (d *Director) DoMessage(ctx context.Context, msg Message) {
	switch msg.ID {
	case MsgPostCityInit:
		if msg.City == nil {
			d.loggerFor(ctx).WarnContext(ctx, "City init without a city")
			return
		}
		// Provider failures are logged by the manager; the city still runs.
		_ = d.manager.PostCityInit(ctx, msg.City, msg.CityID)

	case MsgPostCityShutdown:
		d.manager.PostCityShutdown(ctx)

	case MsgInsertOccupant:
		if b, ok := building(msg.Occupant); ok {
			d.manager.InsertBuilding(ctx, b)
		}

	case MsgRemoveOccupant:
		if b, ok := building(msg.Occupant); ok {
			d.manager.RemoveBuilding(ctx, b)
		}

	case MsgLoad:
		if msg.Segment == nil {
			return
		}
		if err := d.manager.Load(ctx, msg.Segment); err != nil {
			d.loggerFor(ctx).ErrorContext(ctx, "Custom departments not restored",
				log.FieldOperation, log.OpLoad, log.FieldError, err)
		}

	case MsgSave:
		if msg.Segment == nil {
			return
		}
		if err := d.manager.Save(ctx, msg.Segment); err != nil {
			d.loggerFor(ctx).ErrorContext(ctx, "Custom departments not saved",
				log.FieldOperation, log.OpSave, log.FieldError, err)
		}

	case MsgSimNewMonth:
		d.manager.SimNewMonth(ctx)
	}
}

func building(o Occupant) (budget.Building, bool) {
	if o == nil || o.OccupantType() != OccupantTypeBuilding {
		return nil, false
	}
	b, ok := o.(budget.Building)
	return b, ok
}
