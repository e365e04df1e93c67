package sim

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"custombudget/internal/budget"
	"custombudget/internal/core"
	"custombudget/internal/host"
	"custombudget/internal/loader"
	"custombudget/internal/log"
	"custombudget/internal/population"
	"custombudget/internal/report"
	"custombudget/internal/scenario"
	"custombudget/internal/segment"
)

// EventSink receives the ledger events recorded during a dispatch turn.
type EventSink interface {
	PublishEvents(ctx context.Context, events []budget.Event) error
}

type Options struct {
	// CityID names the session. A random id is used when empty.
	CityID       string
	Store        segment.Store
	Sink         EventSink
	Policy       loader.Policy
	EventLogSize int
	Logger       *log.Logger
}

// Result summarizes a finished run.
type Result struct {
	CityID        string
	Rows          []core.LineSummary
	Events        int
	Published     int
	DroppedEvents int
}

// Runner owns one city session: the message server, the director and the
// manager it routes to.
type Runner struct {
	scenario *scenario.Scenario
	opts     Options
	logger   *log.Logger

	server   *host.Server
	director *host.Director
	manager  *budget.Manager
	events   *budget.EventLog
	city     *City

	buildings map[string]*host.BuildingOccupant
	placed    map[string][]*host.BuildingOccupant

	recorded  int
	published int
}

func New(sc *scenario.Scenario, opts Options) (*Runner, error) {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Store == nil {
		opts.Store = segment.NewMemory()
	}
	if opts.CityID == "" {
		opts.CityID = uuid.NewString()
	}

	buildings := make(map[string]*host.BuildingOccupant, len(sc.Buildings))
	for name, b := range sc.Buildings {
		props, err := b.Map()
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", name, err)
		}
		buildings[name] = &host.BuildingOccupant{Type: uint32(b.Type), Properties: props}
	}

	logger := opts.Logger.With(log.FieldCityID, opts.CityID)
	events := budget.NewEventLog(opts.EventLogSize)
	manager := budget.NewManager(
		loader.New(opts.Policy, logger),
		population.NewProvider(),
		events,
		logger,
	)
	server := host.NewServer()
	director := host.NewDirector(manager, logger)
	director.Register(server)

	return &Runner{
		scenario:  sc,
		opts:      opts,
		logger:    logger.WithComponent(log.ComponentScenario),
		server:    server,
		director:  director,
		manager:   manager,
		events:    events,
		city:      NewCity(sc.City.Population.Counts(), sc.Cities(), sc.City.X, sc.City.Z),
		buildings: buildings,
		placed:    make(map[string][]*host.BuildingOccupant),
	}, nil
}

func (r *Runner) CityID() string { return r.opts.CityID }

func (r *Runner) Manager() *budget.Manager { return r.manager }

func (r *Runner) City() *City { return r.city }

// Run starts the city, plays every step, saves and shuts the city down.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.server.Post(host.Message{ID: host.MsgPostCityInit, City: r.city, CityID: r.opts.CityID})
	if err := r.dispatch(ctx); err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "Scenario started",
		log.FieldOperation, log.OpStartup,
		"scenario", r.scenario.Name,
		"steps", len(r.scenario.Steps))

	for i, step := range r.scenario.Steps {
		if err := r.Step(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	r.server.Post(host.Message{ID: host.MsgSave, Segment: r.opts.Store})
	if err := r.dispatch(ctx); err != nil {
		return nil, err
	}

	res := &Result{
		CityID:        r.opts.CityID,
		Rows:          report.Rows(r.city.Ledger().Summaries(), r.manager.Entries()),
		Events:        r.recorded,
		Published:     r.published,
		DroppedEvents: r.events.Dropped(),
	}

	r.server.Post(host.Message{ID: host.MsgPostCityShutdown})
	if err := r.dispatch(ctx); err != nil {
		return nil, err
	}
	r.director.Unregister(r.server)
	r.city.Close()

	r.logger.InfoContext(ctx, "Scenario finished",
		log.FieldOperation, log.OpShutdown,
		"line_items", len(res.Rows),
		"events", res.Events,
		"published", res.Published)
	return res, nil
}

// Step posts the messages of one scenario step and dispatches them.
func (r *Runner) Step(ctx context.Context, step scenario.Step) error {
	switch step.Kind() {
	case scenario.StepInsert:
		proto, ok := r.buildings[step.Insert]
		if !ok {
			return fmt.Errorf("unknown building %q", step.Insert)
		}
		for i := 0; i < step.Repeat(); i++ {
			b := &host.BuildingOccupant{Type: proto.Type, Properties: proto.Properties}
			r.placed[step.Insert] = append(r.placed[step.Insert], b)
			r.server.Post(host.Message{ID: host.MsgInsertOccupant, Occupant: b})
		}

	case scenario.StepRemove:
		placed := r.placed[step.Remove]
		n := step.Repeat()
		if n > len(placed) {
			return fmt.Errorf("remove %d %q: only %d placed", n, step.Remove, len(placed))
		}
		for _, b := range placed[len(placed)-n:] {
			r.server.Post(host.Message{ID: host.MsgRemoveOccupant, Occupant: b})
		}
		r.placed[step.Remove] = placed[:len(placed)-n]

	case scenario.StepMonths:
		for i := 0; i < step.Months; i++ {
			r.server.Post(host.Message{ID: host.MsgSimNewMonth})
		}

	case scenario.StepPopulation:
		r.city.SetPopulation(step.Population.Counts())

	case scenario.StepSave:
		r.server.Post(host.Message{ID: host.MsgSave, Segment: r.opts.Store})

	case scenario.StepReload:
		r.server.Post(host.Message{ID: host.MsgSave, Segment: r.opts.Store})
		r.server.Post(host.Message{ID: host.MsgLoad, Segment: r.opts.Store})

	default:
		return fmt.Errorf("step has no single action")
	}
	return r.dispatch(ctx)
}

// dispatch delivers the queued messages and forwards the events they
// recorded. Publish failures are logged and do not stop the city.
func (r *Runner) dispatch(ctx context.Context) error {
	r.server.Dispatch(log.NewContext(ctx, r.logger))
	if err := ctx.Err(); err != nil {
		return err
	}

	events := r.events.Drain()
	r.recorded += len(events)
	if len(events) == 0 || r.opts.Sink == nil {
		return nil
	}
	if err := r.opts.Sink.PublishEvents(ctx, events); err != nil {
		r.logger.WarnContext(ctx, "Line item events not published",
			"events", len(events),
			log.FieldError, err)
		return nil
	}
	r.published += len(events)
	return nil
}
