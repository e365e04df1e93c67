// Package host models the game's message server and routes its city
// notifications to the custom budget manager.
package host

import (
	"context"
	"fmt"
	"sync"

	"custombudget/internal/budget"
	"custombudget/internal/segment"
)

// Notification ids sent by the host.
const (
	MsgPostCityInit     uint32 = 0x26D31EC1
	MsgPostCityShutdown uint32 = 0x26D31EC3
	MsgInsertOccupant   uint32 = 0x99EF1142
	MsgRemoveOccupant   uint32 = 0x99EF1143
	MsgLoad             uint32 = 0x26C63341
	MsgSave             uint32 = 0x26C63344
	MsgSimNewMonth      uint32 = 0x66956816
)

// OccupantTypeBuilding is the occupant type of buildings. Other occupants
// (props, flora, networks) never carry budget items.
const OccupantTypeBuilding uint32 = 0x278128A0

// Occupant is anything placed on the city map.
type Occupant interface {
	OccupantType() uint32
}

// Message is one host notification. Only the fields of its kind are set:
// City and CityID for MsgPostCityInit, Occupant for insert and remove, and
// Segment for load and save.
type Message struct {
	ID       uint32
	City     budget.City
	CityID   string
	Occupant Occupant
	Segment  segment.Store
}

func MessageName(id uint32) string {
	switch id {
	case MsgPostCityInit:
		return "post_city_init"
	case MsgPostCityShutdown:
		return "post_city_shutdown"
	case MsgInsertOccupant:
		return "insert_occupant"
	case MsgRemoveOccupant:
		return "remove_occupant"
	case MsgLoad:
		return "load"
	case MsgSave:
		return "save"
	case MsgSimNewMonth:
		return "sim_new_month"
	default:
		return fmt.Sprintf("0x%08x", id)
	}
}

// Target receives the notifications it subscribed to.
type Target interface {
	DoMessage(ctx context.Context, msg Message)
}

// Server delivers messages to subscribed targets one at a time, in
// subscription order.
type Server struct {
	mu      sync.Mutex
	targets map[uint32][]Target
	queue   []Message
}

func NewServer() *Server {
	return &Server{targets: make(map[uint32][]Target)}
}

func (s *Server) AddNotification(t Target, ids ...uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.targets[id] = append(s.targets[id], t)
	}
}

func (s *Server) RemoveNotification(t Target, ids ...uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		list := s.targets[id]
		kept := list[:0]
		for _, existing := range list {
			if existing != t {
				kept = append(kept, existing)
			}
		}
		if len(kept) == 0 {
			delete(s.targets, id)
		} else {
			s.targets[id] = kept
		}
	}
}

// Post queues msg for the next Dispatch.
func (s *Server) Post(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, msg)
}

// Send delivers msg immediately.
func (s *Server) Send(ctx context.Context, msg Message) {
	s.mu.Lock()
	targets := append([]Target(nil), s.targets[msg.ID]...)
	s.mu.Unlock()

	for _, t := range targets {
		t.DoMessage(ctx, msg)
	}
}

// Dispatch delivers queued messages, including those posted by handlers
// during this call, and returns how many were delivered. It stops early when
// ctx is done.
func (s *Server) Dispatch(ctx context.Context) int {
	n := 0
	for {
		if ctx.Err() != nil {
			return n
		}
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return n
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.Send(ctx, msg)
		n++
	}
}
