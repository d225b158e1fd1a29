package pipeline

import (
	"context"
	"fmt"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/platform/obs"
	"itinerary-service/internal/ports"
	"itinerary-service/internal/services"
	"log"
	"sync"
	"time"
)

const stageInboxSize = 64

// actor is the shared mailbox loop of a stage. Each message is handled
// on its own goroutine so a slow request never blocks another.
type actor struct {
	name    string
	inbox   chan Message
	out     Deliverer
	timeout time.Duration
	handle  func(ctx context.Context, msg Message) Message

	wg sync.WaitGroup
}

func newActor(name string, out Deliverer, timeout time.Duration, handle func(context.Context, Message) Message) *actor {
	if timeout <= 0 {
		timeout = DefaultStageTimeout
	}
	return &actor{
		name:    name,
		inbox:   make(chan Message, stageInboxSize),
		out:     out,
		timeout: timeout,
		handle:  handle,
	}
}

// Send enqueues msg. A full mailbox is reported back as an ErrorMessage.
func (a *actor) Send(msg Message) {
	select {
	case a.inbox <- msg:
	default:
		log.Printf("req_id=%s stage=%s mailbox full", msg.CorrelationID(), a.name)
		a.out.Deliver(ErrorMessage{RequestID: msg.CorrelationID(), Error: a.name + " stage is overloaded"})
	}
}

// Run processes the mailbox until ctx is done, then waits for in-flight handlers.
func (a *actor) Run(ctx context.Context) {
	defer a.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.inbox:
			a.wg.Add(1)
			go func() {
				defer a.wg.Done()

				hctx, cancel := context.WithTimeout(obs.WithRequestID(ctx, msg.CorrelationID()), a.timeout)
				defer cancel()

				if reply := a.handle(hctx, msg); reply != nil {
					a.out.Deliver(reply)
				}
			}()
		}
	}
}

// InfoStage turns a TravelRequest into a TravelPlan: free time from the
// calendar plus per-category search preferences.
type InfoStage struct {
	*actor
	calendar ports.CalendarSource
	proposer ports.CategoryProposer
}

func NewInfoStage(calendar ports.CalendarSource, proposer ports.CategoryProposer, out Deliverer, timeout time.Duration) *InfoStage {
	s := &InfoStage{calendar: calendar, proposer: proposer}
	s.actor = newActor("info", out, timeout, s.handle)
	return s
}

func (s *InfoStage) handle(ctx context.Context, msg Message) Message {
	req, ok := msg.(TravelRequest)
	if !ok {
		log.Printf("req_id=%s stage=info ignored %T", msg.CorrelationID(), msg)
		return nil
	}

	plan, err := s.Plan(ctx, req)
	if err != nil {
		return ErrorMessage{RequestID: req.RequestID, Error: err.Error()}
	}
	return plan
}

// Plan gathers free time and category preferences for req.
func (s *InfoStage) Plan(ctx context.Context, req TravelRequest) (_ TravelPlan, err error) {
	defer obs.Time(ctx, "stage.info")(&err)

	calendarID := req.Preferences.CalendarID

	tz, err := s.calendar.Timezone(ctx, calendarID)
	if err != nil {
		return TravelPlan{}, &domain.CollaboratorError{Collaborator: "calendar", Err: err}
	}

	from, to, err := ParseRequestRange(req, tz)
	if err != nil {
		return TravelPlan{}, err
	}

	events, err := s.calendar.ListEvents(ctx, calendarID, from, to)
	if err != nil {
		return TravelPlan{}, &domain.CollaboratorError{Collaborator: "calendar", Err: err}
	}

	free, err := services.ComputeFreeIntervals(events, from, to, tz, req.Location)
	if err != nil {
		return TravelPlan{}, err
	}

	categories, err := s.proposer.ProposeCategories(ctx, req.Prompt, req.Preferences)
	if err != nil {
		return TravelPlan{}, &domain.CollaboratorError{Collaborator: "planning", Err: err}
	}

	return TravelPlan{
		RequestID:   req.RequestID,
		FreeTimes:   free,
		Attractions: categories.Attractions,
		Events:      categories.Events,
		Lunch:       categories.Lunch,
		Dinner:      categories.Dinner,
	}, nil
}

// ScheduleStage turns a TravelPlan into an ItineraryResponse.
type ScheduleStage struct {
	*actor
	planner *services.ItineraryPlanner
}

func NewScheduleStage(planner *services.ItineraryPlanner, out Deliverer, timeout time.Duration) *ScheduleStage {
	s := &ScheduleStage{planner: planner}
	s.actor = newActor("schedule", out, timeout, s.handle)
	return s
}

func (s *ScheduleStage) handle(ctx context.Context, msg Message) Message {
	plan, ok := msg.(TravelPlan)
	if !ok {
		log.Printf("req_id=%s stage=schedule ignored %T", msg.CorrelationID(), msg)
		return nil
	}

	planned, err := s.planner.PlanItinerary(ctx, plan.FreeTimes, plan.Categories())
	if err != nil {
		return ErrorMessage{RequestID: plan.RequestID, Error: fmt.Sprintf("schedule: %v", err)}
	}

	return ItineraryResponse{
		RequestID:     plan.RequestID,
		Itinerary:     planned.Itinerary,
		TravelMinutes: planned.TravelMinutes,
	}
}
