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

const (
	DefaultPipelineTimeout = 120 * time.Second
	DefaultStageTimeout    = 60 * time.Second

	inboxSize = 8
)

type State int

const (
	StateIdle State = iota
	StateRequestSent
	StatePlanReceived
	StateItineraryReceived
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRequestSent:
		return "REQUEST_SENT"
	case StatePlanReceived:
		return "PLAN_RECEIVED"
	case StateItineraryReceived:
		return "ITINERARY_RECEIVED"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) Terminal() bool { return s == StateItineraryReceived || s == StateFailed }

// Outcome is the terminal result of one pipeline run.
type Outcome struct {
	State         State
	Itinerary     domain.Itinerary
	TravelMinutes services.TravelMatrix
	Err           error
	Elapsed       time.Duration
}

type CoordinatorOptions struct {
	Info     Sender
	Schedule Sender
	Store    ports.ArtifactStore

	// PipelineTimeout bounds the whole run; StageTimeout bounds the wait
	// for each stage reply.
	PipelineTimeout time.Duration
	StageTimeout    time.Duration
}

// Coordinator drives one request through the info and schedule stages.
// Transitions happen only on the goroutine running Run.
type Coordinator struct {
	req   TravelRequest
	opts  CoordinatorOptions
	inbox chan Message

	mu    sync.Mutex
	state State
}

func NewCoordinator(req TravelRequest, opts CoordinatorOptions) *Coordinator {
	if opts.PipelineTimeout <= 0 {
		opts.PipelineTimeout = DefaultPipelineTimeout
	}
	if opts.StageTimeout <= 0 || opts.StageTimeout > opts.PipelineTimeout {
		opts.StageTimeout = min(DefaultStageTimeout, opts.PipelineTimeout)
	}

	return &Coordinator{
		req:   req,
		opts:  opts,
		inbox: make(chan Message, inboxSize),
	}
}

func (c *Coordinator) RequestID() string { return c.req.RequestID }

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Coordinator) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Deliver enqueues msg without blocking. It reports false when the
// message was dropped: wrong request, terminal state, or full inbox.
func (c *Coordinator) Deliver(msg Message) bool {
	if msg.CorrelationID() != c.req.RequestID {
		log.Printf("req_id=%s dropped message for req_id=%s", c.req.RequestID, msg.CorrelationID())
		return false
	}

	if state := c.State(); state.Terminal() {
		log.Printf("req_id=%s dropped late %T in state=%s", c.req.RequestID, msg, state)
		return false
	}

	select {
	case c.inbox <- msg:
		return true
	default:
		log.Printf("req_id=%s dropped %T: inbox full", c.req.RequestID, msg)
		return false
	}
}

// Run executes the pipeline until a terminal state is reached.
func (c *Coordinator) Run(ctx context.Context) Outcome {
	ctx = obs.WithRequestID(ctx, c.req.RequestID)
	started := time.Now()

	finish := func(state State, out Outcome) Outcome {
		c.setState(state)
		out.State = state
		out.Elapsed = time.Since(started)
		if out.Err != nil {
			log.Printf("req_id=%s pipeline failed elapsed=%dms err=%v", c.req.RequestID, out.Elapsed.Milliseconds(), out.Err)
			c.persist(ctx, ports.ArtifactError, ErrorMessage{RequestID: c.req.RequestID, Error: out.Err.Error()})
		} else {
			log.Printf("req_id=%s pipeline completed elapsed=%dms items=%d", c.req.RequestID, out.Elapsed.Milliseconds(), len(out.Itinerary))
		}
		return out
	}
	fail := func(err error) Outcome { return finish(StateFailed, Outcome{Err: err}) }

	if err := ValidateRequest(c.req); err != nil {
		return fail(err)
	}

	pipelineTimer := time.NewTimer(c.opts.PipelineTimeout)
	defer pipelineTimer.Stop()
	stageTimer := time.NewTimer(c.opts.StageTimeout)
	defer stageTimer.Stop()

	c.setState(StateRequestSent)
	c.opts.Info.Send(c.req)

	for {
		state := c.State()

		select {
		case <-ctx.Done():
			return fail(fmt.Errorf("pipeline cancelled in %s: %w", state, ctx.Err()))

		case <-pipelineTimer.C:
			return fail(&domain.PipelineTimeoutError{Stage: state.String(), Elapsed: time.Since(started)})

		case <-stageTimer.C:
			return fail(&domain.PipelineTimeoutError{Stage: state.String(), Elapsed: time.Since(started)})

		case msg := <-c.inbox:
			switch m := msg.(type) {
			case ErrorMessage:
				return fail(fmt.Errorf("stage error in %s: %s", state, m.Error))

			case TravelPlan:
				if state != StateRequestSent {
					log.Printf("req_id=%s dropped out-of-order plan in state=%s", c.req.RequestID, state)
					continue
				}
				if err := validatePlan(m); err != nil {
					log.Printf("req_id=%s invalid plan payload=%s", c.req.RequestID, payload(m))
					return fail(err)
				}

				c.persist(ctx, ports.ArtifactPlan, m)
				c.setState(StatePlanReceived)
				resetTimer(stageTimer, c.opts.StageTimeout)
				c.opts.Schedule.Send(m)

			case ItineraryResponse:
				if state != StatePlanReceived {
					log.Printf("req_id=%s dropped out-of-order itinerary in state=%s", c.req.RequestID, state)
					continue
				}
				if err := validateItinerary(m); err != nil {
					log.Printf("req_id=%s invalid itinerary payload=%s", c.req.RequestID, payload(m))
					return fail(err)
				}

				c.persist(ctx, ports.ArtifactItinerary, m)
				return finish(StateItineraryReceived, Outcome{Itinerary: m.Itinerary, TravelMinutes: m.TravelMinutes})

			default:
				log.Printf("req_id=%s dropped unexpected %T in state=%s", c.req.RequestID, msg, state)
			}
		}
	}
}

// persist saves an artifact; failures are logged only.
func (c *Coordinator) persist(ctx context.Context, kind string, v any) {
	if c.opts.Store == nil {
		return
	}
	if err := c.opts.Store.Save(ctx, c.req.RequestID, kind, v); err != nil {
		log.Printf("req_id=%s artifact save failed kind=%s err=%v", c.req.RequestID, kind, err)
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
