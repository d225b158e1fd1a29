package pipeline

import (
	"context"
	"itinerary-service/internal/domain"
	"itinerary-service/internal/ports"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultRetention = time.Hour

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// RequestStatus is the externally visible progress of one request.
type RequestStatus struct {
	RequestID      string  `json:"request_id"`
	Status         Status  `json:"status"`
	State          string  `json:"state"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Error          string  `json:"error,omitempty"`
}

type RunnerOptions struct {
	Store           ports.ArtifactStore
	PipelineTimeout time.Duration
	StageTimeout    time.Duration
	// Retention is how long finished requests stay queryable.
	Retention time.Duration
}

type entry struct {
	coord    *Coordinator
	created  time.Time
	finished time.Time
	outcome  *Outcome
}

// Runner owns the coordinators of in-flight requests and routes stage
// replies to them by request id.
type Runner struct {
	opts RunnerOptions
	ctx  context.Context

	info     Sender
	schedule Sender

	mu       sync.Mutex
	requests map[string]*entry
}

// NewRunner returns a runner whose pipelines live as long as ctx.
// Bind must be called before Submit.
func NewRunner(ctx context.Context, opts RunnerOptions) *Runner {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	return &Runner{
		opts:     opts,
		ctx:      ctx,
		requests: make(map[string]*entry),
	}
}

// Bind attaches the stages that coordinators send to.
func (r *Runner) Bind(info, schedule Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = info
	r.schedule = schedule
}

// Submit validates req, assigns a request id and starts its pipeline.
// Invalid requests are rejected before any stage runs.
func (r *Runner) Submit(req TravelRequest) (string, error) {
	if err := ValidateRequest(req); err != nil {
		return "", err
	}

	req.RequestID = uuid.NewString()

	r.mu.Lock()
	r.evictLocked(time.Now())
	coord := NewCoordinator(req, CoordinatorOptions{
		Info:            r.info,
		Schedule:        r.schedule,
		Store:           r.opts.Store,
		PipelineTimeout: r.opts.PipelineTimeout,
		StageTimeout:    r.opts.StageTimeout,
	})
	e := &entry{coord: coord, created: time.Now()}
	r.requests[req.RequestID] = e
	r.mu.Unlock()

	log.Printf("req_id=%s pipeline submitted location=%q from=%q to=%q", req.RequestID, req.Location, req.DateFrom, req.DateTo)

	go func() {
		out := coord.Run(r.ctx)

		r.mu.Lock()
		e.outcome = &out
		e.finished = time.Now()
		r.mu.Unlock()
	}()

	return req.RequestID, nil
}

// Deliver routes a stage reply. Replies for unknown requests are dropped.
func (r *Runner) Deliver(msg Message) {
	r.mu.Lock()
	e, ok := r.requests[msg.CorrelationID()]
	r.mu.Unlock()

	if !ok {
		log.Printf("req_id=%s dropped %T for unknown request", msg.CorrelationID(), msg)
		return
	}
	e.coord.Deliver(msg)
}

// Status reports progress for id, or domain.ErrNotFound.
func (r *Runner) Status(id string) (RequestStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.requests[id]
	if !ok {
		return RequestStatus{}, domain.ErrNotFound
	}
	return e.statusLocked(id), nil
}

// Result returns the finished itinerary for id. ok is false while the
// request is still running or when it failed.
func (r *Runner) Result(id string) (ItineraryResponse, RequestStatus, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, found := r.requests[id]
	if !found {
		return ItineraryResponse{}, RequestStatus{}, false, domain.ErrNotFound
	}

	st := e.statusLocked(id)
	if e.outcome == nil || e.outcome.State != StateItineraryReceived {
		return ItineraryResponse{}, st, false, nil
	}

	return ItineraryResponse{
		RequestID:     id,
		Itinerary:     e.outcome.Itinerary,
		TravelMinutes: e.outcome.TravelMinutes,
	}, st, true, nil
}

// Wait blocks until id finishes or ctx is done.
func (r *Runner) Wait(ctx context.Context, id string) (RequestStatus, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		st, err := r.Status(id)
		if err != nil {
			return RequestStatus{}, err
		}
		if st.Status == StatusCompleted || st.Status == StatusFailed {
			return st, nil
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *entry) statusLocked(id string) RequestStatus {
	st := RequestStatus{RequestID: id}

	switch {
	case e.outcome != nil:
		st.State = e.outcome.State.String()
		st.ElapsedSeconds = e.outcome.Elapsed.Seconds()
		if e.outcome.State == StateItineraryReceived {
			st.Status = StatusCompleted
		} else {
			st.Status = StatusFailed
			if e.outcome.Err != nil {
				st.Error = e.outcome.Err.Error()
			}
		}
	default:
		state := e.coord.State()
		st.State = state.String()
		st.ElapsedSeconds = time.Since(e.created).Seconds()
		st.Status = StatusProcessing
		if state == StateIdle {
			st.Status = StatusPending
		}
	}

	return st
}

func (r *Runner) evictLocked(now time.Time) {
	for id, e := range r.requests {
		if e.outcome != nil && now.Sub(e.finished) > r.opts.Retention {
			delete(r.requests, id)
		}
	}
}
