// Package circuit guards upstream endpoint groups with circuit breakers.
//
// A breaker opens after Threshold consecutive failures and fails fast until
// Timeout has passed. It then lets up to MaxHalfOpen probe calls through;
// SuccessThreshold successful probes close it again and any failed probe
// reopens it.
package circuit

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

type Config struct {
	Threshold        int
	Timeout          time.Duration
	SuccessThreshold int
	MaxHalfOpen      int

	// IsFailure decides whether an error counts against the breaker. Nil
	// counts every non-nil error.
	IsFailure func(error) bool

	// OnStateChange runs with the breaker lock held and must not call back
	// into the breaker.
	OnStateChange func(name string, from, to State)
}

func DefaultConfig() Config {
	return Config{
		Threshold:        5,
		Timeout:          30 * time.Second,
		SuccessThreshold: 2,
		MaxHalfOpen:      1,
	}
}

// Snapshot is a point-in-time view of one breaker.
type Snapshot struct {
	Name     string    `json:"name"`
	State    State     `json:"state"`
	Failures int       `json:"failures"`
	OpenedAt time.Time `json:"opened_at,omitzero"`
}

type Breaker struct {
	name   string
	config Config
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	state     State
	failures  int
	successes int
	probes    int
	openedAt  time.Time
}

func NewBreaker(name string, config Config, logger *zap.Logger) *Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	if config.MaxHalfOpen <= 0 {
		config.MaxHalfOpen = 1
	}

	return &Breaker{
		name:   name,
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Execute runs fn unless the breaker is failing fast and records its
// outcome. An error caused by ctx ending is not held against the upstream.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		b.release()
		return err
	}

	b.settle(err)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Timeout {
			return ErrCircuitOpen
		}
		b.setState(StateHalfOpen)
		b.probes = 1
	case StateHalfOpen:
		if b.probes >= b.config.MaxHalfOpen {
			return ErrTooManyRequests
		}
		b.probes++
	}
	return nil
}

func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.probes > 0 {
		b.probes--
	}
}

func (b *Breaker) settle(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.probes > 0 {
		b.probes--
	}

	if !b.isFailure(err) {
		b.failures = 0
		if b.state != StateHalfOpen {
			return
		}
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.setState(StateClosed)
		}
		return
	}

	b.failures++
	b.successes = 0
	if b.state == StateHalfOpen || b.failures >= b.config.Threshold {
		b.openedAt = b.now()
		b.setState(StateOpen)
	}
}

func (b *Breaker) isFailure(err error) bool {
	if err == nil {
		return false
	}
	if b.config.IsFailure == nil {
		return true
	}
	return b.config.IsFailure(err)
}

// setState must be called with b.mu held.
func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}

	b.state = to
	b.probes = 0
	b.successes = 0
	if to == StateClosed {
		b.failures = 0
		b.openedAt = time.Time{}
	}

	b.logger.Info("Circuit breaker state changed",
		zap.String("name", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("failures", b.failures),
	)

	if b.config.OnStateChange != nil {
		b.config.OnStateChange(b.name, from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Snapshot{
		Name:     b.name,
		State:    b.state,
		Failures: b.failures,
		OpenedAt: b.openedAt,
	}
}

// Registry holds one breaker per upstream endpoint group so a failing
// group does not block the others.
type Registry struct {
	config Config
	logger *zap.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
}

func NewRegistry(config Config, logger *zap.Logger) *Registry {
	return &Registry{
		config:   config,
		logger:   logger,
		breakers: make(map[string]*Breaker),
	}
}

// Get returns the breaker for name, creating it on first use.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	breaker, ok := r.breakers[name]
	if !ok {
		breaker = NewBreaker(name, r.config, r.logger)
		r.breakers[name] = breaker
	}
	return breaker
}

// Snapshots returns every breaker ordered by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, breaker := range r.breakers {
		breakers = append(breakers, breaker)
	}
	r.mu.Unlock()

	snapshots := make([]Snapshot, 0, len(breakers))
	for _, breaker := range breakers {
		snapshots = append(snapshots, breaker.Snapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Name < snapshots[j].Name })
	return snapshots
}

