package metrics

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OperationType represents the type of store operation being measured
type OperationType string

const (
	// ReadOperation represents a single-item read
	ReadOperation OperationType = "READ"
	// WriteOperation represents a single-item write, update or delete
	WriteOperation OperationType = "WRITE"
	// QueryOperation represents a paginated query or scan
	QueryOperation OperationType = "QUERY"
	// BatchOperation represents a batched multi-key lookup
	BatchOperation OperationType = "BATCH"
	// TransactionOperation represents a multi-item transaction
	TransactionOperation OperationType = "TRANSACTION"
)

// Invocation stores the metrics for a single handler invocation
type Invocation struct {
	ID          string                 `json:"id"`
	Handler     string                 `json:"handler"`
	RequestID   string                 `json:"requestId,omitempty"`
	IsColdStart bool                   `json:"isColdStart"`
	StartTime   time.Time              `json:"startTime"`
	EndTime     time.Time              `json:"endTime"`
	Duration    time.Duration          `json:"duration"`
	StatusCode  int                    `json:"statusCode"`
	Operations  []*OperationMetric     `json:"operations"`
	Summary     map[string]interface{} `json:"summary"`
}

// OperationMetric represents metrics for a single store operation
type OperationMetric struct {
	Type         OperationType `json:"type"`
	Name         string        `json:"name"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	Duration     time.Duration `json:"duration"`
	ItemCount    int64         `json:"itemCount"`
	Error        error         `json:"-"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
}

type invocationKey struct{}

// Collector collects store operation metrics per handler invocation.
// Invocations are tracked through the request context so concurrent requests
// of the local server do not mix.
type Collector struct {
	mu        sync.Mutex
	active    map[string]*Invocation
	warm      bool
	completed int64
	now       func() time.Time
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		active: make(map[string]*Invocation),
		now:    time.Now,
	}
}

// StartInvocation begins tracking an invocation and returns a context carrying it.
// The first invocation seen by a collector is flagged as a cold start.
func (c *Collector) StartInvocation(ctx context.Context, handler, requestID string) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv := &Invocation{
		ID:          uuid.NewString(),
		Handler:     handler,
		RequestID:   requestID,
		IsColdStart: !c.warm,
		StartTime:   c.now(),
		Operations:  make([]*OperationMetric, 0),
		Summary:     make(map[string]interface{}),
	}
	c.warm = true
	c.active[inv.ID] = inv

	return context.WithValue(ctx, invocationKey{}, inv.ID)
}

// MeasureOperation runs operation and records its duration, item count and
// error against the invocation carried by ctx. Without one the operation
// still runs but nothing is recorded.
func (c *Collector) MeasureOperation(ctx context.Context, opType OperationType, name string, operation func() (int64, error)) error {
	id, _ := ctx.Value(invocationKey{}).(string)

	metric := &OperationMetric{
		Type:      opType,
		Name:      name,
		StartTime: c.now(),
	}

	items, err := operation()
	metric.EndTime = c.now()
	metric.Duration = metric.EndTime.Sub(metric.StartTime)
	metric.ItemCount = items

	if err != nil {
		metric.Error = err
		metric.ErrorMessage = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if inv, ok := c.active[id]; ok {
		inv.Operations = append(inv.Operations, metric)
	}

	return err
}

// EndInvocation completes the invocation carried by ctx, calculates its
// summary and returns it. It returns nil when ctx carries no active invocation.
func (c *Collector) EndInvocation(ctx context.Context, statusCode int) *Invocation {
	id, _ := ctx.Value(invocationKey{}).(string)

	c.mu.Lock()
	defer c.mu.Unlock()

	inv, ok := c.active[id]
	if !ok {
		return nil
	}
	delete(c.active, id)
	c.completed++

	inv.EndTime = c.now()
	inv.Duration = inv.EndTime.Sub(inv.StartTime)
	inv.StatusCode = statusCode

	var totalDuration time.Duration
	var totalItems, successCount, errorCount int64

	for _, op := range inv.Operations {
		totalDuration += op.Duration
		totalItems += op.ItemCount

		if op.Error != nil {
			errorCount++
		} else {
			successCount++
		}
	}

	opCount := int64(len(inv.Operations))
	inv.Summary["operationCount"] = opCount

	if opCount > 0 {
		inv.Summary["storeDuration"] = totalDuration.Nanoseconds()
		inv.Summary["avgDuration"] = totalDuration.Nanoseconds() / opCount
		inv.Summary["totalItems"] = totalItems
		inv.Summary["successCount"] = successCount
		inv.Summary["errorCount"] = errorCount
		inv.Summary["successRate"] = float64(successCount) / float64(opCount)

		// Percentiles only mean something with enough samples
		if opCount >= 10 {
			durations := make([]int64, 0, opCount)
			for _, op := range inv.Operations {
				durations = append(durations, op.Duration.Nanoseconds())
			}
			sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

			inv.Summary["p50"] = durations[opCount*50/100]
			inv.Summary["p90"] = durations[opCount*90/100]
			inv.Summary["p99"] = durations[opCount*99/100]
		}
	}

	return inv
}

// Completed returns the number of invocations ended so far
func (c *Collector) Completed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.completed
}

// Reset clears all tracking state, including the cold start flag
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = make(map[string]*Invocation)
	c.warm = false
	c.completed = 0
}
