package qualify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jkazadi/portfolio-ai-platform/pkg/logging"
)

// ErrDispatcherClosed indicates the dispatcher is no longer accepting work.
var ErrDispatcherClosed = errors.New("qualify: dispatcher closed")

const (
	defaultWorkers          = 2
	defaultReceiveWait      = 2  // seconds
	defaultReceiveMax       = 5  // messages
	maxReceiveWaitSeconds   = 20 // SQS limit
	maxReceiveBatchMessages = 10
)

type dispatcherConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// DispatcherOption configures the dispatcher.
type DispatcherOption func(*dispatcherConfig)

// WithWorkerCount overrides the number of queue polling goroutines.
func WithWorkerCount(workers int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if workers > 0 {
			cfg.workers = workers
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait time for ReceiveMessage calls.
func WithReceiveWaitSeconds(seconds int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxReceiveWaitSeconds {
			seconds = maxReceiveWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize overrides how many messages each poll should return.
func WithReceiveBatchSize(size int) DispatcherOption {
	return func(cfg *dispatcherConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchMessages {
			size = maxReceiveBatchMessages
		}
		cfg.receiveBatchSize = size
	}
}

// Dispatcher routes session work through a queue before invoking the
// downstream qualification engine, preserving blocking request/response
// semantics for HTTP handlers. It lets development point at an in-memory
// queue and production at SQS without touching the handlers. When a job
// updater is attached, each turn also leaves a pollable job record for
// clients that lose the HTTP connection mid-turn.
type Dispatcher struct {
	processor Service
	queue     queueClient
	jobs      JobTracker
	logger    *logging.Logger

	cfg dispatcherConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	pending sync.Map // jobID -> chan dispatchResult
}

var _ Service = (*Dispatcher)(nil)

// NewDispatcher wires a queue-backed dispatcher around the supplied service.
// jobs may be nil, disabling job-status records.
func NewDispatcher(processor Service, queue queueClient, jobs JobTracker, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	if processor == nil {
		panic("qualify: processor cannot be nil")
	}
	if queue == nil {
		panic("qualify: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := dispatcherConfig{
		workers:          defaultWorkers,
		receiveWaitSecs:  defaultReceiveWait,
		receiveBatchSize: defaultReceiveMax,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		processor: processor,
		queue:     queue,
		jobs:      jobs,
		logger:    logger,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < cfg.workers; i++ {
		d.wg.Add(1)
		go d.runWorker(i + 1)
	}

	return d
}

// StartSession enqueues the request and blocks until the downstream
// processor completes.
func (d *Dispatcher) StartSession(ctx context.Context, req StartRequest) (*Response, error) {
	return d.enqueue(ctx, jobTypeStart, req, MessageRequest{})
}

// ProcessMessage enqueues a session turn and returns the processed output.
func (d *Dispatcher) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	return d.enqueue(ctx, jobTypeMessage, StartRequest{}, req)
}

// CloseSession bypasses the queue; abandoning a session is cheap and
// carries no capability calls.
func (d *Dispatcher) CloseSession(ctx context.Context, sessionID string) error {
	return d.processor.CloseSession(ctx, sessionID)
}

// GetHistory bypasses the queue; reads never contend with turn processing.
func (d *Dispatcher) GetHistory(ctx context.Context, sessionID string) ([]Message, error) {
	return d.processor.GetHistory(ctx, sessionID)
}

// Shutdown stops worker goroutines and notifies any pending callers.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
	}

	d.pending.Range(func(key, value any) bool {
		if ch, ok := value.(chan dispatchResult); ok {
			select {
			case ch <- dispatchResult{err: ErrDispatcherClosed}:
			default:
			}
		}
		d.pending.Delete(key)
		return true
	})

	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, kind jobType, startReq StartRequest, msgReq MessageRequest) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	jobID := uuid.NewString()
	payload := queuePayload{
		ID:      jobID,
		Kind:    kind,
		Start:   startReq,
		Message: msgReq,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("qualify: failed to encode payload: %w", err)
	}

	resultCh := make(chan dispatchResult, 1)
	d.pending.Store(jobID, resultCh)
	defer d.pending.Delete(jobID)

	if d.jobs != nil {
		record := &JobRecord{JobID: jobID, RequestType: kind}
		if err := d.jobs.PutPending(ctx, record); err != nil {
			d.logger.Warn("failed to record pending job", "job_id", jobID, "error", err)
		}
	}

	if err := d.queue.Send(ctx, string(body)); err != nil {
		return nil, fmt.Errorf("qualify: failed to enqueue job: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.response, res.err
	}
}

func (d *Dispatcher) runWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Debug("session dispatcher worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Debug("session dispatcher worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := d.queue.Receive(d.ctx, d.cfg.receiveBatchSize, d.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			d.logger.Error("failed to receive session jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			d.handleQueueMessage(msg)
		}
	}
}

func (d *Dispatcher) handleQueueMessage(msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		d.logger.Error("failed to decode session job", "error", err)
		d.deleteMessage(msg.ReceiptHandle)
		return
	}

	var (
		resp *Response
		err  error
	)

	switch payload.Kind {
	case jobTypeStart:
		resp, err = d.processor.StartSession(d.ctx, payload.Start)
	case jobTypeMessage:
		resp, err = d.processor.ProcessMessage(d.ctx, payload.Message)
	default:
		err = fmt.Errorf("qualify: unknown job type %q", payload.Kind)
	}

	d.deleteMessage(msg.ReceiptHandle)
	d.recordJobOutcome(payload.ID, resp, err)
	d.deliverResult(payload.ID, resp, err)
}

func (d *Dispatcher) deleteMessage(receiptHandle string) {
	deleteCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.queue.Delete(deleteCtx, receiptHandle); err != nil {
		d.logger.Error("failed to delete session job", "error", err)
	}
}

func (d *Dispatcher) recordJobOutcome(jobID string, resp *Response, err error) {
	if d.jobs == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err != nil {
		if markErr := d.jobs.MarkFailed(recordCtx, jobID, err.Error()); markErr != nil {
			d.logger.Warn("failed to record failed job", "job_id", jobID, "error", markErr)
		}
		return
	}
	sessionID := ""
	if resp != nil {
		sessionID = resp.SessionID
	}
	if markErr := d.jobs.MarkCompleted(recordCtx, jobID, resp, sessionID); markErr != nil {
		d.logger.Warn("failed to record completed job", "job_id", jobID, "error", markErr)
	}
}

func (d *Dispatcher) deliverResult(jobID string, resp *Response, err error) {
	value, ok := d.pending.Load(jobID)
	if !ok {
		d.logger.Debug("no waiting caller for session job", "job_id", jobID)
		return
	}

	ch, ok := value.(chan dispatchResult)
	if !ok {
		d.logger.Error("session dispatcher pending map corrupted", "job_id", jobID)
		d.pending.Delete(jobID)
		return
	}

	select {
	case ch <- dispatchResult{response: resp, err: err}:
	default:
	}
}
