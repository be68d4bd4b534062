package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// Task is one notification to deliver. NotificationID is set when the task
// comes from a stored failure.
type Task struct {
	NotificationID int
	Kind           models.NotificationKind
	AppointmentID  int
	PaymentID      string
	Amount         int
	Attempts       int
}

type Handler interface {
	Handle(ctx context.Context, task Task) error
}

type Store interface {
	InsertNotification(*models.Notification) (int, error)
	UpdateNotification(*models.Notification) error
	GetNotificationsByStatus(status models.NotificationStatus) ([]models.Notification, error)
}

type Options struct {
	Workers     int
	BufferSize  int
	MaxAttempts int
	RetryDelay  time.Duration
}

type Stats struct {
	Enqueued int64 `json:"enqueued"`
	Sent     int64 `json:"sent"`
	Failed   int64 `json:"failed"`
	Retried  int64 `json:"retried"`
	Pending  int   `json:"pending"`
}

// Queue delivers notifications on a fixed pool of workers. A task is tried
// MaxAttempts times; a task that still fails is stored with status FAILED
// so it can be listed and retried later.
type Queue struct {
	handler Handler
	store   Store
	logger  *log.Entry
	opts    Options

	tasks  chan Task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool

	enqueued int64
	sent     int64
	failed   int64
	retried  int64
}

func NewQueue(handler Handler, store Store, logger *log.Entry, opts Options) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 100
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}

	return &Queue{
		handler: handler,
		store:   store,
		logger:  logger.WithField("component", "notifications"),
		opts:    opts,
		tasks:   make(chan Task, opts.BufferSize),
	}
}

func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	q.logger.WithField("workers", q.opts.Workers).Info("notification workers started")
}

// Stop refuses new tasks and waits for the workers to drain the queue.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("notification workers stopped")
}

// Enqueue adds a task without blocking. A task that cannot be queued is
// stored as FAILED so it is not lost.
func (q *Queue) Enqueue(task Task) error {
	err := q.tryEnqueue(task)
	if err != nil {
		atomic.AddInt64(&q.failed, 1)
		q.recordFailure(task, err, q.taskLogger(task))
	}
	return err
}

func (q *Queue) tryEnqueue(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		atomic.AddInt64(&q.enqueued, 1)
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) enqueueWait(ctx context.Context, task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		atomic.AddInt64(&q.enqueued, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued: atomic.LoadInt64(&q.enqueued),
		Sent:     atomic.LoadInt64(&q.sent),
		Failed:   atomic.LoadInt64(&q.failed),
		Retried:  atomic.LoadInt64(&q.retried),
		Pending:  len(q.tasks),
	}
}

// RetryFailed puts every stored failure back on the queue and returns how many were queued.
func (q *Queue) RetryFailed(ctx context.Context) (int, error) {
	failed, err := q.store.GetNotificationsByStatus(models.NotificationFailed)
	if err != nil {
		return 0, errors.Wrap(err, "failed listing failed notifications")
	}

	retried := 0
	for i := range failed {
		notification := failed[i]
		notification.Status = models.NotificationRetrying
		if err := q.store.UpdateNotification(&notification); err != nil {
			return retried, errors.Wrapf(err, "failed marking notification %d", notification.ID)
		}

		task := Task{
			NotificationID: notification.ID,
			Kind:           notification.Kind,
			AppointmentID:  notification.AppointmentID,
			PaymentID:      notification.PaymentID,
			Amount:         notification.Amount,
			Attempts:       notification.Attempts,
		}
		if err := q.enqueueWait(ctx, task); err != nil {
			notification.Status = models.NotificationFailed
			if updateErr := q.store.UpdateNotification(&notification); updateErr != nil {
				q.logger.WithError(updateErr).WithField("notification_id", notification.ID).Error("failed restoring notification status")
			}
			return retried, err
		}

		retried++
		atomic.AddInt64(&q.retried, 1)
	}

	return retried, nil
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for task := range q.tasks {
		q.process(ctx, task)
	}
}

func (q *Queue) process(ctx context.Context, task Task) {
	logger := q.taskLogger(task)

	var err error
	for attempt := 1; attempt <= q.opts.MaxAttempts; attempt++ {
		task.Attempts++
		if err = q.handler.Handle(ctx, task); err == nil {
			atomic.AddInt64(&q.sent, 1)
			q.markSent(task, logger)
			logger.WithField("attempt", attempt).Info("notification sent")
			return
		}

		logger.WithError(err).WithField("attempt", attempt).Warn("notification attempt failed")
		if IsPermanent(err) || attempt == q.opts.MaxAttempts || !q.wait(ctx, attempt) {
			break
		}
	}

	atomic.AddInt64(&q.failed, 1)
	q.recordFailure(task, err, logger)
}

func (q *Queue) taskLogger(task Task) *log.Entry {
	return q.logger.WithFields(log.Fields{
		"kind":            task.Kind,
		"appointment_id":  task.AppointmentID,
		"payment_id":      task.PaymentID,
		"notification_id": task.NotificationID,
	})
}

func (q *Queue) wait(ctx context.Context, attempt int) bool {
	timer := time.NewTimer(q.opts.RetryDelay * time.Duration(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (q *Queue) markSent(task Task, logger *log.Entry) {
	if task.NotificationID == 0 || q.store == nil {
		return
	}

	notification := notificationFromTask(task, models.NotificationSent, "")
	if err := q.store.UpdateNotification(notification); err != nil {
		logger.WithError(err).Error("failed marking notification as sent")
	}
}

func (q *Queue) recordFailure(task Task, cause error, logger *log.Entry) {
	logger = logger.WithField("attempts", task.Attempts)
	if q.store == nil {
		logger.WithError(cause).Error("notification failed")
		return
	}

	notification := notificationFromTask(task, models.NotificationFailed, cause.Error())
	if task.NotificationID != 0 {
		if err := q.store.UpdateNotification(notification); err != nil {
			logger.WithError(err).Error("failed storing notification failure")
		}
		logger.WithError(cause).Error("notification failed again")
		return
	}

	id, err := q.store.InsertNotification(notification)
	if err != nil {
		logger.WithError(err).Error("failed storing notification failure")
	}
	logger.WithError(cause).WithField("notification_id", id).Error("notification failed")
}

func notificationFromTask(task Task, status models.NotificationStatus, lastError string) *models.Notification {
	return &models.Notification{
		ID:            task.NotificationID,
		Kind:          task.Kind,
		AppointmentID: task.AppointmentID,
		PaymentID:     task.PaymentID,
		Amount:        task.Amount,
		Attempts:      task.Attempts,
		Status:        status,
		LastError:     lastError,
	}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var target *permanentError
	return errors.As(err, &target)
}
