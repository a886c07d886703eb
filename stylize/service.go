// Package stylize runs a style transformation request end to end: validate,
// dispatch to the router, encode the result and record it in the user's
// history when the request names a user.
package stylize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KK-2k06/DreamInk/db"
	"github.com/KK-2k06/DreamInk/imagecodec"
	"github.com/KK-2k06/DreamInk/logging"
	"github.com/KK-2k06/DreamInk/metrics"
	"github.com/KK-2k06/DreamInk/router"
	"github.com/KK-2k06/DreamInk/shutdown"
	"github.com/KK-2k06/DreamInk/styles"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher turns image bytes into styled PNG bytes. *router.Router satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, style string, image []byte) ([]byte, error)
}

// HistoryStore records transformations. *db.Repository satisfies it.
type HistoryStore interface {
	InsertHistory(ctx context.Context, rec db.HistoryRecord) (int64, error)
	ListHistory(ctx context.Context, userID int64) ([]db.HistoryRecord, error)
	DeleteHistory(ctx context.Context, id int64) error
}

// OperationTracker lets shutdown wait for in-flight transforms.
// *shutdown.Manager satisfies it.
type OperationTracker interface {
	WrapOperation(ctx context.Context, name string, fn func(context.Context) error) error
}

// Recorder receives one record per finished transform. *metrics.Store
// satisfies it.
type Recorder interface {
	Record(rec metrics.TransformRecord)
}

// State is a step of a transform request.
type State string

const (
	StateReceived       State = "received"
	StateValidated      State = "validated"
	StateTransformed    State = "transformed"
	StatePersisted      State = "persisted"
	StatePersistSkipped State = "persist_skipped"
	StateResponded      State = "responded"
	StateErrored        State = "errored"
)

// Request is one transform call. UserID is nil for anonymous requests.
type Request struct {
	Style  string
	Image  []byte
	UserID *int64
}

// Result is the styled image as base64 PNG.
type Result struct {
	Image         string
	CorrelationID string
	// Persisted reports whether a history row was written or queued.
	Persisted bool
}

// Service orchestrates transform and history requests.
type Service struct {
	router  Dispatcher
	history HistoryStore
	ops     OperationTracker
	stats   Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithOperationTracker registers each transform with t.
func WithOperationTracker(t OperationTracker) Option {
	return func(s *Service) { s.ops = t }
}

// WithRecorder reports every finished transform to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.stats = r }
}

// NewService creates a Service. history may be nil, in which case nothing
// is persisted and the history operations fail.
func NewService(r Dispatcher, history HistoryStore, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{router: r, history: history, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Transform validates req, runs the style backend and returns the image.
// A history row is written only when req.UserID is set; failing to write it
// is logged and does not fail the request.
func (s *Service) Transform(ctx context.Context, req Request) (Result, error) {
	if s.ops == nil {
		return s.transform(ctx, req)
	}

	var res Result
	err := s.ops.WrapOperation(ctx, "transform", func(ctx context.Context) error {
		var err error
		res, err = s.transform(ctx, req)
		return err
	})
	if errors.Is(err, shutdown.ErrTrackerClosed) {
		return Result{}, backendError(ErrShuttingDown)
	}
	if err != nil && !isStylizeError(err) {
		err = backendError(err)
	}
	return res, err
}

func (s *Service) transform(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	id := uuid.NewString()
	log := s.logger.With(zap.String("correlation_id", id), zap.String("style", req.Style))

	state := StateReceived
	step := func(next State) {
		log.Debug("transform state", zap.String("from", string(state)), zap.String("to", string(next)))
		state = next
	}
	fail := func(err error) (Result, error) {
		step(StateErrored)
		log.Warn("transform failed", zap.String("kind", KindOf(err).String()), zap.Error(err))
		outcome := metrics.OutcomeBackendError
		if KindOf(err) == KindInput {
			outcome = metrics.OutcomeInputError
		}
		s.record(metrics.TransformRecord{
			CorrelationID: id,
			Style:         req.Style,
			Outcome:       outcome,
			Duration:      s.now().Sub(start),
			InputBytes:    len(req.Image),
		})
		return Result{}, err
	}

	if len(req.Image) == 0 {
		return fail(inputError(ErrMissingImage))
	}
	st, err := styles.Parse(req.Style)
	if err != nil {
		return fail(inputError(err))
	}
	step(StateValidated)

	out, err := s.router.Dispatch(ctx, string(st), req.Image)
	if err != nil {
		if router.IsInputError(err) {
			return fail(inputError(err))
		}
		return fail(backendError(err))
	}
	step(StateTransformed)

	res := Result{Image: imagecodec.EncodeBase64(out), CorrelationID: id}

	persistence := "skipped"
	if req.UserID != nil && s.history != nil {
		// Persist even if the client has gone away.
		_, err := s.history.InsertHistory(context.WithoutCancel(ctx), db.HistoryRecord{
			UserID:           *req.UserID,
			Style:            string(st),
			OriginalImage:    imagecodec.EncodeBase64(req.Image),
			TransformedImage: res.Image,
		})
		if err != nil {
			persistence = "failed"
			log.Error("failed to save history", zap.Int64("user_id", *req.UserID), zap.Error(err))
			step(StatePersistSkipped)
		} else {
			persistence = "persisted"
			res.Persisted = true
			step(StatePersisted)
		}
	} else {
		step(StatePersistSkipped)
	}

	step(StateResponded)
	elapsed := s.now().Sub(start)
	log.Info("transform complete", logging.TransformFields(logging.TransformMetrics{
		CorrelationID: id,
		Style:         string(st),
		Family:        st.Family().String(),
		InputBytes:    len(req.Image),
		OutputBytes:   len(out),
		Duration:      elapsed,
		Persistence:   persistence,
	}))
	s.record(metrics.TransformRecord{
		CorrelationID: id,
		Style:         string(st),
		Family:        st.Family().String(),
		Outcome:       metrics.OutcomeSuccess,
		Duration:      elapsed,
		InputBytes:    len(req.Image),
		OutputBytes:   len(out),
		Persisted:     res.Persisted,
	})
	return res, nil
}

func (s *Service) record(rec metrics.TransformRecord) {
	if s.stats == nil {
		return
	}
	rec.FinishedAt = s.now()
	s.stats.Record(rec)
}

// History returns a user's transformations, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]db.HistoryRecord, error) {
	if s.history == nil {
		return nil, backendError(errors.New("history store not configured"))
	}
	recs, err := s.history.ListHistory(ctx, userID)
	if err != nil {
		return nil, backendError(fmt.Errorf("list history: %w", err))
	}
	return recs, nil
}

// DeleteHistory removes one history item. Unknown ids succeed.
func (s *Service) DeleteHistory(ctx context.Context, id int64) error {
	if s.history == nil {
		return backendError(errors.New("history store not configured"))
	}
	if err := s.history.DeleteHistory(ctx, id); err != nil {
		return backendError(fmt.Errorf("delete history: %w", err))
	}
	return nil
}

func isStylizeError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
