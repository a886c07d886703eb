package stylenet

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Errors
var (
	ErrNoProviders     = errors.New("stylenet: no execution providers to try")
	ErrSessionFailed   = errors.New("stylenet: could not create session on any provider")
	ErrUnsupportedIO   = errors.New("stylenet: unsupported model inputs or outputs")
	ErrInferenceFailed = errors.New("stylenet: inference failed")
	ErrSessionClosed   = errors.New("stylenet: session is closed")
)

// Provider names an ONNX Runtime execution provider.
type Provider string

const (
	ProviderCUDA Provider = "cuda"
	ProviderCPU  Provider = "cpu"
)

// DefaultProviders is the accelerated-first order sessions are opened with.
var DefaultProviders = []Provider{ProviderCUDA, ProviderCPU}

// Session is a loaded style network.
type Session interface {
	// InputName and OutputName are the tensor names declared by the model.
	InputName() string
	OutputName() string
	// Provider is the execution provider the session was created on.
	Provider() Provider
	// InputSize is the spatial size the network expects.
	InputSize() (width, height int)
	// Run executes one forward pass on an NHWC (1, height, width, 3) tensor
	// and returns the output tensor in the same layout.
	Run(input []float32, width, height int) ([]float32, error)
	Close() error
}

// OpenFunc constructs a session on one provider.
type OpenFunc func(Provider) (Session, error)

// OpenWithFallback tries providers in order and returns the first session that
// opens. A failure on a non-final provider is logged at warn level.
func OpenWithFallback(providers []Provider, open OpenFunc, logger *zap.Logger) (Session, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var errs []error
	for i, p := range providers {
		s, err := open(p)
		if err == nil {
			if i > 0 {
				logger.Info("style network running on fallback provider",
					zap.String("provider", string(p)))
			}
			return s, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p, err))
		if i < len(providers)-1 {
			logger.Warn("execution provider unavailable, falling back",
				zap.String("provider", string(p)),
				zap.String("next", string(providers[i+1])),
				zap.Error(err))
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrSessionFailed, errors.Join(errs...))
}

// Serialize wraps s so Run calls execute one at a time.
func Serialize(s Session) Session {
	if _, ok := s.(*serialSession); ok {
		return s
	}
	return &serialSession{Session: s}
}

type serialSession struct {
	Session
	mu sync.Mutex
}

func (s *serialSession) Run(input []float32, width, height int) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Session.Run(input, width, height)
}
