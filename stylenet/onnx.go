package stylenet

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// DefaultInputSize is used when the model declares dynamic spatial dims.
const DefaultInputSize = 512

// InitEnvironment points ONNX Runtime at its shared library (if dylib is set)
// and initializes the process-wide environment. Safe to call more than once.
func InitEnvironment(dylib string) error {
	if ort.IsInitialized() {
		return nil
	}
	if dylib != "" {
		ort.SetSharedLibraryPath(dylib)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("init onnx runtime: %w", err)
	}
	return nil
}

// DestroyEnvironment tears down the ONNX Runtime environment.
func DestroyEnvironment() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// Options configures LoadSession.
type Options struct {
	// Providers to try in order; nil means DefaultProviders.
	Providers []Provider
	// Serialize wraps the session so Run calls never overlap.
	Serialize bool
	Logger    *zap.Logger
}

// LoadSession opens the ONNX model at path, trying each provider in order.
// The environment must already be initialized.
func LoadSession(path string, opts Options) (Session, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stylenet: model %s: %w", path, err)
	}

	io, err := inspect(path)
	if err != nil {
		return nil, err
	}

	providers := opts.Providers
	if providers == nil {
		providers = DefaultProviders
	}

	s, err := OpenWithFallback(providers, func(p Provider) (Session, error) {
		return openORT(path, io, p)
	}, opts.Logger)
	if err != nil {
		return nil, err
	}
	if opts.Serialize {
		s = Serialize(s)
	}
	return s, nil
}

// modelIO is what the model file declares about its first input and output.
type modelIO struct {
	input, output string
	width, height int
	outputDims    ort.Shape
}

func inspect(path string) (modelIO, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return modelIO{}, fmt.Errorf("stylenet: read model io: %w", err)
	}
	return resolveIO(inputs, outputs)
}

// resolveIO checks the first input and output are NHWC RGB tensors of the
// same spatial size. Dynamic dims (<= 0) match anything.
func resolveIO(inputs, outputs []ort.InputOutputInfo) (modelIO, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return modelIO{}, fmt.Errorf("%w: model declares %d inputs and %d outputs", ErrUnsupportedIO, len(inputs), len(outputs))
	}

	in, out := inputs[0], outputs[0]
	m := modelIO{
		input:      in.Name,
		output:     out.Name,
		width:      DefaultInputSize,
		height:     DefaultInputSize,
		outputDims: out.Dimensions.Clone(),
	}

	dims := in.Dimensions
	if len(dims) != 4 {
		return modelIO{}, fmt.Errorf("%w: input %s has rank %d, want NHWC rank 4", ErrUnsupportedIO, in.Name, len(dims))
	}
	if dims[3] > 0 && dims[3] != 3 {
		return modelIO{}, fmt.Errorf("%w: input %s has %d channels in the last dim, want NHWC RGB", ErrUnsupportedIO, in.Name, dims[3])
	}
	if dims[1] > 0 {
		m.height = int(dims[1])
	}
	if dims[2] > 0 {
		m.width = int(dims[2])
	}

	od := m.outputDims
	if len(od) != 4 {
		return modelIO{}, fmt.Errorf("%w: output %s has rank %d, want NHWC rank 4", ErrUnsupportedIO, out.Name, len(od))
	}
	if od[3] > 0 && od[3] != 3 {
		return modelIO{}, fmt.Errorf("%w: output %s has %d channels in the last dim, want NHWC RGB", ErrUnsupportedIO, out.Name, od[3])
	}
	if (od[1] > 0 && int(od[1]) != m.height) || (od[2] > 0 && int(od[2]) != m.width) {
		return modelIO{}, fmt.Errorf("%w: output %s is %dx%d, input %s is %dx%d",
			ErrUnsupportedIO, out.Name, od[2], od[1], in.Name, m.width, m.height)
	}
	return m, nil
}

// outputShape is the output tensor shape for a width x height run, taking
// static dims from the model and filling dynamic ones from the input.
func (m modelIO) outputShape(width, height int) ort.Shape {
	shape := ort.NewShape(1, int64(height), int64(width), 3)
	for i, d := range m.outputDims {
		if d > 0 {
			shape[i] = d
		}
	}
	return shape
}

type ortSession struct {
	io       modelIO
	provider Provider
	session  *ort.DynamicAdvancedSession

	mu     sync.RWMutex
	closed bool
}

func openORT(path string, io modelIO, p Provider) (Session, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, err
	}
	defer opts.Destroy()

	switch p {
	case ProviderCUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return nil, err
		}
		defer cuda.Destroy()
		if err := opts.AppendExecutionProviderCUDA(cuda); err != nil {
			return nil, err
		}
	case ProviderCPU:
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}

	session, err := ort.NewDynamicAdvancedSession(path, []string{io.input}, []string{io.output}, opts)
	if err != nil {
		return nil, err
	}
	return &ortSession{io: io, provider: p, session: session}, nil
}

func (s *ortSession) InputName() string  { return s.io.input }
func (s *ortSession) OutputName() string { return s.io.output }
func (s *ortSession) Provider() Provider { return s.provider }

func (s *ortSession) InputSize() (int, int) { return s.io.width, s.io.height }

func (s *ortSession) Run(input []float32, width, height int) ([]float32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrSessionClosed
	}

	shape := ort.NewShape(1, int64(height), int64(width), 3)
	in, err := ort.NewTensor(shape, input)
	if err != nil {
		return nil, err
	}
	defer in.Destroy()

	out, err := ort.NewEmptyTensor[float32](s.io.outputShape(width, height))
	if err != nil {
		return nil, err
	}
	defer out.Destroy()

	if err := s.session.Run([]ort.Value{in}, []ort.Value{out}); err != nil {
		return nil, err
	}

	data := out.GetData()
	res := make([]float32, len(data))
	copy(res, data)
	return res, nil
}

func (s *ortSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.session.Destroy()
}
