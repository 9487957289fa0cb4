package inference

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facerec/internal/logging"
)

var (
	initialized bool
	initMu      sync.Mutex
)

// ErrNotInitialized is returned when a session is requested before Initialize
var ErrNotInitialized = errors.New("ONNX Runtime not initialized, call Initialize() first")

// Initialize sets up the ONNX Runtime environment (call once at startup).
// An empty libraryPath keeps the library's default lookup.
func Initialize(libraryPath string) error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized {
		return nil
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
	}

	initialized = true
	return nil
}

// Initialized reports whether Initialize has completed
func Initialized() bool {
	initMu.Lock()
	defer initMu.Unlock()
	return initialized
}

// Shutdown cleans up ONNX Runtime environment
func Shutdown() error {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return nil
	}

	if err := ort.DestroyEnvironment(); err != nil {
		return err
	}

	initialized = false
	return nil
}

// Options tunes a session
type Options struct {
	// Threads caps intra-op parallelism; 0 keeps the runtime default.
	Threads int
	// CoreML requests the CoreML execution provider. Sessions fall back to
	// the CPU when it is unavailable.
	CoreML bool
	// Log receives provider selection messages; nil discards them.
	Log logrus.FieldLogger
}

// Session wraps an ONNX Runtime inference session built from model bytes.
// Run may be called from several goroutines.
type Session struct {
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	name        string
	inputNames  []string
	outputNames []string
}

// NewSession creates an inference session from an in-memory ONNX model.
// When inputNames or outputNames is nil the names are read from the model
// in declaration order.
func NewSession(name string, model []byte, inputNames, outputNames []string, opts Options) (*Session, error) {
	if !Initialized() {
		return nil, ErrNotInitialized
	}
	if len(model) == 0 {
		return nil, fmt.Errorf("model %s is empty", name)
	}

	if inputNames == nil || outputNames == nil {
		inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(model)
		if err != nil {
			return nil, fmt.Errorf("failed to read io info for %s: %w", name, err)
		}
		if inputNames == nil {
			inputNames = ioNames(inputs)
		}
		if outputNames == nil {
			outputNames = ioNames(outputs)
		}
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer options.Destroy()

	if opts.Threads > 0 {
		if err := options.SetIntraOpNumThreads(opts.Threads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	if opts.CoreML {
		enableCoreML(logging.OrDiscard(opts.Log), name, options.AppendExecutionProviderCoreML)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(model, inputNames, outputNames, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create session for %s: %w", name, err)
	}

	return &Session{
		session:     session,
		name:        name,
		inputNames:  inputNames,
		outputNames: outputNames,
	}, nil
}

// OutputCount returns how many outputs Run fills
func (s *Session) OutputCount() int {
	return len(s.outputNames)
}

// Run executes inference with the given inputs. Nil entries in outputs are
// allocated by the runtime and must be destroyed by the caller.
func (s *Session) Run(inputs []ort.Value, outputs []ort.Value) error {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()

	if session == nil {
		return fmt.Errorf("session %s is closed", s.name)
	}
	return session.Run(inputs, outputs)
}

// RunFloat feeds one float32 tensor of the given shape and returns a copy of
// every output's data.
func (s *Session) RunFloat(shape []int64, data []float32) ([][]float32, error) {
	input, err := CreateTensor(shape, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := make([]ort.Value, s.OutputCount())
	if err := s.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("%s inference failed: %w", s.name, err)
	}
	defer func() {
		for _, o := range outputs {
			if o != nil {
				o.Destroy()
			}
		}
	}()

	result := make([][]float32, len(outputs))
	for i, o := range outputs {
		t, ok := o.(*ort.Tensor[float32])
		if !ok {
			return nil, fmt.Errorf("%s output %d is not a float32 tensor", s.name, i)
		}
		result[i] = append([]float32(nil), t.GetData()...)
	}
	return result, nil
}

// Close releases session resources. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// CreateTensor creates a tensor with the given shape and data
func CreateTensor[T ort.TensorData](shape []int64, data []T) (*ort.Tensor[T], error) {
	return ort.NewTensor(ort.NewShape(shape...), data)
}

// enableCoreML appends the CoreML provider and reports whether it took.
// On failure the session keeps the CPU provider.
func enableCoreML(log logrus.FieldLogger, name string, appendProvider func(flags uint32) error) bool {
	// Flag 0 = default settings, use Neural Engine + GPU
	if err := appendProvider(0); err != nil {
		log.WithError(err).WithField("model", name).Warn("CoreML unavailable, running on CPU")
		return false
	}
	log.WithField("model", name).Debug("Running on CoreML")
	return true
}

func ioNames(info []ort.InputOutputInfo) []string {
	names := make([]string, len(info))
	for i, in := range info {
		names[i] = in.Name
	}
	return names
}
