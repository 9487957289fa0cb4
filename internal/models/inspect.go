package models

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facerec/internal/inference"
)

// TensorInfo describes one model input or output
type TensorInfo struct {
	Name     string
	Shape    []int64
	DataType string
}

func (t TensorInfo) String() string {
	return fmt.Sprintf("%s: shape=%v, type=%s", t.Name, t.Shape, t.DataType)
}

// ModelInfo lists the tensors a model consumes and produces
type ModelInfo struct {
	Inputs  []TensorInfo
	Outputs []TensorInfo
}

// Inspect reads tensor metadata from ONNX model bytes. ONNX Runtime must be
// initialized.
func Inspect(data []byte) (ModelInfo, error) {
	if !inference.Initialized() {
		return ModelInfo{}, inference.ErrNotInitialized
	}

	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("failed to get model info: %w", err)
	}

	return ModelInfo{
		Inputs:  tensorInfos(inputs),
		Outputs: tensorInfos(outputs),
	}, nil
}

func tensorInfos(info []ort.InputOutputInfo) []TensorInfo {
	out := make([]TensorInfo, len(info))
	for i, in := range info {
		out[i] = TensorInfo{
			Name:     in.Name,
			Shape:    append([]int64(nil), in.Dimensions...),
			DataType: fmt.Sprint(in.DataType),
		}
	}
	return out
}
