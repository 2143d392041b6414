package nn

import (
	"math"

	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// xavierUniform initializes a weight buffer with Xavier/Glorot uniform
// values: uniform in [-limit, limit] with limit = sqrt(6 / (fanIn + fanOut)).
func xavierUniform(shape tensor.Shape, fanIn, fanOut int, device tensor.Device) *tensor.RawTensor {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	w := tensor.Rand(shape, tensor.Float32, device)
	data := w.AsFloat32()
	for i, v := range data {
		data[i] = float32(float64(v)*2*limit - limit)
	}
	return w
}
