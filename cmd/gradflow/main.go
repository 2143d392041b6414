// Package main provides the GradFlow demo CLI: trains a small linear
// regression with reverse-mode autodiff and prints the recovered weights.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"github.com/gradflow-ml/gradflow/autograd"
	"github.com/gradflow-ml/gradflow/backend"
	"github.com/gradflow-ml/gradflow/nn"
	"github.com/gradflow-ml/gradflow/optim"
	"github.com/gradflow-ml/gradflow/tensor"
)

func main() {
	device := flag.String("device", "cpu", "compute device (cpu or webgpu)")
	steps := flag.Int("steps", 200, "training steps")
	lr := flag.Float64("lr", 0.05, "learning rate")
	flag.Parse()

	b, err := backend.Open(*device)
	if err != nil {
		log.Fatalf("open backend: %v", err)
	}

	ctx := autograd.NewContext()

	// Synthetic data: y = 3x + 2 plus a little noise.
	const samples = 64
	xs := make([]float32, samples)
	ys := make([]float32, samples)
	for i := range xs {
		x := rand.Float32()*4 - 2 //nolint:gosec // demo data, not crypto
		xs[i] = x
		ys[i] = 3*x + 2 + float32(rand.NormFloat64()*0.01) //nolint:gosec // demo data
	}

	x := ctx.MustFromFloat32(xs, tensor.Shape{samples, 1}, b)
	y := ctx.MustFromFloat32(ys, tensor.Shape{samples, 1}, b)

	model := nn.NewLinear(ctx, b, 1, 1)
	criterion := &nn.MSELoss{}
	opt := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: *lr})

	for step := 1; step <= *steps; step++ {
		opt.ZeroGrad()
		loss := criterion.Forward(model.Forward(x), y)
		if err := loss.Backward(); err != nil {
			log.Fatalf("backward: %v", err)
		}
		opt.Step()

		if step%50 == 0 || step == 1 {
			fmt.Printf("step %4d  loss %.6f\n", step, loss.Item())
		}
	}

	fmt.Printf("learned: y = %.3fx + %.3f\n",
		model.Weight().Raw().AsFloat32()[0],
		model.Bias().Raw().AsFloat32()[0])
}
