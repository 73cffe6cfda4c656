// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/go-lowp/hwy/contrib/blockxform"
	"github.com/ajroetker/go-lowp/hwy/contrib/calib"
	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
	"github.com/ajroetker/go-lowp/hwy/contrib/workerpool"
	"github.com/ajroetker/go-lowp/internal/logger"
)

// kernelChain runs a document's stages as flat block kernels over
// preallocated buffers, one per representation change.
type kernelChain struct {
	kernels []blockxform.Kernel
	buffers []any // buffers[i] feeds kernels[i]; the last is the output
}

func newKernelChain(stages []outputstage.Stage, input []int32) (*kernelChain, error) {
	kc := &kernelChain{buffers: []any{input}}
	for i, s := range stages {
		k, err := blockxform.ForStage(s)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		kc.kernels = append(kc.kernels, k)
		kc.buffers = append(kc.buffers, makeBuffer(k.Out(), len(input)))
	}
	return kc, nil
}

func (kc *kernelChain) run(count int) error {
	for i, k := range kc.kernels {
		if err := k.Run(kc.buffers[i], kc.buffers[i+1], count); err != nil {
			return err
		}
	}
	return nil
}

// measure calls fn until at least d has passed and returns elements per
// second.
func measure(count int, d time.Duration, fn func() error) (float64, error) {
	var calls int
	start := time.Now()
	for calls == 0 || time.Since(start) < d {
		if err := fn(); err != nil {
			return 0, err
		}
		calls++
	}
	return float64(calls) * float64(count) / time.Since(start).Seconds(), nil
}

// benchShape picks a matrix of about count cells whose extents match every
// per-channel vector in stages.
func benchShape(stages []outputstage.Stage, count int) (rows, cols int) {
	for _, s := range stages {
		n, axis := s.Channels()
		switch {
		case n == 0:
		case axis == outputstage.ByRow:
			rows = n
		default:
			cols = n
		}
	}
	switch {
	case rows == 0 && cols == 0:
		cols = 256
		rows = max(1, count/cols)
	case rows == 0:
		rows = max(1, count/cols)
	case cols == 0:
		cols = max(1, count/rows)
	}
	return rows, cols
}

func newBenchCmd() *cobra.Command {
	var count, workers int
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "bench CALIB",
		Short: "Measure pipeline and block kernel throughput for a calibration document",
		Long: `Runs random accumulators through the stages of CALIB twice: once as a
pipeline over a matrix of about --count cells, once as a chain of flat block
kernels over the same cells. Per-channel vectors in the flat chain repeat
every len(vector) elements.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			doc, err := calib.Load(args[0])
			if err != nil {
				return err
			}
			stages, err := doc.Stages()
			if err != nil {
				return err
			}
			rows, cols := benchShape(stages, count)
			n := rows * cols

			rng := rand.New(rand.NewSource(1))
			acc := make([]int32, n)
			for i := range acc {
				acc[i] = int32(rng.Uint32()) >> 12
			}
			src, err := outputstage.NewMatrixMap(acc, rows, cols, outputstage.RowMajor)
			if err != nil {
				return err
			}

			var pool *workerpool.Pool
			if workers != 1 {
				pool = workerpool.New(workers)
				defer pool.Close()
			}
			runPipeline, err := matrixRunner(doc, pool, src)
			if err != nil {
				return err
			}
			kc, err := newKernelChain(stages, acc)
			if err != nil {
				return err
			}
			log.Debug("benchmarking", "calib", args[0], "rows", rows, "cols", cols,
				"workers", pool.NumWorkers(), "duration", duration)

			pipeRate, err := measure(n, duration, runPipeline)
			if err != nil {
				return err
			}
			kernRate, err := measure(n, duration, func() error { return kc.run(n) })
			if err != nil {
				return err
			}

			pr := message.NewPrinter(language.English)
			w := cmd.OutOrStdout()
			pr.Fprintf(w, "%d x %d accumulators, %d stages\n", rows, cols, len(stages))
			pr.Fprintf(w, "%-9s %15.0f elements/s\n", "pipeline", pipeRate)
			pr.Fprintf(w, "%-9s %15.0f elements/s\n", "kernels", kernRate)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1<<16, "approximate accumulators per call")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "worker goroutines for the pipeline, 0 for GOMAXPROCS")
	cmd.Flags().DurationVarP(&duration, "duration", "d", time.Second, "minimum time per measurement")
	return cmd
}

// matrixRunner returns a closure running src through the pipeline doc
// declares into a reused destination.
func matrixRunner(doc *calib.Document, pool *workerpool.Pool, src *outputstage.MatrixMap[int32]) (func() error, error) {
	out, err := doc.OutputRepr()
	if err != nil {
		return nil, err
	}
	switch out {
	case outputstage.Uint8:
		return newMatrixRunner[uint8](doc, pool, src)
	case outputstage.Float32:
		return newMatrixRunner[float32](doc, pool, src)
	}
	return newMatrixRunner[int32](doc, pool, src)
}

func newMatrixRunner[Out outputstage.Scalar](doc *calib.Document, pool *workerpool.Pool, src *outputstage.MatrixMap[int32]) (func() error, error) {
	p, err := calib.Build[Out](doc)
	if err != nil {
		return nil, err
	}
	dst, err := outputstage.NewMatrixMap(make([]Out, src.Rows()*src.Cols()), src.Rows(), src.Cols(), outputstage.RowMajor)
	if err != nil {
		return nil, err
	}
	if err := p.CheckShape(src.Rows(), src.Cols()); err != nil {
		return nil, err
	}
	return func() error { return outputstage.RunParallel(pool, p, src, dst) }, nil
}
