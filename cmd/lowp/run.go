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
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-lowp/hwy/contrib/calib"
	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
	"github.com/ajroetker/go-lowp/hwy/contrib/workerpool"
	"github.com/ajroetker/go-lowp/internal/logger"
)

// accInput is the JSON form of an int32 accumulator matrix and its optional
// zero-point corrections.
type accInput struct {
	Rows      int     `json:"rows"`
	Cols      int     `json:"cols"`
	Layout    string  `json:"layout,omitempty"`
	Data      []int32 `json:"data"`
	RowSums   []int32 `json:"row_sums,omitempty"`
	ColSums   []int32 `json:"col_sums,omitempty"`
	Depth     int     `json:"depth,omitempty"`
	LHSOffset int32   `json:"lhs_offset,omitempty"`
	RHSOffset int32   `json:"rhs_offset,omitempty"`
}

// runOutput is the JSON result of lowp run. Data holds numbers, never a
// base64 string, for uint8 outputs too.
type runOutput struct {
	Rows   int    `json:"rows"`
	Cols   int    `json:"cols"`
	Layout string `json:"layout"`
	Output string `json:"output"`
	Data   any    `json:"data"`
}

func parseLayout(s string) (outputstage.Layout, error) {
	switch s {
	case "", "row_major":
		return outputstage.RowMajor, nil
	case "col_major":
		return outputstage.ColMajor, nil
	}
	return 0, fmt.Errorf("unknown layout %q (want row_major or col_major)", s)
}

func (in *accInput) source() (outputstage.AccumulatorSource, outputstage.Layout, error) {
	layout, err := parseLayout(in.Layout)
	if err != nil {
		return nil, 0, err
	}
	raw, err := outputstage.NewMatrixMap(in.Data, in.Rows, in.Cols, layout)
	if err != nil {
		return nil, 0, err
	}
	if in.LHSOffset == 0 && in.RHSOffset == 0 {
		return raw, layout, nil
	}
	return &outputstage.Accumulators{
		Raw:       raw,
		RowSums:   in.RowSums,
		ColSums:   in.ColSums,
		Depth:     in.Depth,
		LHSOffset: in.LHSOffset,
		RHSOffset: in.RHSOffset,
	}, layout, nil
}

func runMatrix[Out outputstage.Scalar](doc *calib.Document, pool *workerpool.Pool, src outputstage.AccumulatorSource, layout outputstage.Layout) ([]Out, error) {
	p, err := calib.Build[Out](doc)
	if err != nil {
		return nil, err
	}
	data := make([]Out, src.Rows()*src.Cols())
	dst, err := outputstage.NewMatrixMap(data, src.Rows(), src.Cols(), layout)
	if err != nil {
		return nil, err
	}
	if err := outputstage.RunParallel(pool, p, src, dst); err != nil {
		return nil, err
	}
	return data, nil
}

func widen(data []uint8) []int {
	out := make([]int, len(data))
	for i, v := range data {
		out[i] = int(v)
	}
	return out
}

func newRunCmd() *cobra.Command {
	var input string
	var workers int
	cmd := &cobra.Command{
		Use:   "run CALIB",
		Short: "Run a JSON accumulator matrix through a calibrated pipeline",
		Long: `Reads {"rows", "cols", "data", ...} from --input (or stdin when it is "-"),
runs every cell through the pipeline in CALIB and prints the result as JSON in
the same layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())
			doc, err := calib.Load(args[0])
			if err != nil {
				return err
			}
			out, err := doc.OutputRepr()
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var in accInput
			if err := json.NewDecoder(r).Decode(&in); err != nil {
				return fmt.Errorf("decoding accumulators: %w", err)
			}
			src, layout, err := in.source()
			if err != nil {
				return err
			}

			var pool *workerpool.Pool
			if workers != 1 {
				pool = workerpool.New(workers)
				defer pool.Close()
			}

			start := time.Now()
			res := runOutput{Rows: in.Rows, Cols: in.Cols, Layout: layout.String(), Output: out.String()}
			switch out {
			case outputstage.Int32:
				res.Data, err = runMatrix[int32](doc, pool, src, layout)
			case outputstage.Float32:
				res.Data, err = runMatrix[float32](doc, pool, src, layout)
			case outputstage.Uint8:
				var data []uint8
				data, err = runMatrix[uint8](doc, pool, src, layout)
				res.Data = widen(data)
			}
			if err != nil {
				return err
			}
			log.Info("pipeline run", "calib", args[0], "rows", in.Rows, "cols", in.Cols,
				"workers", pool.NumWorkers(), "elapsed", time.Since(start))

			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "accumulator JSON file, - for stdin")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "worker goroutines, 0 for GOMAXPROCS")
	return cmd
}
