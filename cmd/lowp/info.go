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
	"runtime"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/ajroetker/go-lowp/hwy"
	"github.com/ajroetker/go-lowp/hwy/contrib/blockxform"
	"github.com/ajroetker/go-lowp/hwy/contrib/outputstage"
)

type cpuInfo struct {
	GOOS        string          `json:"goos"`
	GOARCH      string          `json:"goarch"`
	NumCPU      int             `json:"num_cpu"`
	Level       string          `json:"dispatch_level"`
	Width       int             `json:"dispatch_width"`
	NoSIMD      bool            `json:"no_simd"`
	Evaluator   string          `json:"evaluator"`
	BlockRules  bool            `json:"block_rules"`
	BlockSize   int             `json:"block_size"`
	Features    map[string]bool `json:"features"`
	featureKeys []string
}

func collectInfo() cpuInfo {
	info := cpuInfo{
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		Level:      hwy.CurrentLevel().String(),
		Width:      hwy.CurrentWidth(),
		NoSIMD:     hwy.NoSimdEnv(),
		Evaluator:  outputstage.DefaultEvaluator().Name(),
		BlockRules: blockxform.UsesBlockRules(),
		BlockSize:  blockxform.BlockSize,
		Features:   map[string]bool{},
	}
	add := func(name string, v bool) {
		info.Features[name] = v
		info.featureKeys = append(info.featureKeys, name)
	}
	switch runtime.GOARCH {
	case "amd64":
		add("sse2", cpu.X86.HasSSE2)
		add("sse41", cpu.X86.HasSSE41)
		add("avx2", cpu.X86.HasAVX2)
		add("avx512f", cpu.X86.HasAVX512F)
		add("avx512bw", cpu.X86.HasAVX512BW)
		add("avx512vl", cpu.X86.HasAVX512VL)
		add("avx512vnni", cpu.X86.HasAVX512VNNI)
	case "arm64":
		add("asimd", cpu.ARM64.HasASIMD)
		add("asimddp", cpu.ARM64.HasASIMDDP)
		add("sve", cpu.ARM64.HasSVE)
		add("sve2", cpu.ARM64.HasSVE2)
	}
	return info
}

func (info cpuInfo) print(w io.Writer) {
	fmt.Fprintf(w, "GOOS/GOARCH:    %s/%s (%d CPUs)\n", info.GOOS, info.GOARCH, info.NumCPU)
	fmt.Fprintf(w, "Dispatch level: %s (%d bytes)\n", info.Level, info.Width)
	if info.NoSIMD {
		fmt.Fprintln(w, "HWY_NO_SIMD:    set")
	}
	fmt.Fprintf(w, "Evaluator:      %s\n", info.Evaluator)
	fmt.Fprintf(w, "Block rules:    %v (block size %d)\n", info.BlockRules, info.BlockSize)
	if len(info.featureKeys) == 0 {
		return
	}
	fmt.Fprintln(w, "CPU features:")
	for _, k := range info.featureKeys {
		fmt.Fprintf(w, "  %-11s %v\n", k+":", info.Features[k])
	}
}

func newInfoCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print the detected dispatch level and the strategies it selects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := collectInfo()
			if asJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			info.print(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
