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
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-lowp/hwy/contrib/calib"
	"github.com/ajroetker/go-lowp/internal/logger"
)

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe CALIB",
		Short: "Validate a calibration document and list its stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.FromContext(cmd.Context())
			doc, err := calib.Load(args[0])
			if err != nil {
				return err
			}
			p, err := buildAny(doc)
			if err != nil {
				return err
			}
			log.Debug("pipeline built", "path", args[0], "stages", p.Len(), "evaluator", p.Evaluator().Name())

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s\n\n", p)
			reprs := p.Reprs()
			table := tablewriter.NewWriter(w)
			table.SetHeader([]string{"#", "KIND", "IN", "OUT", "PARAMETERS"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			for i, s := range p.Stages() {
				table.Append([]string{
					strconv.Itoa(i),
					s.Kind().String(),
					reprs[i].String(),
					reprs[i+1].String(),
					parameters(s.String()),
				})
			}
			table.Render()
			return nil
		},
	}
}

// parameters strips the kind prefix and parentheses from a stage's String.
func parameters(s string) string {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return ""
	}
	return s[open+1 : len(s)-1]
}
