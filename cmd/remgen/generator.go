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
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"
)

// Generator renders the unrolled block and remainder routines.
type Generator struct {
	BlockSize int
	Package   string
	Prefix    string
}

// templateData is what fileTemplate renders.
type templateData struct {
	Package    string
	BlockSize  int
	Dispatch   string
	Lanes      []int
	Remainders []remainder
}

type remainder struct {
	Name  string
	N     int
	Lanes []int
}

var fileTemplate = template.Must(template.New("remgen").Funcs(template.FuncMap{
	"idx": func(i int) string {
		if i == 0 {
			return "base"
		}
		return fmt.Sprintf("base+%d", i)
	},
	"last": func(n int) int { return n - 1 },
}).Parse(`// Copyright 2025 go-highway Authors
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

// Code generated by remgen -block {{.BlockSize}}. DO NOT EDIT.

package {{.Package}}

// applyBlock applies rule to one full block of {{.BlockSize}} elements.
func applyBlock[In, Out any, R Rule[In, Out]](rule R, src *[{{.BlockSize}}]In, dst *[{{.BlockSize}}]Out, base int) {
{{- range .Lanes}}
	dst[{{.}}] = rule.Apply(src[{{.}}], {{idx .}})
{{- end}}
}

// {{.Dispatch}} runs the routine dedicated to n leftover elements,
// 0 < n < {{.BlockSize}}.
func {{.Dispatch}}[In, Out any, R Rule[In, Out]](rule R, src []In, dst []Out, base, n int) {
	switch n {
{{- range .Remainders}}
	case {{.N}}:
		{{.Name}}(rule, src, dst, base)
{{- end}}
	}
}
{{range .Remainders}}
func {{.Name}}[In, Out any, R Rule[In, Out]](rule R, src []In, dst []Out, base int) {
	_, _ = src[{{last .N}}], dst[{{last .N}}]
{{- range .Lanes}}
	dst[{{.}}] = rule.Apply(src[{{.}}], {{idx .}})
{{- end}}
}
{{end}}`))

// Generate renders the file. filename is only used by the import fixer.
func (g *Generator) Generate(filename string) ([]byte, error) {
	if g.BlockSize < 2 || g.BlockSize&(g.BlockSize-1) != 0 {
		return nil, fmt.Errorf("block size %d is not a power of two >= 2", g.BlockSize)
	}
	if g.Package == "" || g.Prefix == "" {
		return nil, fmt.Errorf("package and prefix must be non-empty")
	}

	prefix := cases.Lower(language.Und).String(g.Prefix)
	data := templateData{
		Package:   g.Package,
		BlockSize: g.BlockSize,
		Dispatch:  "apply" + cases.Title(language.English).String(prefix),
		Lanes:     lanes(g.BlockSize),
	}
	for n := 1; n < g.BlockSize; n++ {
		data.Remainders = append(data.Remainders, remainder{
			Name:  fmt.Sprintf("%s%d", prefix, n),
			N:     n,
			Lanes: lanes(n),
		})
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out, err := imports.Process(filename, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8, FormatOnly: true})
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w\n%s", err, numbered(buf.String()))
	}
	return out, nil
}

func lanes(n int) []int {
	l := make([]int, n)
	for i := range l {
		l[i] = i
	}
	return l
}

// numbered prefixes each line with its number, for error reports.
func numbered(src string) string {
	var b strings.Builder
	for i, line := range strings.Split(src, "\n") {
		fmt.Fprintf(&b, "%4d\t%s\n", i+1, line)
	}
	return b.String()
}
