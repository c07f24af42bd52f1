// Copyright 2025 Zintix Labs
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

// Package stats 把一次 rescale 的輸入與輸出整理成可讀的報表（console / JSON / YAML）。
package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/profilescale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var lang language.Tag = language.English

// ProfileStat 一條 profile 的摘要
type ProfileStat struct {
	N    int     `json:"n" yaml:"n"`
	Sum  float64 `json:"sum" yaml:"sum"`
	Max  float64 `json:"max" yaml:"max"`
	Min  float64 `json:"min" yaml:"min"`
	Mean float64 `json:"mean" yaml:"mean"`
	Std  float64 `json:"std" yaml:"std"`
}

// Describe 計算 profile 摘要（母體標準差）
func Describe(values []float64) ProfileStat {
	if len(values) == 0 {
		return ProfileStat{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return ProfileStat{
		N:    len(values),
		Sum:  floats.Sum(values),
		Max:  floats.Max(values),
		Min:  floats.Min(values),
		Mean: mean,
		Std:  std,
	}
}

// Report 單次 rescale 報表
type Report struct {
	Name          string               `json:"name" yaml:"name"`
	Variant       string               `json:"variant" yaml:"variant"`
	Tol           float64              `json:"tol" yaml:"tol"`
	Alpha         float64              `json:"alpha" yaml:"alpha"`
	Beta          float64              `json:"beta" yaml:"beta"`
	Targets       profilescale.Targets `json:"targets" yaml:"targets"`
	Range         profilescale.Range   `json:"range" yaml:"range"`
	Input         ProfileStat          `json:"input" yaml:"input"`
	Output        ProfileStat          `json:"output" yaml:"output"`
	RankPreserved bool                 `json:"rank_preserved" yaml:"rank_preserved"`
	Warnings      []string             `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Values        []float64            `json:"values,omitempty" yaml:"values,omitempty"`
	UsedMs        int64                `json:"used_ms,omitempty" yaml:"used_ms,omitempty"`
}

// NewReport 由輸入 profile 與結果建立報表。withValues 決定是否附上完整輸出 profile。
func NewReport(name string, input []float64, res *profilescale.Result, withValues bool) *Report {
	r := &Report{
		Name:          name,
		Variant:       res.Variant.String(),
		Tol:           res.Tol,
		Alpha:         res.Alpha,
		Beta:          res.Beta,
		Targets:       res.Targets,
		Range:         res.Range,
		Input:         Describe(input),
		Output:        Describe(res.Values),
		RankPreserved: RankPreserved(input, res.Values),
	}
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, w.Error())
	}
	if withValues {
		r.Values = append([]float64(nil), res.Values...)
	}
	return r
}

// SetUsed 紀錄用時
func (r *Report) SetUsed(d time.Duration) {
	r.UsedMs = d.Milliseconds()
}

// StdOut 以表格輸出到 w
func (r *Report) StdOut(w io.Writer) {
	keys, msg := r.fmtBasic()
	fmt.Fprint(w, fmtTable("Rescale Report", keys, msg))
	if len(r.Warnings) > 0 {
		p := message.NewPrinter(lang)
		for _, s := range r.Warnings {
			p.Fprintf(w, "warn: %s\n", s)
		}
	}
}

func (r *Report) String() string {
	var b strings.Builder
	r.StdOut(&b)
	return b.String()
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	name := r.Name
	if name == "" {
		name = "-"
	}
	basic := map[string]string{
		"Job":            name,
		"Variant":        r.Variant,
		"Size":           p.Sprintf("%d", r.Input.N),
		"Input Sum":      p.Sprintf("%.6f", r.Input.Sum),
		"Input Max":      p.Sprintf("%.6f", r.Input.Max),
		"Target Sum":     p.Sprintf("%.6f", r.Targets.Sum),
		"Target Max":     p.Sprintf("%.6f", r.Targets.Max),
		"Output Sum":     p.Sprintf("%.6f", r.Output.Sum),
		"Output Max":     p.Sprintf("%.6f", r.Output.Max),
		"Output Mean":    p.Sprintf("%.6f", r.Output.Mean),
		"Output STD":     p.Sprintf("%.6f", r.Output.Std),
		"Alpha":          p.Sprintf("%.6g", r.Alpha),
		"Beta":           p.Sprintf("%.6g", r.Beta),
		"Sum Range":      p.Sprintf("[%.4f, %.4f]", r.Range.Lo, r.Range.Hi),
		"Rank Preserved": fmt.Sprintf("%t", r.RankPreserved),
	}
	keys := []string{"Job", "Variant", "Size", "Input Sum", "Input Max", "Target Sum", "Target Max",
		"Output Sum", "Output Max", "Output Mean", "Output STD", "Alpha", "Beta", "Sum Range", "Rank Preserved"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var b strings.Builder
	b.WriteString(top)
	fmt.Fprintf(&b, "|%s%s%s|\n", blank(left), title, blank(right))
	b.WriteString(divider)
	for _, k := range keys {
		fmt.Fprintf(&b, "| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	b.WriteString(divider)
	return b.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
