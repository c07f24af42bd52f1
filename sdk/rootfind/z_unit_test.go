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

package rootfind

import (
	"math"
	"testing"

	"github.com/zintix-labs/profilescale/errs"
)

func solvers() map[string]Solver {
	return map[string]Solver{
		"brent":  NewBrent(),
		"bisect": NewBisection(),
	}
}

func TestKnownRoots(t *testing.T) {
	cases := []struct {
		name   string
		f      Func
		lo, hi float64
		want   float64
	}{
		{"sqrt2", func(x float64) float64 { return x*x - 2 }, 0, 2, math.Sqrt2},
		{"cos", math.Cos, 0, 3, math.Pi / 2},
		{"cubic", func(x float64) float64 { return x*x*x - x - 1 }, 1, 2, 1.324717957244746},
		{"decreasing", func(x float64) float64 { return 1 - math.Exp(x) }, -1, 2, 0},
	}
	for sn, s := range solvers() {
		for _, c := range cases {
			res, err := s.Solve(c.f, c.lo, c.hi)
			if err != nil {
				t.Fatalf("%s/%s: %v", sn, c.name, err)
			}
			if !res.Converged {
				t.Fatalf("%s/%s: not converged", sn, c.name)
			}
			if math.Abs(res.Root-c.want) > 1e-10 {
				t.Fatalf("%s/%s: root got %.15g want %.15g", sn, c.name, res.Root, c.want)
			}
			if res.FuncCalls < 2 {
				t.Fatalf("%s/%s: func calls %d", sn, c.name, res.FuncCalls)
			}
		}
	}
}

func TestEndpointRoot(t *testing.T) {
	f := func(x float64) float64 { return x - 1 }
	for sn, s := range solvers() {
		res, err := s.Solve(f, 1, 3)
		if err != nil || res.Root != 1 || !res.Converged {
			t.Fatalf("%s: endpoint root got %+v %v", sn, res, err)
		}
	}
}

func TestNoSignChange(t *testing.T) {
	f := func(x float64) float64 { return x*x + 1 }
	for sn, s := range solvers() {
		_, err := s.Solve(f, -1, 1)
		if !errs.IsKind(err, errs.SolverNonConvergence) {
			t.Fatalf("%s: want SolverNonConvergence, got %v", sn, err)
		}
	}
}

func TestInvalidBracket(t *testing.T) {
	for sn, s := range solvers() {
		if _, err := s.Solve(math.Sin, 2, 1); !errs.IsKind(err, errs.InvalidInput) {
			t.Fatalf("%s: reversed bracket got %v", sn, err)
		}
		if _, err := s.Solve(nil, 0, 1); !errs.IsKind(err, errs.InvalidInput) {
			t.Fatalf("%s: nil func got %v", sn, err)
		}
		if _, err := s.Solve(math.Sin, math.NaN(), 1); !errs.IsKind(err, errs.InvalidInput) {
			t.Fatalf("%s: NaN bracket got %v", sn, err)
		}
	}
}

func TestNaNFunction(t *testing.T) {
	f := func(x float64) float64 {
		if x == -1 {
			return -1
		}
		if x == 1 {
			return 1
		}
		return math.NaN()
	}
	for sn, s := range solvers() {
		if _, err := s.Solve(f, -1, 1); !errs.IsKind(err, errs.SolverNonConvergence) {
			t.Fatalf("%s: NaN inside bracket got %v", sn, err)
		}
	}
}

func TestMaxIter(t *testing.T) {
	f := func(x float64) float64 { return x - 0.123456789 }
	b := &Bisection{Settings: Settings{XTol: 1e-15, MaxIter: 3}}
	if _, err := b.Solve(f, 0, 1); !errs.IsKind(err, errs.SolverNonConvergence) {
		t.Fatalf("bisection over MaxIter got %v", err)
	}
	steep := func(x float64) float64 { return math.Cbrt(x - 0.3) }
	br := &Brent{Settings: Settings{XTol: 1e-300, MaxIter: 2}}
	if _, err := br.Solve(steep, -1e6, 1e6); !errs.IsKind(err, errs.SolverNonConvergence) {
		t.Fatalf("brent over MaxIter got %v", err)
	}
}

func TestBrentFasterThanBisection(t *testing.T) {
	f := func(x float64) float64 { return math.Exp(x) - 10 }
	rb, err := NewBrent().Solve(f, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	rs, err := NewBisection().Solve(f, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if rb.Iterations >= rs.Iterations {
		t.Fatalf("brent iterations %d should beat bisection %d", rb.Iterations, rs.Iterations)
	}
}
