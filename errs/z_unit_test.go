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

package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindDefaultLevel(t *testing.T) {
	cases := []struct {
		kind Kind
		lv   ErrLevel
	}{
		{InvalidInput, Warn},
		{UnachievableTarget, Warn},
		{SolverNonConvergence, Fatal},
		{PrecisionWarning, Log},
		{PostconditionViolation, Fatal},
	}
	for _, c := range cases {
		e := NewKind(c.kind, "x")
		if e.ErrLv != c.lv {
			t.Fatalf("%s: level got %s want %s", c.kind, ErrLv(e.ErrLv), ErrLv(c.lv))
		}
		if e.Kind != c.kind {
			t.Fatalf("kind got %s want %s", e.Kind, c.kind)
		}
	}
}

func TestErrorString(t *testing.T) {
	e := Invalidf("tol must be in (0, 1): %g", 2.0)
	s := e.Error()
	for _, want := range []string{"errlv=warn", "kind=invalid_input", "tol must be in (0, 1): 2"} {
		if !strings.Contains(s, want) {
			t.Fatalf("error string %q missing %q", s, want)
		}
	}
	if strings.Contains(NewFatal("boom").Error(), "kind=") {
		t.Fatalf("unknown kind should not be printed")
	}
}

func TestWrapKeepsLevelAndKind(t *testing.T) {
	base := Unachievablef("target out of range")
	w := WrapWithExtra(base, "rescale failed", "job-a")
	if w.ErrLv != Warn || w.Kind != UnachievableTarget {
		t.Fatalf("wrap lost level/kind: %v / %v", w.ErrLv, w.Kind)
	}
	if !errors.Is(w, base) {
		t.Fatalf("errors.Is should find the cause")
	}
	if !strings.Contains(w.Error(), "extra: job-a") {
		t.Fatalf("extra missing: %s", w.Error())
	}

	std := Wrap(fmt.Errorf("io"), "read")
	if std.ErrLv != Fatal || std.Kind != KindUnknown {
		t.Fatalf("foreign cause should wrap as fatal/unknown, got %v/%v", std.ErrLv, std.Kind)
	}
}

func TestIsKindWalksChain(t *testing.T) {
	inner := NonConvergencef("no sign change")
	outer := Wrap(inner, "find alpha")
	outer.Kind = KindUnknown
	wrapped := fmt.Errorf("ctx: %w", outer)

	if !IsKind(wrapped, SolverNonConvergence) {
		t.Fatalf("IsKind should walk the cause chain")
	}
	if IsKind(wrapped, InvalidInput) {
		t.Fatalf("unexpected kind match")
	}
	if IsKind(nil, InvalidInput) || IsKind(errors.New("plain"), InvalidInput) {
		t.Fatalf("nil/plain errors have no kind")
	}
	if KindOf(wrapped) != KindUnknown {
		t.Fatalf("KindOf reports the outermost *E")
	}
	if KindOf(inner) != SolverNonConvergence {
		t.Fatalf("KindOf got %s", KindOf(inner))
	}
}

func TestAsErr(t *testing.T) {
	if _, ok := AsErr(errors.New("plain")); ok {
		t.Fatalf("plain error is not *E")
	}
	e, ok := AsErr(fmt.Errorf("w: %w", Precisionf("off")))
	if !ok || e.Kind != PrecisionWarning {
		t.Fatalf("AsErr got %v %v", e, ok)
	}
}
