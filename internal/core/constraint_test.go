package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"luapm/internal/types"
)

func version(major, minor, patch int) types.Version {
	return types.Version{Major: major, Minor: minor, Patch: patch}
}

func mustConstraint(t *testing.T, text string) types.Constraint {
	t.Helper()
	c, err := ParseConstraint(text)
	require.NoError(t, err)
	return c
}

func TestParseConstraintForms(t *testing.T) {
	cases := []struct {
		input   string
		holds   []types.Version
		excl    []types.Version
	}{
		{"", []types.Version{version(0, 1, 0), version(99, 0, 0)}, nil},
		{"*", []types.Version{version(1, 0, 0)}, nil},
		{"1.4", []types.Version{version(1, 4, 0)}, []types.Version{version(1, 4, 1)}},
		{"= 1.4.2", []types.Version{version(1, 4, 2)}, []types.Version{version(1, 4, 0)}},
		{">= 1.0", []types.Version{version(1, 0, 0), version(9, 0, 0)}, []types.Version{version(0, 9, 9)}},
		{"> 1.0", []types.Version{version(1, 0, 1)}, []types.Version{version(1, 0, 0)}},
		{"<= 2.0", []types.Version{version(2, 0, 0)}, []types.Version{version(2, 0, 1)}},
		{"< 2.0", []types.Version{version(1, 9, 9)}, []types.Version{version(2, 0, 0)}},
		{">= 1.0, < 2.0", []types.Version{version(1, 5, 0)}, []types.Version{version(2, 0, 0), version(0, 9, 0)}},
	}
	for _, tc := range cases {
		c := mustConstraint(t, tc.input)
		for _, v := range tc.holds {
			require.True(t, Satisfies(v, c), "%q should admit %s", tc.input, v)
		}
		for _, v := range tc.excl {
			require.False(t, Satisfies(v, c), "%q should exclude %s", tc.input, v)
		}
	}
}

func TestCompatibleBumpsLastGivenComponent(t *testing.T) {
	// Two components given: the minor is the pivot.
	c := mustConstraint(t, "~> 1.2")
	require.True(t, Satisfies(version(1, 2, 0), c))
	require.True(t, Satisfies(version(1, 2, 9), c))
	require.False(t, Satisfies(version(1, 3, 0), c))
	require.False(t, Satisfies(version(1, 1, 9), c))

	// One component given: the major is the pivot.
	c = mustConstraint(t, "~> 1")
	require.True(t, Satisfies(version(1, 9, 9), c))
	require.False(t, Satisfies(version(2, 0, 0), c))

	// Three components given: the patch is the pivot.
	c = mustConstraint(t, "~> 1.2.3")
	require.True(t, Satisfies(version(1, 2, 3), c))
	require.False(t, Satisfies(version(1, 2, 4), c))
}

func TestParseConstraintRejectsMalformedInput(t *testing.T) {
	cases := []string{"~>", ">= x.y", "1.2.3.4", ">= 1.0, < 0.5"}
	for _, input := range cases {
		_, err := ParseConstraint(input)
		require.Error(t, err, "input %q", input)
		require.True(t, IsParseError(err), "input %q", input)
	}
}

func TestIntersectWithAnyReturnsOperandUnchanged(t *testing.T) {
	any := mustConstraint(t, "*")
	for _, input := range []string{"= 1.4.0", "~> 1.2", ">= 1.0, < 2.0", "*"} {
		c := mustConstraint(t, input)
		merged, ok := Intersect(c, any)
		require.True(t, ok)
		if diff := cmp.Diff(c, merged); diff != "" {
			t.Fatalf("Intersect(%q, *) changed the operand (-want +got):\n%s", input, diff)
		}
		merged, ok = Intersect(any, c)
		require.True(t, ok)
		if diff := cmp.Diff(c, merged); diff != "" {
			t.Fatalf("Intersect(*, %q) changed the operand (-want +got):\n%s", input, diff)
		}
	}
}

func TestIntersectRangeWithExact(t *testing.T) {
	rng := mustConstraint(t, ">= 1.0, < 3.0")
	exact := mustConstraint(t, "= 2.0.0")

	merged, ok := Intersect(rng, exact)
	require.True(t, ok)
	require.Equal(t, types.ConstraintExact, merged.Kind)
	require.Equal(t, version(2, 0, 0), merged.Version)

	outside := mustConstraint(t, "= 3.0.0")
	_, ok = Intersect(rng, outside)
	require.False(t, ok)
}

func TestIntersectOverlappingRanges(t *testing.T) {
	a := mustConstraint(t, ">= 1.0, < 3.0")
	b := mustConstraint(t, ">= 2.0, < 4.0")

	merged, ok := Intersect(a, b)
	require.True(t, ok)
	require.True(t, Satisfies(version(2, 5, 0), merged))
	require.False(t, Satisfies(version(1, 5, 0), merged))
	require.False(t, Satisfies(version(3, 0, 0), merged))
}

func TestIntersectDisjointIsUnsatisfiable(t *testing.T) {
	a := mustConstraint(t, "< 1.0")
	b := mustConstraint(t, ">= 2.0")
	_, ok := Intersect(a, b)
	require.False(t, ok)

	// Touching bounds where one side is exclusive exclude everything too.
	a = mustConstraint(t, "< 2.0")
	b = mustConstraint(t, ">= 2.0")
	_, ok = Intersect(a, b)
	require.False(t, ok)
}

func TestIntersectTouchingInclusiveBoundsCollapsesToExact(t *testing.T) {
	a := mustConstraint(t, "<= 2.0")
	b := mustConstraint(t, ">= 2.0")
	merged, ok := Intersect(a, b)
	require.True(t, ok)
	require.Equal(t, types.ConstraintExact, merged.Kind)
	require.Equal(t, version(2, 0, 0), merged.Version)
}

func TestIntersectCompatibleNarrowing(t *testing.T) {
	compat := mustConstraint(t, "~> 1.2")
	floor := mustConstraint(t, ">= 1.2.5")

	merged, ok := Intersect(compat, floor)
	require.True(t, ok)
	require.True(t, Satisfies(version(1, 2, 5), merged))
	require.True(t, Satisfies(version(1, 2, 9), merged))
	require.False(t, Satisfies(version(1, 2, 4), merged))
	require.False(t, Satisfies(version(1, 3, 0), merged))
}

func TestFormatConstraintCanonicalForms(t *testing.T) {
	cases := map[string]string{
		"*":             "*",
		"1.4.2":         "= 1.4.2",
		"~>1.2":         "~> 1.2",
		"~> 1":          "~> 1",
		">=1.0":         ">= 1.0.0",
		">= 1.0, <2.0":  ">= 1.0.0, < 2.0.0",
	}
	for input, want := range cases {
		c := mustConstraint(t, input)
		require.Equal(t, want, FormatConstraint(c), "input %q", input)
	}
}
