package core

import (
	"fmt"
	"strings"

	"luapm/internal/types"
)

// constraint operator tokens, longest first so ">=" is tried before ">".
var constraintOps = []string{"~>", ">=", "<=", "==", ">", "<", "="}

// ParseConstraint parses a constraint expression. Accepted forms:
//
//	""  "*"            any version
//	"1.4" "= 1.4"      exact
//	"~> 1.2"           compatible (bump the last given component)
//	">= 1.0" "< 2"     half-open ranges
//	">= 1.0, < 2.0"    comma-joined range parts, intersected
//
// Versions inside constraints may spell out 1-3 components; omitted
// components default to 0.
func ParseConstraint(text string) (types.Constraint, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "*" {
		return types.Constraint{Kind: types.ConstraintAny, Raw: trimmed}, nil
	}

	parts := strings.Split(trimmed, ",")
	result := types.Constraint{Kind: types.ConstraintAny}
	for _, part := range parts {
		single, err := parseSingleConstraint(strings.TrimSpace(part))
		if err != nil {
			return types.Constraint{}, err
		}
		merged, ok := Intersect(result, single)
		if !ok {
			return types.Constraint{}, NewParseError(
				fmt.Sprintf("invalid constraint %q: parts exclude every version", text), nil)
		}
		result = merged
	}
	result.Raw = trimmed
	return result, nil
}

func parseSingleConstraint(text string) (types.Constraint, error) {
	if text == "" {
		return types.Constraint{}, NewParseError("invalid constraint: empty part", nil)
	}
	for _, op := range constraintOps {
		if !strings.HasPrefix(text, op) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(text, op))
		components, err := parseComponents(rest)
		if err != nil {
			return types.Constraint{}, err
		}
		version := versionFromComponents(components)
		switch op {
		case "~>":
			return types.Constraint{
				Kind:        types.ConstraintCompatible,
				Version:     version,
				CompatDepth: len(components),
				Raw:         text,
			}, nil
		case "=", "==":
			return types.Constraint{Kind: types.ConstraintExact, Version: version, Raw: text}, nil
		case ">=":
			return rangeConstraint(&types.Bound{Version: version, Inclusive: true}, nil, text), nil
		case ">":
			return rangeConstraint(&types.Bound{Version: version}, nil, text), nil
		case "<=":
			return rangeConstraint(nil, &types.Bound{Version: version, Inclusive: true}, text), nil
		case "<":
			return rangeConstraint(nil, &types.Bound{Version: version}, text), nil
		}
	}
	// Bare version means exact.
	components, err := parseComponents(text)
	if err != nil {
		return types.Constraint{}, err
	}
	return types.Constraint{Kind: types.ConstraintExact, Version: versionFromComponents(components), Raw: text}, nil
}

func rangeConstraint(lower *types.Bound, upper *types.Bound, raw string) types.Constraint {
	return types.Constraint{Kind: types.ConstraintRange, Lower: lower, Upper: upper, Raw: raw}
}

// Satisfies reports whether the version matches the constraint.
func Satisfies(v types.Version, c types.Constraint) bool {
	switch c.Kind {
	case types.ConstraintAny:
		return true
	case types.ConstraintExact:
		return v.Equal(c.Version)
	case types.ConstraintCompatible:
		if CompareVersions(v, c.Version) < 0 {
			return false
		}
		return CompareVersions(v, compatUpperBound(c)) < 0
	case types.ConstraintRange:
		if c.Lower != nil {
			cmp := CompareVersions(v, c.Lower.Version)
			if cmp < 0 || (cmp == 0 && !c.Lower.Inclusive) {
				return false
			}
		}
		if c.Upper != nil {
			cmp := CompareVersions(v, c.Upper.Version)
			if cmp > 0 || (cmp == 0 && !c.Upper.Inclusive) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// compatUpperBound is the exclusive ceiling of a compatible constraint:
// the least-significant component the constraint spelled out, bumped by
// one, with everything below it zeroed.
func compatUpperBound(c types.Constraint) types.Version {
	switch c.CompatDepth {
	case 1:
		return types.Version{Major: c.Version.Major + 1}
	case 2:
		return types.Version{Major: c.Version.Major, Minor: c.Version.Minor + 1}
	default:
		return types.Version{Major: c.Version.Major, Minor: c.Version.Minor, Patch: c.Version.Patch + 1}
	}
}

// Intersect produces the tightest constraint satisfying both inputs.
// The second return is false when no version can satisfy both; that
// unsatisfiable outcome is an explicit state, never an empty range that
// silently matches nothing.
func Intersect(a types.Constraint, b types.Constraint) (types.Constraint, bool) {
	if b.Kind == types.ConstraintAny {
		return a, true
	}
	if a.Kind == types.ConstraintAny {
		return b, true
	}
	if a.Kind == types.ConstraintExact {
		if Satisfies(a.Version, b) {
			return a, true
		}
		return types.Constraint{}, false
	}
	if b.Kind == types.ConstraintExact {
		if Satisfies(b.Version, a) {
			return b, true
		}
		return types.Constraint{}, false
	}

	lower := tighterLower(constraintLower(a), constraintLower(b))
	upper := tighterUpper(constraintUpper(a), constraintUpper(b))
	if lower != nil && upper != nil {
		cmp := CompareVersions(lower.Version, upper.Version)
		if cmp > 0 {
			return types.Constraint{}, false
		}
		if cmp == 0 {
			if !lower.Inclusive || !upper.Inclusive {
				return types.Constraint{}, false
			}
			exact := types.Constraint{Kind: types.ConstraintExact, Version: lower.Version}
			exact.Raw = FormatConstraint(exact)
			return exact, true
		}
	}
	merged := types.Constraint{Kind: types.ConstraintRange, Lower: lower, Upper: upper}
	merged.Raw = FormatConstraint(merged)
	return merged, true
}

func constraintLower(c types.Constraint) *types.Bound {
	switch c.Kind {
	case types.ConstraintCompatible:
		return &types.Bound{Version: c.Version, Inclusive: true}
	case types.ConstraintRange:
		return c.Lower
	default:
		return nil
	}
}

func constraintUpper(c types.Constraint) *types.Bound {
	switch c.Kind {
	case types.ConstraintCompatible:
		return &types.Bound{Version: compatUpperBound(c)}
	case types.ConstraintRange:
		return c.Upper
	default:
		return nil
	}
}

func tighterLower(a *types.Bound, b *types.Bound) *types.Bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	cmp := CompareVersions(a.Version, b.Version)
	if cmp > 0 {
		return a
	}
	if cmp < 0 {
		return b
	}
	if !a.Inclusive {
		return a
	}
	return b
}

func tighterUpper(a *types.Bound, b *types.Bound) *types.Bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	cmp := CompareVersions(a.Version, b.Version)
	if cmp < 0 {
		return a
	}
	if cmp > 0 {
		return b
	}
	if !a.Inclusive {
		return a
	}
	return b
}

// FormatConstraint renders a constraint canonically for diagnostics and
// derived Raw fields.
func FormatConstraint(c types.Constraint) string {
	switch c.Kind {
	case types.ConstraintAny:
		return "*"
	case types.ConstraintExact:
		return "= " + c.Version.String()
	case types.ConstraintCompatible:
		return "~> " + compatPivotString(c)
	case types.ConstraintRange:
		var parts []string
		if c.Lower != nil {
			op := ">"
			if c.Lower.Inclusive {
				op = ">="
			}
			parts = append(parts, fmt.Sprintf("%s %s", op, c.Lower.Version))
		}
		if c.Upper != nil {
			op := "<"
			if c.Upper.Inclusive {
				op = "<="
			}
			parts = append(parts, fmt.Sprintf("%s %s", op, c.Upper.Version))
		}
		if len(parts) == 0 {
			return "*"
		}
		return strings.Join(parts, ", ")
	default:
		return c.Raw
	}
}

func compatPivotString(c types.Constraint) string {
	switch c.CompatDepth {
	case 1:
		return fmt.Sprintf("%d", c.Version.Major)
	case 2:
		return fmt.Sprintf("%d.%d", c.Version.Major, c.Version.Minor)
	default:
		return c.Version.String()
	}
}
