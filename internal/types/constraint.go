package types

// ConstraintKind enumerates the closed set of constraint forms. All
// constraint logic in core is exhaustive over these four kinds.
type ConstraintKind string

const (
	ConstraintAny        ConstraintKind = "any"
	ConstraintExact      ConstraintKind = "exact"
	ConstraintCompatible ConstraintKind = "compatible"
	ConstraintRange      ConstraintKind = "range"
)

// Bound is one end of a range constraint.
type Bound struct {
	Version   Version
	Inclusive bool
}

// Constraint is a predicate over versions. Which fields are meaningful
// depends on Kind:
//   - ConstraintAny: no fields.
//   - ConstraintExact: Version.
//   - ConstraintCompatible: Version plus CompatDepth, the number of
//     components the constraint text spelled out. The exclusive upper
//     bound bumps the least-significant spelled-out component, so
//     "~> 1.2" allows >=1.2.0 <1.3.0 and "~> 1" allows >=1.0.0 <2.0.0.
//   - ConstraintRange: Lower and/or Upper, each independently optional.
//
// Raw preserves the source text for diagnostics.
type Constraint struct {
	Kind        ConstraintKind
	Version     Version
	CompatDepth int
	Lower       *Bound
	Upper       *Bound
	Raw         string
}

// Dependent records who demanded a package and with which constraint,
// for conflict diagnostics.
type Dependent struct {
	Name       string
	Constraint Constraint
}
