package restrictions

import "fmt"

// Resolver looks up the value a verified credential carries for one
// restriction type. ok is false when the credential has no such value.
type Resolver func(restrictionType string) (value string, ok bool)

// Validate checks the restrictions present on a host against the verified
// credential. The present set must be non-empty, every type must be in the
// permitted set, and every value must match the credential exactly; a
// single mismatch fails the whole check.
func Validate(present Restrictions, permitted []string, resolve Resolver) error {
	if err := validateState(present, permitted); err != nil {
		return err
	}

	for _, restriction := range present {
		if !contains(permitted, restriction.Type) {
			return &ConstraintNotSupportedError{Type: restriction.Type, Permitted: permitted}
		}
		if restriction.Value == "" {
			return &MissingRestrictionValueError{Type: restriction.Type}
		}
	}

	for _, restriction := range present {
		actual, ok := resolve(restriction.Type)
		if !ok || actual != restriction.Value {
			return &InvalidResourceRestrictionsError{Type: restriction.Type}
		}
	}
	return nil
}

// validateState rejects combinations that indicate a broken caller rather
// than a misconfigured host: an empty or duplicated permitted set, or
// duplicated restriction types. A host with zero restrictions fails with
// RoleMissingConstraintsError, which callers surface as a policy problem.
func validateState(present Restrictions, permitted []string) error {
	if len(permitted) == 0 {
		return &IllegalConstraintCombinationError{Reason: "permitted constraints are missing or empty"}
	}
	if hasDuplicates(permitted) {
		return &IllegalConstraintCombinationError{Reason: "permitted constraints contain duplications"}
	}
	if len(present) == 0 {
		return &RoleMissingConstraintsError{Permitted: permitted}
	}
	if hasDuplicates(present.Types()) {
		return &IllegalConstraintCombinationError{Reason: "resource restrictions contain duplications"}
	}
	return nil
}

func contains(set []string, value string) bool {
	for _, member := range set {
		if member == value {
			return true
		}
	}
	return false
}

func hasDuplicates(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, dup := seen[v]; dup {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}

// RoleMissingConstraintsError reports a host with no resource restrictions
// configured at all.
type RoleMissingConstraintsError struct {
	Permitted []string
}

func (e *RoleMissingConstraintsError) Error() string {
	return fmt.Sprintf("role must have at least one of the required constraints: %v", e.Permitted)
}

// ConstraintNotSupportedError reports a restriction type outside the
// authenticator's permitted set.
type ConstraintNotSupportedError struct {
	Type      string
	Permitted []string
}

func (e *ConstraintNotSupportedError) Error() string {
	return fmt.Sprintf("constraint '%s' is not supported, supported constraints are: %v", e.Type, e.Permitted)
}

// MissingRestrictionValueError reports a restriction annotation with an
// empty value.
type MissingRestrictionValueError struct {
	Type string
}

func (e *MissingRestrictionValueError) Error() string {
	return fmt.Sprintf("resource restriction '%s' does not have a value", e.Type)
}

// InvalidResourceRestrictionsError reports a restriction whose value does
// not match the verified credential.
type InvalidResourceRestrictionsError struct {
	Type string
}

func (e *InvalidResourceRestrictionsError) Error() string {
	return fmt.Sprintf("resource restriction '%s' does not match the corresponding value in the request", e.Type)
}

// IllegalConstraintCombinationError reports an invalid validator state:
// empty or duplicated permitted constraints, or duplicated restrictions.
type IllegalConstraintCombinationError struct {
	Reason string
}

func (e *IllegalConstraintCombinationError) Error() string {
	return fmt.Sprintf("illegal resource restrictions state: %s", e.Reason)
}
