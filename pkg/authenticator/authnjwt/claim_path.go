package authnjwt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A claim path locates a value inside a decoded token payload. It is a
// sequence of claim names separated by PathSeparator, where each name may
// carry one or more bracketed array indices:
//
//	claim1[1]/claim2/claim3[23][456]/claim4
//
// parses to ["claim1", 1, "claim2", "claim3", 23, 456, "claim4"].

// PathSeparator delimits claim names inside a claim path.
const PathSeparator = "/"

var (
	claimNameRegex    = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_\-.]*$`)
	indexSuffixRegex  = regexp.MustCompile(`^(.*?)((?:\[\d+\])+)$`)
	bracketIndexRegex = regexp.MustCompile(`\[(\d+)\]`)
)

// ParseClaimPath parses a claim path into an ordered mix of claim names
// (string) and array indices (int). A name starting with a digit, a
// forbidden character anywhere in a name, a leading or trailing separator,
// a bare index segment, or malformed bracket contents is
// InvalidClaimPathError.
func ParseClaimPath(claim string) ([]interface{}, error) {
	if claim == "" || strings.HasPrefix(claim, PathSeparator) || strings.HasSuffix(claim, PathSeparator) {
		return nil, &InvalidClaimPathError{Path: claim}
	}

	var parsed []interface{}
	for _, segment := range strings.Split(claim, PathSeparator) {
		name := segment
		var indices []int

		if match := indexSuffixRegex.FindStringSubmatch(segment); match != nil {
			name = match[1]
			for _, index := range bracketIndexRegex.FindAllStringSubmatch(match[2], -1) {
				value, err := strconv.Atoi(index[1])
				if err != nil {
					return nil, &InvalidClaimPathError{Path: claim}
				}
				indices = append(indices, value)
			}
		}

		if !claimNameRegex.MatchString(name) {
			return nil, &InvalidClaimPathError{Path: claim}
		}

		parsed = append(parsed, name)
		for _, index := range indices {
			parsed = append(parsed, index)
		}
	}
	return parsed, nil
}

// ExtractClaim walks a decoded JSON payload along a parsed claim path.
// ok is false when any step is missing, out of range, or of the wrong
// shape.
func ExtractClaim(claims map[string]interface{}, path []interface{}) (interface{}, bool) {
	var current interface{} = claims
	for _, step := range path {
		switch step := step.(type) {
		case string:
			object, isObject := current.(map[string]interface{})
			if !isObject {
				return nil, false
			}
			value, present := object[step]
			if !present {
				return nil, false
			}
			current = value
		case int:
			array, isArray := current.([]interface{})
			if !isArray || step < 0 || step >= len(array) {
				return nil, false
			}
			current = array[step]
		default:
			return nil, false
		}
	}
	return current, true
}

// InvalidClaimPathError reports a syntactically invalid claim path.
type InvalidClaimPathError struct {
	Path string
}

func (e *InvalidClaimPathError) Error() string {
	return fmt.Sprintf("claim path '%s' is invalid", e.Path)
}
