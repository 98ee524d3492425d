package restype

import "gitlab.com/tozd/go/errors"

// 🎛️ Filter is the set of types an operation is allowed to touch
type Filter map[Type]struct{}

// AllFilter returns a filter covering every known type.
func AllFilter() Filter {
	f := make(Filter, len(rawNames))
	for _, t := range AllTypes() {
		f[t] = struct{}{}
	}
	return f
}

// FromInclude builds a filter from an include list of raw tokens.
func FromInclude(tokens []string) (Filter, error) {
	f := make(Filter, len(tokens))
	for _, token := range tokens {
		t := Classify(token)
		if t == TypeNone {
			return nil, errors.Errorf("unknown resource type: %q", token)
		}
		f[t] = struct{}{}
	}
	return f, nil
}

// FromExclude builds a filter of every known type minus the exclude list.
func FromExclude(tokens []string) (Filter, error) {
	excluded, err := FromInclude(tokens)
	if err != nil {
		return nil, err
	}
	f := AllFilter()
	for t := range excluded {
		delete(f, t)
	}
	return f, nil
}

// Has reports whether the type is covered by the filter. TypeNone never is.
func (f Filter) Has(t Type) bool {
	if t == TypeNone {
		return false
	}
	_, ok := f[t]
	return ok
}
