package filter

// UserFilter drops records owned by operational or test accounts. Names are
// matched exactly, so " cz" and "cz" are different entries.
type UserFilter struct {
	denied map[string]struct{}
}

func NewUserFilter(names []string) *UserFilter {
	denied := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		denied[n] = struct{}{}
	}
	return &UserFilter{denied: denied}
}

// Denied reports whether records owned by name must be excluded. A nil filter denies nothing.
func (f *UserFilter) Denied(name string) bool {
	if f == nil {
		return false
	}
	_, ok := f.denied[name]
	return ok
}
