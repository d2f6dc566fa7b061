package filter

// ModelNormalizer maps aliased model names onto their canonical name and
// excludes retired models. Aliases are applied before the retired check, so a
// name that is both aliased and retired survives under its canonical name.
type ModelNormalizer struct {
	aliases    map[string]string
	deprecated map[string]struct{}
}

func NewModelNormalizer(aliases map[string]string, deprecated []string) *ModelNormalizer {
	n := &ModelNormalizer{
		aliases:    make(map[string]string, len(aliases)),
		deprecated: make(map[string]struct{}, len(deprecated)),
	}
	for from, to := range aliases {
		n.aliases[from] = to
	}
	for _, m := range deprecated {
		n.deprecated[m] = struct{}{}
	}
	return n
}

// Normalize returns the canonical model name and whether records of that
// model take part in aggregation at all.
func (n *ModelNormalizer) Normalize(model string) (string, bool) {
	if n == nil {
		return model, true
	}
	if canonical, ok := n.aliases[model]; ok {
		model = canonical
	}
	if _, retired := n.deprecated[model]; retired {
		return model, false
	}
	return model, true
}
