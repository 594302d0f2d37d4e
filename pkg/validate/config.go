package validate

// Walker is implemented by resolved configuration trees. Walk must call fn
// once per declared field, in a stable order, with the field's dotted path,
// its rule and its effective value.
type Walker interface {
	Walk(fn func(path string, rule Rule, value any, present bool))
}

// Config checks every field of a resolved configuration tree.
func Config(w Walker) Result {
	var res Result
	w.Walk(func(path string, rule Rule, value any, present bool) {
		res.Merge(Check(path, rule, value, present))
	})
	return res
}
