package shapecheck

// variantScore counts the shape-discriminating violations of one union
// alternative against a candidate record. Presence, dependency and nested
// failures are not part of the score.
type variantScore struct {
	undeclared int // keys of the candidate the alternative does not declare
	tags       int // present discriminator fields whose value the alternative rejects
}

func (s variantScore) zero() bool { return s.undeclared == 0 && s.tags == 0 }

func (s variantScore) less(o variantScore) bool {
	if s.undeclared != o.undeclared {
		return s.undeclared < o.undeclared
	}
	return s.tags < o.tags
}

func scoreVariant(rec map[string]any, alt Object) variantScore {
	var s variantScore
	for k, v := range rec {
		if !isNull(v) && !alt.Declares(k) {
			s.undeclared++
		}
	}
	for _, f := range alt {
		if !f.isDiscriminator() {
			continue
		}
		val, ok := rec[f.Name]
		if !ok || isNull(val) {
			continue
		}
		if !matchesType(val, f.Type) {
			s.tags++
			continue
		}
		for _, vd := range f.Validators {
			if !vd.Check(val) {
				s.tags++
				break
			}
		}
	}
	return s
}

// selectVariant returns the index of the alternative rec is validated
// against and whether it matched without shape-discriminating violations.
//
// The first alternative with no violations wins. Otherwise the alternative
// with the fewest undeclared keys wins, then the fewest tag violations, then
// the earliest declared.
func selectVariant(rec map[string]any, u Union) (int, bool) {
	best := 0
	var bestScore variantScore
	for i, alt := range u {
		s := scoreVariant(rec, alt)
		if s.zero() {
			return i, true
		}
		if i == 0 || s.less(bestScore) {
			best, bestScore = i, s
		}
	}
	return best, false
}

func (w *walker) union(v any, u Union, p Path) bool {
	rec, ok := asMap(v)
	if !ok {
		return w.report(notObject(p))
	}
	idx, matched := selectVariant(rec, u)
	mark := len(w.issues)
	failed := w.variant(rec, u[idx], p)
	// Nested unions annotate their own violations first; keep the innermost.
	for _, e := range w.issues[mark:] {
		if _, ok := e.Params["variant"]; ok {
			continue
		}
		e.setParam("variant", idx)
		e.setParam("matched", matched)
	}
	return failed
}

// variant validates rec against the selected alternative. Dependency rules of
// present fields run first since they tie the variant tag to its companion
// fields; the regular declaration-ordered walk follows.
func (w *walker) variant(rec map[string]any, alt Object, p Path) bool {
	pre := &prepass{failed: map[string]bool{}}
	failed := false
	for _, f := range alt {
		if len(f.DependsOn) == 0 {
			continue
		}
		if val, ok := rec[f.Name]; !ok || isNull(val) {
			continue
		}
		if w.dependencies(rec, f, p) {
			pre.failed[f.Name] = true
			failed = true
			if !w.collect {
				return true
			}
		}
	}
	return w.object(rec, alt, p, pre) || failed
}
