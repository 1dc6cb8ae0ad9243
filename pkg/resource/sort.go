package resource

import "fmt"

// Levels groups specs into dependency levels, level N containing only specs
// whose dependencies all sit in levels < N. Within a level the declaration
// order of the input is preserved, which keeps the attempt sequence stable
// across runs for a fixed spec set.
//
// A dependency cycle, a dependency on a kind not present in the set, a kind
// declared twice, or one name reused by two different kinds all return a
// ConfigurationError before any cloud call happens.
func Levels(specs []Spec) ([][]Spec, error) {
	byKind := map[Kind]Spec{}
	names := map[string]Kind{}

	for _, s := range specs {
		if _, ok := byKind[s.Kind]; ok {
			return nil, ConfigurationError{Message: fmt.Sprintf("resource kind %s declared more than once", s.Kind)}
		}
		byKind[s.Kind] = s

		if owner, ok := names[s.Name]; ok && owner != s.Kind {
			return nil, ConfigurationError{Message: fmt.Sprintf("name '%s' used by both %s and %s", s.Name, owner, s.Kind)}
		}
		names[s.Name] = s.Kind
	}

	for _, s := range specs {
		for _, dep := range s.DependsOn {
			if _, ok := byKind[dep]; !ok {
				return nil, ConfigurationError{Message: fmt.Sprintf("%s depends on %s which is not in the resource set", s.Kind, dep)}
			}
		}
	}

	placed := map[Kind]bool{}
	remaining := append([]Spec{}, specs...)
	levels := [][]Spec{}

	for len(remaining) > 0 {
		level := []Spec{}
		next := []Spec{}

		for _, s := range remaining {
			ready := true
			for _, dep := range s.DependsOn {
				if !placed[dep] {
					ready = false
					break
				}
			}

			if ready {
				level = append(level, s)
			} else {
				next = append(next, s)
			}
		}

		// nothing became ready, the remainder must contain a cycle
		if len(level) == 0 {
			cycled := []string{}
			for _, s := range next {
				cycled = append(cycled, s.Kind.String())
			}
			return nil, ConfigurationError{Message: fmt.Sprintf("dependency cycle involving %v", cycled)}
		}

		for _, s := range level {
			placed[s.Kind] = true
		}

		levels = append(levels, level)
		remaining = next
	}

	return levels, nil
}

// SortSpecs flattens Levels into a single stable topological order
func SortSpecs(specs []Spec) ([]Spec, error) {
	levels, err := Levels(specs)
	if err != nil {
		return nil, err
	}

	sorted := []Spec{}
	for _, level := range levels {
		sorted = append(sorted, level...)
	}

	return sorted, nil
}
