package provisioner

import (
	"github.com/gruntwork-io/terratest/modules/collections"
	"github.com/sirupsen/logrus"

	"github.com/mathtutor/envctl/pkg/resource"
)

// Filter narrows a spec set to the whitelisted kinds plus every transitive
// dependency they need, preserving declaration order. An empty whitelist
// keeps everything. A whitelist entry naming no known kind is a
// ConfigurationError.
func Filter(logger *logrus.Entry, specs []resource.Spec, whitelist []string) ([]resource.Spec, error) {
	if len(whitelist) == 0 {
		return specs, nil
	}

	lowered := make([]string, 0, len(whitelist))
	for _, w := range whitelist {
		kind, err := resource.StringToKind(w)
		if err != nil {
			return nil, resource.ConfigurationError{Message: err.Error()}
		}
		lowered = append(lowered, kind.String())
	}

	byKind := map[resource.Kind]resource.Spec{}
	for _, s := range specs {
		byKind[s.Kind] = s
	}

	keep := map[resource.Kind]bool{}
	var mark func(k resource.Kind)
	mark = func(k resource.Kind) {
		if keep[k] {
			return
		}
		keep[k] = true
		for _, dep := range byKind[k].DependsOn {
			mark(dep)
		}
	}

	for _, s := range specs {
		if collections.ListContains(lowered, s.Kind.String()) {
			mark(s.Kind)
		}
	}

	kept := []resource.Spec{}
	dropped := []resource.Kind{}
	for _, s := range specs {
		if keep[s.Kind] {
			kept = append(kept, s)
		} else {
			dropped = append(dropped, s.Kind)
		}
	}

	if len(dropped) > 0 {
		logger.Warnf("Resources: Skipping %s. Not present in whitelist.", joinKinds(dropped))
	}

	return kept, nil
}
