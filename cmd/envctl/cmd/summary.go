package cmd

import (
	"fmt"
	"strings"

	"github.com/gookit/color"

	"github.com/mathtutor/envctl/pkg/resource"
)

// printSummary renders the per-resource outcome table with remediation
// hints for anything that did not reach a usable state
func printSummary(report *resource.Report) {
	fmt.Println()
	color.Style{color.FgCyan, color.OpBold}.Println("Provisioning summary")

	succeeded := 0

	for _, e := range report.Entries {
		line := fmt.Sprintf("  %-18s %-20s %s", e.Spec.Kind, e.Spec.Name, e.Result.Status)

		switch e.Result.Status {
		case resource.Created, resource.AlreadyExists:
			succeeded++
			color.Green.Println(line)
		case resource.NotFound:
			color.Yellow.Println(line)
		default:
			color.Red.Println(line)
		}

		if hint := remediationHint(e); hint != "" {
			fmt.Printf("      %s\n", hint)
		}
	}

	fmt.Println()

	if report.OverallSuccess() {
		color.Green.Printf("%v/%v resources available.\n", succeeded, len(report.Entries))
	} else {
		color.Red.Printf("%v/%v resources available. Required resources are missing, see hints above.\n", succeeded, len(report.Entries))
	}
}

func remediationHint(e resource.Entry) string {
	switch e.Result.Status {
	case resource.Created, resource.AlreadyExists:
		return ""
	case resource.NotFound:
		return "not created because this was a dry run, run 'envctl provision' without --dry-run"
	case resource.Aborted:
		return "run was interrupted, re-run 'envctl provision' to resume (finished resources are discovered, not recreated)"
	}

	detail := e.Result.ErrorDetail

	if strings.HasPrefix(detail, "unsatisfied dependency") {
		return fmt.Sprintf("%s, fix that resource and re-run", detail)
	}

	if strings.HasPrefix(detail, "discovery failed") {
		return fmt.Sprintf("%s. Check connectivity and 'az login', then re-run", detail)
	}

	return fmt.Sprintf("%s. Fix the cause (quota, naming, permissions) and re-run, or create the resource manually and run 'envctl verify'", detail)
}
