package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// EvaluateEligibility checks a student against a drive's branch, CGPA and year criteria.
// Empty branch or year lists admit everyone. A blank student CGPA counts as zero and an
// unparseable minimum is ignored.
func EvaluateEligibility(student models.Student, drive models.Drive) models.EligibilityResult {
	reasons := make([]string, 0, 3)

	if len(drive.EligibleBranches) > 0 && !containsFold(drive.EligibleBranches, student.Branch) {
		reasons = append(reasons, fmt.Sprintf("branch %q is not eligible (allowed: %s)",
			strings.TrimSpace(student.Branch), strings.Join(drive.EligibleBranches, ", ")))
	}

	if minimum, ok := parseCGPA(drive.MinCGPA); ok {
		cgpa, _ := parseCGPA(student.CGPA)
		if cgpa < minimum {
			reasons = append(reasons, fmt.Sprintf("CGPA %.2f is below the minimum %.2f", cgpa, minimum))
		}
	}

	if len(drive.EligibleYears) > 0 && !containsTrimmed(drive.EligibleYears, student.Year) {
		reasons = append(reasons, fmt.Sprintf("year %q is not eligible (allowed: %s)",
			strings.TrimSpace(student.Year), strings.Join(drive.EligibleYears, ", ")))
	}

	return models.EligibilityResult{Eligible: len(reasons) == 0, Reasons: reasons}
}

func containsFold(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}

func containsTrimmed(values []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range values {
		if strings.TrimSpace(v) == target {
			return true
		}
	}
	return false
}
