package facade

import (
	"regexp"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// packageNameRe rejects identifiers that look like a CLI flag (leading
// "-") or carry characters no package manager's naming scheme uses, the
// validation spec.md's S4 scenario exercises directly
// (upgrade_package("npm", "-rf") must be rejected, not shelled out to).
var packageNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+@/-]*$`)

func validatePackageName(name string) error {
	if name == "" || !packageNameRe.MatchString(name) {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "invalid package identifier %q", name).WithKey("error.invalid_package_identifier")
	}
	return nil
}

func validateManagerID(managerID string) error {
	if managerID == "" {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "manager_id is required").WithKey("error.invalid_manager_id")
	}
	return nil
}
