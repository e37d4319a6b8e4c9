package adapter

import (
	"strings"

	"github.com/manifoldpm/manifold/internal/pkgerr"
)

// ValidateIdentifier enforces package-identifier hygiene at the mutating
// boundary (Install, Uninstall, Upgrade, Pin, Unpin): reject empty,
// whitespace, or flag-like tokens before they ever reach a CommandSpec
// argv. ListInstalled/ListOutdated/Search/Detect never call this, since
// those names originate from the manager itself, not from a caller.
func ValidateIdentifier(target string) error {
	trimmed := strings.TrimSpace(target)
	if trimmed == "" {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "package identifier is empty").WithKey("error.invalid_package_identifier")
	}
	if trimmed != target {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "package identifier %q has leading or trailing whitespace", target).WithKey("error.invalid_package_identifier")
	}
	if strings.HasPrefix(target, "-") {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "package identifier %q looks like a flag", target).WithKey("error.invalid_package_identifier")
	}
	if strings.ContainsAny(target, "\n\r\t") {
		return pkgerr.Newf(pkgerr.KindInvalidArgument, "package identifier %q contains control characters", target).WithKey("error.invalid_package_identifier")
	}
	return nil
}
