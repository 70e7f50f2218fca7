package revert

import "github.com/hashicorp/go-multierror"

// appendError coalesces independent closer failures instead of dropping all
// but one, per the scoped resource stack's "failures are coalesced and
// reported but never silently dropped" contract.
func appendError(existing, next error) error {
	return multierror.Append(existing, next)
}
