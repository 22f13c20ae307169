// Package preflight provides readiness checks for the encoder binary and the
// filesystem paths downconv depends on.
//
// These checks run in two contexts:
//   - The converter calls CheckDirectoryAccess on the destination parent and
//     resolves SystemRequirements before creating the destination, so an
//     unwritable library or a missing encoder fails up front.
//   - The CLI "downconv check" command uses RunAll to display environment
//     health.
package preflight
