// Package preflight provides readiness checks for the external binaries and
// directories framextract depends on.
//
// These checks run in two contexts:
//   - An extraction run calls CheckRunRoots before reading the table so a
//     missing video directory or unwritable image directory fails before any
//     frame is decoded.
//   - The CLI "framextract status" command uses CheckSystemDeps and
//     RunAll to display tool and managed-directory health.
package preflight
