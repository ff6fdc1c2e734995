// Package core provides the import pipeline for the bakery CSV exports.
//
// This package holds all domain logic independent of any UI or transport
// layer. The CLI and the web shell both drive it through [Service].
//
// # Table Registry
//
// The three destination tables are registered at init time by the tables
// package using [Register]. Each [TableDefinition] lists its columns in CSV
// field order with their SQL type and default literal, plus the primary key,
// foreign keys and the slice of the progress scale its load occupies.
//
// # Pipeline
//
// One import ([Importer.Run]) proceeds as:
//
//  1. Resolve Matlist.csv, Recipehead.csv and Recipeline.csv in the source
//     folder; all missing files are reported together
//  2. Open the destination (a [Store]) and create missing tables
//  3. For each table in load order: decode the file from ISO-8859-1
//     ([ParseRows]), pad or truncate every row to the table width
//     ([Reconcile]), bind the fields ([BindRow]) and upsert them inside one
//     transaction ([LoadTable])
//
// A failing row rolls its table back and stops the run. Tables committed
// earlier stay committed.
//
// # Sessions
//
// [Service.Start] runs an import in the background as a [Session]. Only one
// session runs at a time; a second trigger gets [ErrImportInProgress].
// Progress and log lines are published as [Event] values that late
// subscribers receive in full, ending with a done event carrying the
// [Result].
//
// # Error Handling
//
// Failures are [ImportError] values classified by [ErrorKind]. [MapError]
// turns any error into a user-facing message with a support code:
//
//   - IMP001-IMP007: Import failures, one per ErrorKind
//   - DB001-DB007: Destination errors (constraints, locks, connections)
//   - VAL001: Invalid number in a numeric column
//   - SES001-SES002: Session errors (busy, not found)
package core
