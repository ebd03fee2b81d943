// Package submit composes the attachment pipeline, the mutation engine and
// the cache into the user-facing feed actions.
//
// # Overview
//
// Orchestrator drives one composition (post, comment or remix) through the
// lifecycle Idle → Composing → AwaitingUploads → Submitting; the terminal
// outcome is observed on the returned mutation ticket. Actions covers the
// single-step mutations (like, delete). SideEffectDispatcher delivers
// best-effort notifications after a primary mutation succeeds.
//
// # Failure behavior
//
// A rejected gate or a failed mutation always preserves the composed content
// and the uploaded attachments, so the user can resubmit without redoing the
// uploads. Rollback is cache invalidation plus refetch (see FeedRefresher),
// never a manual undo of the optimistic patch. Side-effect failures are
// logged and swallowed.
package submit
