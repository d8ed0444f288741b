// Package cli provides the interactive Oskolki terminal client.
//
// It wires configuration, the local cache, the sheet client, the session
// gate and the orchestrator behind a small REPL. Applicants can browse
// vacancies, submit an application and chat with the recruiter. Tapping
// the hidden gesture (or typing login) opens the admin prompt; once
// privileged the REPL exposes application review, holiday and vacancy
// management, manual sync and snapshot backups.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
