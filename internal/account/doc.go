// Package account implements the account lifecycle orchestrator: one
// operation per transition (register, login, logout, forgot-password,
// reset-password, change-password, resend-verification, delete-account),
// each composed as feature gate -> validation -> credential store call ->
// error mapping. The service holds no per-request state; the credential
// store is the single source of truth for accounts and sessions.
package account
