// Package diag defines the diagnostic model for the reducer: severities,
// stable numeric codes per phase, line-anchored diagnostics with
// "included from" trails, and the Bag that accumulates them during a pass.
package diag
