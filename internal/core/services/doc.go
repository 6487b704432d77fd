// Package services implements the driving port interfaces.
// Services contain the core reconciliation and job-tracking logic and
// orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no CGO or adapter dependencies.
package services
