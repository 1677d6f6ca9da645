// Package model provides the data structures shared across the pipeline
// package. It defines the sentinel token, the hook and transform function
// types, and the per-stage metadata consumed by the drawer, the measure and
// the logs.
package model
