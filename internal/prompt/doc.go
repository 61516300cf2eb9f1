// Package prompt builds the instruction text sent to the completion service.
// It defines the learning categories, validated requests, and the three
// prompt strategies: omnibus, per-category and JSON.
package prompt
