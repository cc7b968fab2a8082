// Package datasets registers all dataset definitions with the core registry.
// Import this package to ensure all datasets are registered.
package datasets

// Each dataset file uses init() to register its definition.
