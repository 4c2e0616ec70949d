// Package cmd provides the command-line interface for pagekit.
//
// This package implements all CLI commands using the Cobra framework,
// covering the landing page build and preview workflow.
//
// # Available Commands
//
//   - init: Write a starter .pagekit.yml configuration file
//   - optimize: Run the asset pipeline over the source directory
//   - seo: Inject SEO meta tags into HTML pages
//   - serve: Preview the optimized output with live reload
//   - version: Show build information
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (PAGEKIT_*)
//  3. Configuration file (.pagekit.yml)
//  4. Default values (lowest priority)
package cmd
