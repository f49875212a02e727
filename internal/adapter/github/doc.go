// Package github maps normalized code issues into the GitHub Checks API
// annotation shape and builds pull-request review summaries. It only
// constructs payloads; posting them is the API client's job and lives
// outside this module.
package github
