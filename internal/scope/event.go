// Package scope determines which files an analysis run applies to, from
// a CI event payload, a git ref pair, or raw unified-diff text.
package scope

import (
	"encoding/json"
	"os"
)

// RefPair is the base/head pair extracted from a CI event payload.
type RefPair struct {
	Base string
	Head string
}

type eventPayload struct {
	PullRequest *struct {
		Base struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"base"`
		Head struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// RefsFromEvent extracts a base/head pair from a CI event file.
// pull_request events yield the PR base/head (SHA preferred over ref);
// push events yield before/after. An unreadable file, malformed JSON, or
// an event without base/head information reports ok=false; callers fall
// back to whole-tree scope, it is not an error.
func RefsFromEvent(eventPath string) (RefPair, bool) {
	data, err := os.ReadFile(eventPath)
	if err != nil {
		return RefPair{}, false
	}

	var event eventPayload
	if err := json.Unmarshal(data, &event); err != nil {
		return RefPair{}, false
	}

	if pr := event.PullRequest; pr != nil {
		base := pr.Base.SHA
		if base == "" {
			base = pr.Base.Ref
		}
		head := pr.Head.SHA
		if head == "" {
			head = pr.Head.Ref
		}
		if base != "" && head != "" {
			return RefPair{Base: base, Head: head}, true
		}
	}

	if event.Before != "" && event.After != "" {
		return RefPair{Base: event.Before, Head: event.After}, true
	}

	return RefPair{}, false
}
