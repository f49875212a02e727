// Package rules normalizes tool-specific rule codes into canonical
// "tool:code" identifiers so the same underlying issue class yields the
// same rule ID regardless of which tool surfaced it.
package rules

import "strings"

// MypyFallback is the sentinel code used for mypy messages that carry no
// bracketed error category.
const MypyFallback = "mypy-error"

type normalizer func(raw string) string

// The table is closed: adding a tool means adding an entry here, not
// reflecting over parser names at runtime.
var normalizers = map[string]normalizer{
	"flake8": prefixer("flake8"),
	"mypy":   normalizeMypy,
	"bandit": prefixer("bandit"),
	"eslint": prefixer("eslint"),
	"jest":   prefixer("jest"),
	"tsc":    prefixer("tsc"),
}

// Normalize maps a (tool, raw code) pair to its canonical "tool:code"
// identifier. It is pure and total: unrecognized tools still produce a
// deterministic "<tool>:<raw>" result.
func Normalize(tool, raw string) string {
	toolKey := strings.ToLower(strings.TrimSpace(tool))
	if toolKey == "" {
		return ":" + raw
	}
	if norm, ok := normalizers[toolKey]; ok {
		return norm(raw)
	}
	return toolKey + ":" + raw
}

func prefixer(tool string) normalizer {
	prefix := tool + ":"
	return func(raw string) string {
		if strings.HasPrefix(raw, prefix) {
			return raw
		}
		return prefix + raw
	}
}

// normalizeMypy extracts the error category from formats like
// "error[name-defined]". Bare messages keep their raw text; a bracketed
// category wins over surrounding text.
func normalizeMypy(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start != -1 && end > start {
		return "mypy:" + raw[start+1:end]
	}
	if strings.HasPrefix(raw, "mypy:") {
		return raw
	}
	return "mypy:" + raw
}
