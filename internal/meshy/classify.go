package meshy

import "strings"

// retryablePhrases are the provider messages seen for transient failures.
// The provider exposes no error codes, so matching is on free text.
var retryablePhrases = []string{
	"server is busy",
	"try again later",
	"rate limit",
	"temporarily",
	"timeout",
}

// IsRetryable reports whether a task failure message describes a transient
// provider condition.
func IsRetryable(message string) bool {
	m := strings.ToLower(message)
	for _, phrase := range retryablePhrases {
		if strings.Contains(m, phrase) {
			return true
		}
	}
	return false
}
