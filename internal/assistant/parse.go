package assistant

import (
	"strconv"
	"strings"

	"dockhand/pkg/engine"
)

// cleanToken strips the punctuation users attach to words in free text.
func cleanToken(tok string) string {
	return strings.Trim(tok, ".,!?:;\"'()")
}

// firstInt returns the first integer token in the question.
func firstInt(q string) (int, bool) {
	for _, tok := range strings.Fields(q) {
		if n, err := strconv.Atoi(cleanToken(tok)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// intAfterWord returns the first integer token following the literal word.
func intAfterWord(q, word string) (int, bool) {
	fields := strings.Fields(q)
	for i, tok := range fields {
		if cleanToken(tok) != word {
			continue
		}
		for _, rest := range fields[i+1:] {
			if n, err := strconv.Atoi(cleanToken(rest)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// parseCreateOptions extracts `from <image>`, `named <name>` and
// `on port <port>` from a create/run request. Every field may be absent.
func parseCreateOptions(q string) engine.CreateOptions {
	var opts engine.CreateOptions
	fields := strings.Fields(q)

	for i, tok := range fields {
		switch cleanToken(tok) {
		case "from":
			if i+1 < len(fields) {
				opts.Image = cleanToken(fields[i+1])
			}
		case "named":
			if i+1 < len(fields) {
				opts.Name = cleanToken(fields[i+1])
			}
		case "on":
			// "on port <n>" requires the literal "port" among the tokens
			// following "on".
			rest := fields[i+1:]
			for j, r := range rest {
				if cleanToken(r) != "port" {
					continue
				}
				for _, candidate := range rest[j+1:] {
					if n, err := strconv.Atoi(cleanToken(candidate)); err == nil {
						opts.Port = n
						break
					}
				}
				break
			}
		}
	}

	return opts
}

// containsAny reports whether the question contains any of the substrings.
func containsAny(q string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(q, sub) {
			return true
		}
	}
	return false
}

// findContainerByFragment resolves a name fragment to a container via
// case-insensitive substring match. First match wins.
func findContainerByFragment(containers []engine.ContainerInfo, fragment string) *engine.ContainerInfo {
	frag := strings.ToLower(fragment)
	if frag == "" {
		return nil
	}
	for i := range containers {
		if strings.Contains(strings.ToLower(containers[i].Name), frag) {
			return &containers[i]
		}
	}
	return nil
}

// findContainerInQuestion returns the first container whose name appears as
// a substring of the question.
func findContainerInQuestion(containers []engine.ContainerInfo, q string) *engine.ContainerInfo {
	for i := range containers {
		name := strings.ToLower(containers[i].Name)
		if name != "" && strings.Contains(q, name) {
			return &containers[i]
		}
	}
	return nil
}
