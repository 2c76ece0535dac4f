package rust

import (
	"bufio"
	"strings"
)

var builtinCrates = map[string]bool{
	"std":   true,
	"core":  true,
	"alloc": true,
	"crate": true,
	"self":  true,
	"super": true,
}

// ExternalCrates scans generated source for `use name::...` lines and
// returns the external crate names in order of first appearance
func ExternalCrates(src string) []string {
	var crates []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(strings.NewReader(src))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimPrefix(line, "pub ")
		if !strings.HasPrefix(line, "use ") {
			continue
		}
		path := strings.TrimSpace(strings.TrimPrefix(line, "use "))
		path = strings.TrimPrefix(path, "::")
		i := strings.Index(path, "::")
		if i <= 0 {
			continue
		}
		name := path[:i]
		if builtinCrates[name] || seen[name] {
			continue
		}
		seen[name] = true
		crates = append(crates, name)
	}
	return crates
}
