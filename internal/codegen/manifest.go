package codegen

import (
	"fmt"
	"sort"
	"strings"

	semver "github.com/Masterminds/semver/v3"
)

// CrateRelease is one published version of a crate known to the compiler.
type CrateRelease struct {
	Version  string
	Features []string
}

// CrateIndex lists known releases per crate package name.
type CrateIndex map[string][]CrateRelease

// DefaultCrates covers the crates generated code commonly depends on.
var DefaultCrates = CrateIndex{
	"wasm-bindgen": {{Version: "0.2.87"}, {Version: "0.2.92"}, {Version: "0.2.93"}},
	"serde":        {{Version: "1.0.188", Features: []string{"derive"}}, {Version: "1.0.210", Features: []string{"derive"}}},
	"serde_json":   {{Version: "1.0.107"}, {Version: "1.0.128"}},
	"tokio":        {{Version: "1.32.0", Features: []string{"full"}}, {Version: "1.40.0", Features: []string{"full"}}},
	"rand":         {{Version: "0.8.5"}},
	"regex":        {{Version: "1.10.6"}},
	"neon":         {{Version: "1.0.0"}},
	"pyo3":         {{Version: "0.20.3"}, {Version: "0.22.2"}},
}

// packageNames maps crate names as written in paths to package names.
var packageNames = map[string]string{
	"wasm_bindgen": "wasm-bindgen",
}

// PackageName returns the Cargo package name for a crate path root.
func PackageName(crate string) string {
	if p, ok := packageNames[crate]; ok {
		return p
	}
	return crate
}

// Dependency is one resolved [dependencies] entry.
type Dependency struct {
	Name     string
	Version  string
	Features []string
}

// ConstraintError reports a crate whose version requirement is invalid or
// cannot be satisfied by any known release.
type ConstraintError struct {
	Crate  string
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("crate %s: %s", e.Crate, e.Reason)
}

// ResolveDependencies picks a version for every crate. A crate listed in
// pinned must satisfy its constraint; the highest matching release from the
// index wins. Unknown crates use the pinned constraint verbatim or "*".
func ResolveDependencies(index CrateIndex, crates []string, pinned map[string]string) ([]Dependency, error) {
	seen := make(map[string]bool)
	var deps []Dependency
	for _, crate := range crates {
		name := PackageName(crate)
		if seen[name] {
			continue
		}
		seen[name] = true

		expr := strings.TrimSpace(pinned[name])
		if expr == "" {
			expr = strings.TrimSpace(pinned[crate])
		}
		var con *semver.Constraints
		if expr != "" {
			c, err := semver.NewConstraint(expr)
			if err != nil {
				return nil, &ConstraintError{Crate: name, Reason: fmt.Sprintf("invalid constraint %q: %v", expr, err)}
			}
			con = c
		}

		releases := index[name]
		if len(releases) == 0 {
			version := expr
			if version == "" {
				version = "*"
			}
			deps = append(deps, Dependency{Name: name, Version: version})
			continue
		}

		rel, err := highestMatching(releases, con)
		if err != nil {
			return nil, &ConstraintError{Crate: name, Reason: err.Error()}
		}
		deps = append(deps, Dependency{Name: name, Version: rel.Version, Features: rel.Features})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Name < deps[j].Name })
	return deps, nil
}

func highestMatching(releases []CrateRelease, con *semver.Constraints) (CrateRelease, error) {
	var best CrateRelease
	var bestVer *semver.Version
	for _, r := range releases {
		sv, err := semver.NewVersion(r.Version)
		if err != nil {
			return CrateRelease{}, fmt.Errorf("invalid release version %q: %w", r.Version, err)
		}
		if con != nil && !con.Check(sv) {
			continue
		}
		if bestVer == nil || sv.GreaterThan(bestVer) {
			best, bestVer = r, sv
		}
	}
	if bestVer == nil {
		return CrateRelease{}, fmt.Errorf("no known release satisfies %s", con)
	}
	return best, nil
}

// BinTarget is one [[bin]] entry.
type BinTarget struct {
	Name string
	Path string
}

// Manifest is a generated Cargo.toml.
type Manifest struct {
	Name    string
	Edition string
	CDyLib  bool
	// LibPath is the crate root of the library target, if any.
	LibPath      string
	Bins         []BinTarget
	Dependencies []Dependency
}

// Render produces the TOML text of the manifest.
func (m Manifest) Render() string {
	var b strings.Builder
	edition := m.Edition
	if edition == "" {
		edition = "2021"
	}
	b.WriteString("[package]\n")
	fmt.Fprintf(&b, "name = %q\n", m.Name)
	b.WriteString("version = \"0.1.0\"\n")
	fmt.Fprintf(&b, "edition = %q\n", edition)

	if m.CDyLib || m.LibPath != "" {
		b.WriteString("\n[lib]\n")
		if m.LibPath != "" {
			fmt.Fprintf(&b, "path = %q\n", m.LibPath)
		}
		if m.CDyLib {
			b.WriteString("crate-type = [\"cdylib\"]\n")
		}
	}

	for _, bin := range m.Bins {
		b.WriteString("\n[[bin]]\n")
		fmt.Fprintf(&b, "name = %q\n", bin.Name)
		fmt.Fprintf(&b, "path = %q\n", bin.Path)
	}

	b.WriteString("\n[dependencies]\n")
	for _, d := range m.Dependencies {
		if len(d.Features) == 0 {
			fmt.Fprintf(&b, "%s = %q\n", d.Name, d.Version)
			continue
		}
		quoted := make([]string, len(d.Features))
		for i, f := range d.Features {
			quoted[i] = fmt.Sprintf("%q", f)
		}
		fmt.Fprintf(&b, "%s = { version = %q, features = [%s] }\n", d.Name, d.Version, strings.Join(quoted, ", "))
	}

	if m.CDyLib {
		b.WriteString("\n[profile.release]\n")
		b.WriteString("opt-level = \"s\"\n")
		b.WriteString("lto = true\n")
	}
	return b.String()
}

// PackageIdent turns a file stem into a valid Cargo package or target name.
func PackageIdent(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "wj_" + s
	}
	return s
}
