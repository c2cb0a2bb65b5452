// Package bench measures pybox service performance: it runs a set of
// scenarios against a server, times each submission from the client side,
// and compares against the server-reported duration to expose transport and
// queueing overhead.
package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one benchmark workload. Scenarios are grouped by category so
// a run can be narrowed with --categories.
type Scenario struct {
	Name        string            `yaml:"name"`
	Category    string            `yaml:"category"`
	Description string            `yaml:"description"`
	Files       map[string]string `yaml:"files"`
	Entrypoint  string            `yaml:"entrypoint"`
	// Requirements is requirements.txt content; implies network access.
	Requirements string `yaml:"requirements"`
	Stdin        string `yaml:"stdin"`
	// Async submits asynchronously and polls to completion instead of
	// using the sync endpoint.
	Async bool `yaml:"async"`
	// Slow marks scenarios skipped in quick mode.
	Slow bool `yaml:"slow"`
}

// Builtin returns the standard scenario set, mirroring the workloads the
// service is benchmarked with in production.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:        "basic_print",
			Category:    "basic",
			Description: "Single print statement",
			Files:       map[string]string{"main.py": "print('ok')\n"},
		},
		{
			Name:        "basic_loop",
			Category:    "basic",
			Description: "Tight arithmetic loop",
			Files:       map[string]string{"main.py": "total = sum(i * i for i in range(100_000))\nprint(total)\n"},
		},
		{
			Name:        "basic_stdin",
			Category:    "basic",
			Description: "Read and echo stdin",
			Files:       map[string]string{"main.py": "import sys\nprint(sys.stdin.read().upper())\n"},
			Stdin:       "hello bench\n",
		},
		{
			Name:        "multifile_import",
			Category:    "multifile",
			Description: "Entrypoint importing a sibling module",
			Files: map[string]string{
				"main.py":   "from helper import greet\ngreet()\n",
				"helper.py": "def greet():\n    print('hello from helper')\n",
			},
			Entrypoint: "main.py",
		},
		{
			Name:        "multifile_package",
			Category:    "multifile",
			Description: "Entrypoint importing from a package directory",
			Files: map[string]string{
				"main.py":           "from pkg.util import answer\nprint(answer())\n",
				"pkg/__init__.py":   "",
				"pkg/util.py":       "def answer():\n    return 42\n",
				"pkg/unused_big.py": "DATA = 'x' * 65536\n",
			},
			Entrypoint: "main.py",
		},
		{
			Name:        "limits_memory_heavy",
			Category:    "limits",
			Description: "Allocation-heavy workload under the default memory limit",
			Files:       map[string]string{"main.py": "buf = bytearray(64 * 1024 * 1024)\nprint(len(buf))\n"},
			Slow:        true,
		},
		{
			Name:        "async_roundtrip",
			Category:    "async",
			Description: "Async submission polled to completion",
			Files:       map[string]string{"main.py": "print('async ok')\n"},
			Async:       true,
		},
		{
			Name:        "async_sleep",
			Category:    "async",
			Description: "Async submission with a short sleep",
			Files:       map[string]string{"main.py": "import time\ntime.sleep(2)\nprint('done')\n"},
			Async:       true,
			Slow:        true,
		},
	}
}

// LoadFile reads extra scenarios from a YAML file (a list of scenarios).
func LoadFile(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenarios: %w", err)
	}

	var scenarios []Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("parsing scenarios: %w", err)
	}

	for i, sc := range scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario %d: name is required", i)
		}
		if len(sc.Files) == 0 {
			return nil, fmt.Errorf("scenario %q: files are required", sc.Name)
		}
		if scenarios[i].Category == "" {
			scenarios[i].Category = "custom"
		}
	}
	return scenarios, nil
}

// Filter keeps scenarios in the given categories; empty means all.
// skipSlow additionally drops scenarios marked slow.
func Filter(scenarios []Scenario, categories []string, skipSlow bool) []Scenario {
	wanted := map[string]bool{}
	for _, c := range categories {
		wanted[c] = true
	}

	var out []Scenario
	for _, sc := range scenarios {
		if len(wanted) > 0 && !wanted[sc.Category] {
			continue
		}
		if skipSlow && sc.Slow {
			continue
		}
		out = append(out, sc)
	}
	return out
}
