//go:build mage

// Package main contains Mage build targets for wp2tt developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "wp2tt"
	cmdPkg  = "./cmd/wp2tt"

	imageName = "wp2tt-soffice:latest"
	imageDir  = "build/soffice"
)

// Default runs when mage is invoked without a target.
var Default = All

// All runs the tests, then builds the binary.
func All() {
	mg.SerialDeps(Test, Build)
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	ldflags := "-X main.version=" + version
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Image builds the container image that converts legacy .doc/.rtf files.
func Image() error {
	rt := "docker"
	if _, err := sh.Output("docker", "info"); err != nil {
		rt = "podman"
	}
	return sh.RunV(rt, "build", "-t", imageName, imageDir)
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

// Sample files written by Init.
var initFiles = []struct {
	name    string
	content string
}{
	{"wp2tt.yaml", `# wp2tt settings. Flags and WP2TT_* environment variables override these.
mapping:
  style_map: styles.map
  rules: rules.yaml
  policy: passthrough        # or: fallback
  fallback:
    paragraph: ""
    character: ""
  ignore_styles:
    - annotation reference
  stop_marker: ""
  comments: false            # true turns comments into footnotes
output:
  encoding: UNICODE-MAC      # UNICODE-WIN, ASCII-WIN, ASCII-MAC
  rtl: auto                  # on, off
  maqaf: false
  vav: false
  debug_utf8: false
cache:
  enabled: true
  dir: .wp2tt
batch:
  workers: 4
container:
  image: ` + imageName + `
  runtime: ""                # docker or podman; empty tries both
`},
	{"styles.map", `# source style = Group/Sub/Destination | next = X | based-on = Y | variable = V | tags = T
[paragraph]
(unstyled) = NormalParagraphStyle
Heading 1 = Headings/Chapter | next = Body/First
Normal = Body/Text

[character]
Emphasis = Inline/Italic
`},
	{"rules.yaml", `rules:
  - name: first paragraph after a chapter heading
    when:
      - paragraph_style = Normal
      - preceding_style = Heading 1
    into: Body/First
`},
}

// Init writes a sample config, style map and rule file into the current
// directory, leaving existing files alone.
func Init() error {
	for _, f := range initFiles {
		if _, err := os.Stat(f.name); err == nil {
			fmt.Println("   exists ", f.name)
			continue
		}
		if err := os.WriteFile(f.name, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		fmt.Println("   wrote  ", f.name)
	}
	return nil
}
