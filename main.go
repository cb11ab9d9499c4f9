// SPDX-License-Identifier: MPL-2.0

// Command samsynth generates an AWS SAM template and an esbuild
// configuration from a project's API resource tree.
package main

import cmd "github.com/backapirest/samsynth/cmd/samsynth"

func main() {
	cmd.Execute()
}
