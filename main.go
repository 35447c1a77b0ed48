// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/realmake/cmd/realmake"

func main() {
	cmd.Execute()
}
