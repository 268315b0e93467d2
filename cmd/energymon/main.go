// Copyright © 2024 Mutker Telag <witty.text5011@fastmail.com>
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import "codeberg.org/mutker/energymon/cmd/energymon/cmd"

func main() {
	cmd.Execute()
}
