// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"flag"
	"os"

	"halfmapper/mapperlib"
)

func main() {
	flag.Parse()
	os.Exit(mapperlib.Main())
}
