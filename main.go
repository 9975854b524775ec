package main

import "github.com/seo-optimizer/seoscore/cmd"

func main() {
	cmd.Execute()
}
