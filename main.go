package main

import "github.com/insightequity/alpha-api/cmd"

func main() {
	cmd.Execute()
}
