// Command confradar authors conferences step by step and keeps their session
// placements free of room conflicts.
package main

import "confradar/internal/cli"

func main() {
	cli.Execute()
}
