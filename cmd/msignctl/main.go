// The msignctl command provides a command-line interface for managing
// Mesophy signage screens, schedules, and remote commands.
package main

import "github.com/mesophy/mesophy-signage/internal/msignctl/cmd"

func main() {
	cmd.Execute()
}
