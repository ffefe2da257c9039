package cli

import (
	"fmt"

	"github.com/fumishiki/polyscript/internal"
)

// Represents the 'polyscript version' command.
type VersionCmd struct{}

// Executes the version command.
func (c *VersionCmd) Run() error {
	fmt.Fprintln(stdout, internal.Build().String())
	return nil
}
