// Package open hands files and URLs to the platform's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/lectern-cli/lectern/constant"
)

// Run opens input and waits for the handler to exit.
func Run(input string) error {
	cmd, err := command(input)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Start opens input without waiting.
func Start(input string) error {
	cmd, err := command(input)
	if err != nil {
		return err
	}
	return cmd.Start()
}

func command(input string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", input), nil
	case constant.Darwin:
		return exec.Command("open", input), nil
	case constant.Linux:
		return exec.Command("xdg-open", input), nil
	default:
		return nil, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
