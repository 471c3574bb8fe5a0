package viewer

import (
	"fmt"
	"os/exec"
)

// Open hands url to the system's default viewer and returns without
// waiting for it to exit.
func Open(url string) error {
	name, args := openCommand(url)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
