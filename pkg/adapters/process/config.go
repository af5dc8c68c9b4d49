// Package process plays media by spawning an external player per track.
package process

import (
	"errors"
	"fmt"
	"os/exec"
)

// Config describes the player command. The track path is appended as the
// last argument.
type Config struct {
	Command string            `yaml:"command" json:"command"`
	Args    []string          `yaml:"args" json:"args"`
	Env     map[string]string `yaml:"env" json:"env"`
	Dir     string            `yaml:"dir" json:"dir"`
}

// Validate checks the command is set and found on PATH.
func (c Config) Validate() error {
	if c.Command == "" {
		return errors.New("player command is required")
	}
	if _, err := exec.LookPath(c.Command); err != nil {
		return fmt.Errorf("player command %q: %w", c.Command, err)
	}
	return nil
}

func (c Config) command(source string) *exec.Cmd {
	args := append(append([]string{}, c.Args...), source)
	cmd := exec.Command(c.Command, args...)
	cmd.Dir = c.Dir

	env := []string{"TENDRIL_SOURCE=" + source}
	for k, v := range c.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)
	return cmd
}
