package main

import "github.com/fwojciec/symdex/toml"

// Run executes the config command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	return toml.WriteConfig(deps.Stdout, deps.Config)
}
