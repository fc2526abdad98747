/*
Copyright 2026 The Skaffold Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
)

type run struct {
	command string
	output  []byte
	env     []string
	err     error
	pipeOut bool
}

// FakeCmd replaces util.DefaultExecCommand with an expected sequence of runs.
type FakeCmd struct {
	t           *testing.T
	runs        []run
	timesCalled int
}

func newFakeCmd() *FakeCmd {
	return &FakeCmd{}
}

// ForTest binds the fake to t and checks that every expected run happened.
func (c *FakeCmd) ForTest(t *testing.T) {
	if c == nil {
		return
	}
	c.t = t
	t.Cleanup(func() {
		if left := len(c.runs); left > 0 {
			t.Errorf("expected %d more command(s) to run, next one is %q", left, c.runs[0].command)
		}
	})
}

func CmdRun(command string) *FakeCmd {
	return newFakeCmd().AndRun(command)
}

func CmdRunErr(command string, err error) *FakeCmd {
	return newFakeCmd().AndRunErr(command, err)
}

// CmdRunWithOutput expects a RunCmd that writes output to the command's stdout.
func CmdRunWithOutput(command, output string) *FakeCmd {
	return newFakeCmd().AndRunWithOutput(command, output)
}

func CmdRunOut(command, output string) *FakeCmd {
	return newFakeCmd().AndRunOut(command, output)
}

func CmdRunOutErr(command, output string, err error) *FakeCmd {
	return newFakeCmd().AndRunOutErr(command, output, err)
}

// CmdRunEnv expects a RunCmd whose environment contains every entry of env.
func CmdRunEnv(command string, env []string) *FakeCmd {
	return newFakeCmd().AndRunEnv(command, env)
}

func (c *FakeCmd) AndRun(command string) *FakeCmd {
	return c.addRun(run{command: command})
}

func (c *FakeCmd) AndRunErr(command string, err error) *FakeCmd {
	return c.addRun(run{command: command, err: err})
}

func (c *FakeCmd) AndRunWithOutput(command, output string) *FakeCmd {
	return c.addRun(run{command: command, output: []byte(output)})
}

func (c *FakeCmd) AndRunOut(command, output string) *FakeCmd {
	return c.addRun(run{command: command, output: []byte(output), pipeOut: true})
}

func (c *FakeCmd) AndRunOutErr(command, output string, err error) *FakeCmd {
	return c.addRun(run{command: command, output: []byte(output), err: err, pipeOut: true})
}

func (c *FakeCmd) AndRunEnv(command string, env []string) *FakeCmd {
	return c.addRun(run{command: command, env: env})
}

func (c *FakeCmd) addRun(r run) *FakeCmd {
	c.runs = append(c.runs, r)
	return c
}

func (c *FakeCmd) popRun() (*run, error) {
	if len(c.runs) == 0 {
		return nil, fmt.Errorf("no more commands expected, %d already ran", c.timesCalled)
	}

	r := c.runs[0]
	c.runs = c.runs[1:]
	c.timesCalled++
	return &r, nil
}

func (c *FakeCmd) next(cmd *exec.Cmd) (*run, error) {
	r, err := c.popRun()
	if err != nil {
		return nil, err
	}

	actual := strings.Join(cmd.Args, " ")
	if r.command != actual {
		return nil, fmt.Errorf("expected: %s. Got: %s", r.command, actual)
	}

	for _, expected := range r.env {
		if !contains(cmd.Env, expected) {
			return nil, fmt.Errorf("expected env of %q to contain %q. Got: %v", actual, expected, cmd.Env)
		}
	}
	return r, nil
}

// RunCmdOut implements util.Command.
func (c *FakeCmd) RunCmdOut(_ context.Context, cmd *exec.Cmd) ([]byte, error) {
	r, err := c.next(cmd)
	if err != nil {
		c.fatal(err)
		return nil, err
	}
	if !r.pipeOut {
		err := fmt.Errorf("expected RunCmd(%s) to be called. Got RunCmdOut", r.command)
		c.fatal(err)
		return nil, err
	}

	return r.output, r.err
}

// RunCmd implements util.Command.
func (c *FakeCmd) RunCmd(_ context.Context, cmd *exec.Cmd) error {
	r, err := c.next(cmd)
	if err != nil {
		c.fatal(err)
		return err
	}
	if r.pipeOut {
		err := fmt.Errorf("expected RunCmdOut(%s) to be called. Got RunCmd", r.command)
		c.fatal(err)
		return err
	}

	if r.output != nil && cmd.Stdout != nil {
		if _, err := cmd.Stdout.Write(r.output); err != nil {
			return err
		}
	}
	return r.err
}

func (c *FakeCmd) fatal(err error) {
	if c.t != nil {
		c.t.Error(err)
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
