package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

type interactiveCmd struct {
	execs multiFlag
	*root
	fs *flag.FlagSet

	in io.Reader
}

// multiFlag collects a repeated string flag.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, "; ") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

func (c *interactiveCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	c := &interactiveCmd{root: r, fs: fs, in: os.Stdin}
	fs.Usage = usageFunc(c)
	fs.Var(&c.execs, "e", "run this command line and exit (repeatable)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

// dispatch runs one command line through the root command. Global
// flags keep the values given when the session started.
func (c *interactiveCmd) dispatch(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false, nil
	}
	switch args[0] {
	case "exit", "quit":
		return true, nil
	case "interactive":
		return false, nil
	case "help":
		fmt.Fprint(c.root.stdout, (&UsageError{of: c.root}).Error())
		return false, nil
	}
	return false, c.root.Run(args)
}

func (c *interactiveCmd) Run() error {
	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.dispatch(line)
			if err != nil {
				return fmt.Errorf("%s: %w", line, err)
			}
			if done {
				break
			}
		}
		return nil
	}
	fmt.Fprintln(c.root.stdout, "Enter commands (type 'exit' to quit)")
	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.root.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := c.dispatch(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(c.root.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
