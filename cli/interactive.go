package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// InteractiveContext is the interactive shell state: the set of known
// endpoint contexts and the one currently selected.
type InteractiveContext struct {
	access    *ServerAccess
	endpoints map[string]*CommandContext
	current   *CommandContext
}

// NewInteractiveContext creates an interactive shell bound to the api
// server.
func NewInteractiveContext(access *ServerAccess) *InteractiveContext {
	return &InteractiveContext{
		access:    access,
		endpoints: make(map[string]*CommandContext),
	}
}

// Prompt returns the shell prompt for the current endpoint.
func (ic *InteractiveContext) Prompt() string {
	if ic.current != nil {
		return ic.current.Name + "> "
	}
	return "> "
}

// Run reads commands until exit or end of input. Command failures are
// printed and the loop continues.
func (ic *InteractiveContext) Run(ctx context.Context, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, ic.Prompt())
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "exit" {
			return
		}
		if err := ic.ProcessSingleCommand(ctx, line); err != nil {
			PrintError("error processing command", err)
		}
	}
}

// ProcessSingleCommand dispatches one command line.
func (ic *InteractiveContext) ProcessSingleCommand(ctx context.Context, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "add":
		return ic.addEndpoint(ctx, args[1:])
	case "list":
		return ic.listEndpoints(ctx)
	case "switch":
		return ic.switchEndpoint(args[1:])
	case "get":
		return ic.get(ctx, args[1:])
	default:
		return errors.Errorf("unknown command %q", args[0])
	}
}

// addEndpoint registers a local endpoint and switches to it:
// add <name> <url> [-u user] [-p password]
func (ic *InteractiveContext) addEndpoint(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("add", pflag.ContinueOnError)
	user := fs.StringP("user", "u", "user", "the user name")
	password := fs.StringP("password", "p", "password", "the password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: add <name> <url> [-u user] [-p password]")
	}
	name, endpointURL := fs.Arg(0), fs.Arg(1)
	if _, ok := ic.endpoints[name]; ok {
		return errors.Errorf("endpoint %q already exists", name)
	}
	cmdCtx, err := NewLocalContext(ctx, name, endpointURL, *user, *password)
	if err != nil {
		return err
	}
	ic.endpoints[name] = cmdCtx
	ic.current = cmdCtx
	return nil
}

// listEndpoints prints the locally added endpoints and, when reachable,
// the endpoints configured on the server.
func (ic *InteractiveContext) listEndpoints(ctx context.Context) error {
	local := make(map[string]string, len(ic.endpoints))
	for name, c := range ic.endpoints {
		local[name] = c.URL
	}
	names := make([]string, 0, len(local))
	for name := range local {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s %s\n", name, local[name])
	}
	remote, err := ic.access.GetRemoteEndpoints(ctx)
	if err != nil {
		// server-side listing needs the admin grant; local output is
		// still useful on its own
		return nil
	}
	for _, ep := range remote {
		fmt.Printf("@%s %s\n", ep.Name, ep.URL)
	}
	return nil
}

// switchEndpoint changes the current context: switch <name|@name>
func (ic *InteractiveContext) switchEndpoint(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: switch <name|@name>")
	}
	target, err := ic.endpointContext(args[0])
	if err != nil {
		return err
	}
	ic.current = target
	return nil
}

// endpointContext resolves a name into a context. Remote names are
// created on first use.
func (ic *InteractiveContext) endpointContext(name string) (*CommandContext, error) {
	if strings.HasPrefix(name, "@") {
		if c, ok := ic.endpoints[name]; ok {
			return c, nil
		}
		c := NewRemoteContext(ic.access, strings.TrimPrefix(name, "@"))
		ic.endpoints[name] = c
		return c, nil
	}
	c, ok := ic.endpoints[name]
	if !ok {
		return nil, errors.Errorf("no such endpoint %q", name)
	}
	return c, nil
}

// get parses and runs a get command against the addressed or current
// endpoint.
func (ic *InteractiveContext) get(ctx context.Context, args []string) error {
	var opts getOptions
	fs := newGetFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: get [[@]endpoint/]type[/name] [-a attrs] [-o ops]")
	}
	target, err := parseGetPath(fs.Arg(0), func(name string) bool {
		_, ok := ic.endpoints[name]
		return ok
	})
	if err != nil {
		return err
	}

	cmdCtx := ic.current
	if target.Endpoint != "" {
		name := target.Endpoint
		if target.Remote {
			name = "@" + name
		}
		cmdCtx, err = ic.endpointContext(name)
		if err != nil {
			return err
		}
	}
	if cmdCtx == nil {
		return errors.New("there is no endpoint for command")
	}
	return cmdCtx.Get(ctx, target, opts)
}

// RunSingle executes one command line outside the interactive shell. The
// context argument is the pre-built endpoint context, or nil when the
// command itself must address a remote (@) endpoint. It returns the
// process exit code.
func RunSingle(ctx context.Context, access *ServerAccess, cmdCtx *CommandContext, line string) int {
	args := strings.Fields(line)
	if len(args) == 0 || args[0] != "get" {
		PrintError("unknown command", errors.Errorf("%q", line))
		return 1
	}
	var opts getOptions
	fs := newGetFlagSet(&opts)
	if err := fs.Parse(args[1:]); err != nil {
		PrintError("failed to parse get command", err)
		return 1
	}
	if fs.NArg() != 1 {
		PrintError("usage: get [[@]endpoint/]type[/name] [-a attrs] [-o ops]", nil)
		return 1
	}
	target, err := parseGetPath(fs.Arg(0), nil)
	if err != nil {
		PrintError("failed to parse get path", err)
		return 1
	}
	if target.Remote {
		cmdCtx = NewRemoteContext(access, target.Endpoint)
	}
	if cmdCtx == nil {
		PrintError("no endpoint specified", nil)
		return 1
	}
	if err := cmdCtx.Get(ctx, target, opts); err != nil {
		PrintError("failed to execute get command", err)
		return 1
	}
	return 0
}
