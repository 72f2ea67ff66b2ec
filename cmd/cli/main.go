package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/pflag"

	"github.com/gaohoward/activemq-artemis-jolokia-api-server/cli"
)

func main() {
	url := pflag.StringP("url", "l", "https://localhost:9443", "the url of the api server")
	interactive := pflag.BoolP("interactive", "i", false, "run in interactive mode")
	endpoint := pflag.StringP("endpoint", "e", "", "target jolokia endpoint url")
	user := pflag.StringP("user", "u", "", "user name to log in to the api server; with --endpoint it is the broker credential for the direct connection")
	password := pflag.StringP("password", "p", "", "password for --user")
	pflag.Parse()

	os.Exit(run(*url, *endpoint, *user, *password, *interactive, pflag.Args()))
}

func run(apiServerURL, endpointURL, user, password string, interactive bool, args []string) int {
	ctx := context.Background()
	access := cli.NewServerAccess(apiServerURL)

	if !access.CheckAPIServer(ctx) {
		cli.PrintError("the api server is not available: "+apiServerURL, nil)
		return 1
	}

	if user == "" {
		user = os.Getenv("SERVER_USER_NAME")
		password = os.Getenv("SERVER_PASSWORD")
	}
	if user != "" {
		if password == "" {
			cli.PrintError("no password", nil)
			return 1
		}
		if err := access.LoginServer(ctx, user, password); err != nil {
			cli.PrintError("failed to login server", err)
			return 1
		}
	}

	if interactive {
		figure.NewFigure("Api Server Cli", "", true).Print()
		fmt.Println()
		cli.NewInteractiveContext(access).Run(ctx, os.Stdin, os.Stdout)
		return 0
	}

	var cmdCtx *cli.CommandContext
	if endpointURL != "" {
		// direct mode: authenticate straight against the broker bridge,
		// no api server round trip for the commands themselves
		var err error
		cmdCtx, err = cli.NewLocalContext(ctx, "current", endpointURL, user, password)
		if err != nil {
			cli.PrintError("failed login", err)
			return 1
		}
	}
	return cli.RunSingle(ctx, access, cmdCtx, strings.Join(args, " "))
}
