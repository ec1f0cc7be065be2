package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <route> [args...]",
	Short: "Query the application state, e.g. query tally 3",
	Long: `Routes: params, roles, population, oracle, seats, schema, incentives,
member <addr>, human <addr>, tally <id>, vote <tally> <addr>,
proposal <id>, rewards <addr>, balance <addr>, nonce <addr>.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := newClient(queryUrl)
		if err != nil {
			return err
		}
		path := "/" + strings.Join(args, "/")
		dat, err := queryApp(cmd.Context(), cli, path, nil)
		if err != nil {
			return err
		}
		var out bytes.Buffer
		if err = json.Indent(&out, dat, "", "  "); err != nil {
			return err
		}
		fmt.Println(out.String())
		return nil
	},
}

var queryUrl string

func init() {
	urlFlag(queryCmd, &queryUrl)
}
