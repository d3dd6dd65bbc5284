package cmd

import (
	"github.com/spf13/cobra"

	"academy-scheduler/config"
	server2 "academy-scheduler/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start the scheduling worker and http server",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
