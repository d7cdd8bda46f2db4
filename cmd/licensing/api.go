package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/surecart/licensing-sdk/pkg/apiserver"
)

func APICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "api",
		Short:        "Starts the local licensing API server",
		Long:         ``,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			lc, err := loadConfig()
			if err != nil {
				return err
			}

			if address := v.GetString("address"); address != "" {
				lc.API.Address = address
			}
			token := v.GetString("api-token")
			if token == "" {
				token = lc.API.Token
			}

			params := apiserver.APIServerParams{
				Context:          cmd.Context(),
				Config:           lc,
				Token:            token,
				DisableHeartbeat: v.GetBool("disable-heartbeat"),
			}
			if err := apiserver.Start(params); err != nil {
				return errors.Wrap(err, "failed to run api server")
			}

			return nil
		},
	}

	cmd.Flags().String("address", "", "address to listen on, overrides api.address of the config file")
	cmd.Flags().String("api-token", "", "token required in the authorization header")
	cmd.Flags().Bool("disable-heartbeat", false, "do not run periodic activation and update checks")

	return cmd
}
