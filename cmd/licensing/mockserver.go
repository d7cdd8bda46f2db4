package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/mock"
)

func MockServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "mock-server",
		Short:        "Starts a fake licensing API for local development",
		Long:         ``,
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			server := mock.NewServer()

			if dataPath := v.GetString("mock-data"); dataPath != "" {
				data, err := os.ReadFile(dataPath)
				if err != nil {
					return errors.Wrap(err, "failed to read mock data")
				}
				md, err := mock.ParseMockData(data)
				if err != nil {
					return errors.Wrap(err, "failed to parse mock data")
				}
				server.Seed(*md)
			}

			srv := &http.Server{
				Handler:           server.Handler(),
				Addr:              v.GetString("mock-address"),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()

			logger.Infof("Starting mock licensing API on %s...", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "failed to serve")
			}
			return nil
		},
	}

	cmd.Flags().String("mock-address", ":3001", "address to listen on")
	cmd.Flags().String("mock-data", "", "path to a yaml file with licenses and releases")

	return cmd
}
