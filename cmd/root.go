package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/shiroyk/cookiejar/api"
	"github.com/shiroyk/cookiejar/lib/config"
	"github.com/spf13/cobra"
)

var (
	apiAddressArg string
	apiTokenArg   string
	apiTimeoutArg time.Duration
	apiRequestLog bool
)

var rootCmd = &cobra.Command{
	Use:              "cookiejar",
	Short:            "cookiejar is a persistent cookie jar with an admin api service.",
	SilenceUsage:     true,
	PersistentPreRun: initConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		opt := config.FromContext(cmd.Context()).API
		if cmd.Flags().Changed("address") || opt.Address == "" {
			opt.Address = apiAddressArg
		}
		if cmd.Flags().Changed("timeout") || opt.Timeout == 0 {
			opt.Timeout = apiTimeoutArg
		}
		if cmd.Flags().Changed("request") {
			opt.RequestLog = apiRequestLog
		}
		if apiTokenArg != "" {
			opt.Token = apiTokenArg
		}
		if opt.Token == "" {
			bytes := make([]byte, 16)
			if _, err := rand.Read(bytes); err != nil {
				return err
			}
			opt.Token = hex.EncodeToString(bytes)
		}

		jar, closeJar, err := openJar(cmd.Context())
		if err != nil {
			return err
		}
		defer closeJar()

		cmd.Printf("Secret: %v\n", opt.Token)
		cmd.Printf("Service start http://%s\n", opt.Address)

		err = api.Server(jar, opt).ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.Flags().StringVarP(&apiAddressArg, "address", "a", api.DefaultAddress, "api service address")
	rootCmd.Flags().StringVarP(&apiTokenArg, "secret", "s", "", "api service secret")
	rootCmd.Flags().DurationVarP(&apiTimeoutArg, "timeout", "t", api.DefaultTimeout, "api service timeout")
	rootCmd.Flags().BoolVarP(&apiRequestLog, "request", "r", true, "api service request log output")
}
