package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shiroyk/cookiejar/lib/utils"
	"github.com/spf13/cobra"
)

var (
	clearSessionArg bool
	getTimeoutArg   time.Duration
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies <url>",
	Short: "list the cookies sent to the url",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := parseURL(args[0])
		if err != nil {
			return err
		}
		jar, closeJar, err := openJar(cmd.Context())
		if err != nil {
			return err
		}
		defer closeJar()

		for _, c := range jar.LoadForRequest(u) {
			cmd.Println(c.String())
		}
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <url> <set-cookie>...",
	Short: "store the Set-Cookie values as a response from the url",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := parseURL(args[0])
		if err != nil {
			return err
		}
		cookies := utils.ParseSetCookie(args[1:]...)
		if len(cookies) == 0 {
			return fmt.Errorf("no valid Set-Cookie value")
		}
		jar, closeJar, err := openJar(cmd.Context())
		if err != nil {
			return err
		}
		defer closeJar()

		jar.SetCookies(u, cookies)
		cmd.Println(utils.CookieToString(jar.Cookies(u)))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "remove all cookies, or only the cookies not persisted with --session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jar, closeJar, err := openJar(cmd.Context())
		if err != nil {
			return err
		}
		defer closeJar()

		if clearSessionArg {
			jar.ClearSession()
			return nil
		}
		return jar.Clear()
	},
}

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "send a GET request with the jar and list the cookies stored afterwards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := parseURL(args[0])
		if err != nil {
			return err
		}
		jar, closeJar, err := openJar(cmd.Context())
		if err != nil {
			return err
		}
		defer closeJar()

		client := &http.Client{Jar: jar, Timeout: getTimeoutArg}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, u.String(), nil)
		if err != nil {
			return err
		}
		res, err := client.Do(req)
		if err != nil {
			return err
		}
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()

		cmd.Printf("%s %s\n", res.Proto, res.Status)
		for _, c := range jar.LoadForRequest(res.Request.URL) {
			cmd.Println(c.String())
		}
		return nil
	},
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("url %q is not absolute", raw)
	}
	return u, nil
}

func init() {
	clearCmd.Flags().BoolVar(&clearSessionArg, "session", false, "only drop the cookies not persisted")
	getCmd.Flags().DurationVarP(&getTimeoutArg, "timeout", "t", 30*time.Second, "request timeout")
	rootCmd.AddCommand(cookiesCmd, setCmd, clearCmd, getCmd)
}
