package main

import "github.com/shiroyk/cookiejar/cmd"

func main() {
	cmd.Execute()
}
