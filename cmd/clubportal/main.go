package main

import "github.com/easymake/clubportal/cmd/clubportal/cmd"

func main() {
	cmd.Execute()
}
