package main

import "github.com/Mukhsinh/manajemenresiko-sub007/cli"

func main() {
	cli.Execute()
}
