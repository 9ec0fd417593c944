package main

import "github.com/KaramelBytes/defectlens-cli/cmd"

func main() {
	cmd.Execute()
}
