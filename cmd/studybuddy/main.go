package main

import "github.com/PabloGalante/studybuddy/cmd/studybuddy/commands"

func main() {
	commands.Execute()
}
