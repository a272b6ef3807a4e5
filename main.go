package main

import "github.com/killallgit/persona-api/cmd"

// @title           Persona API
// @version         1.0.0
// @description     Ingests a creator's captioned videos and serves hybrid semantic and keyword search over them
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/persona-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
