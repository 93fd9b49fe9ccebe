package main

import (
	"go-deposit-api/app"
)

// @title           Go-Deposit API
// @version         1.0
// @description     Account signup, login and deposits to the designated account.

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @BasePath  /
func main() {
	app.Run()
}
