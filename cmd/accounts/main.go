// @title          Account Service API
// @version        1.0
// @description    User registration, login and e-mail password reset.
// @BasePath       /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "github.com/vavastapak/account-service/cmd/accounts/cmd"

func main() {
	cmd.Execute()
}
