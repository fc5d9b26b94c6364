package main

import (
	"fmt"

	"github.com/Shravik17/Attendance-Tracker/core/user"
)

func (cli *commandLine) hashPassword(pwd string) error {
	var usr user.User
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, string(usr.PasswordHash))
	return nil
}
