package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/Shravik17/Attendance-Tracker/core/student"
)

func (cli *commandLine) addStudent(name string) error {
	st, ok, err := cli.studentSvc.Add(adminOperator, student.NewStudent{Name: name})
	if err != nil {
		return errors.Wrap(err, "adding student")
	}
	if !ok {
		return errors.New("student name is blank")
	}
	fmt.Fprintf(cli.out, "Added student %d: %s\n", st.ID, st.Name)
	return nil
}

func (cli *commandLine) importStudents(path string) error {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading import file")
	}
	added, err := cli.studentSvc.Import(adminOperator, filepath.Base(path), content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Imported %d students.\n", added)
	return nil
}
