package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/Shravik17/Attendance-Tracker/core/attendance"
	"github.com/Shravik17/Attendance-Tracker/core/student"
	"github.com/Shravik17/Attendance-Tracker/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")

	// the operator acts with the role each command needs
	adminOperator   = user.Principal{Username: "cli", Role: user.RoleAdmin}
	facultyOperator = user.Principal{Username: "cli", Role: user.RoleFaculty}
)

type commandLine struct {
	out           io.Writer
	dataDir       string
	studentSvc    *student.Service
	attendanceSvc *attendance.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  addstudent -name NAME - add a student to the roster")
	fmt.Fprintln(cli.out, "  import -file FILE.csv - import students from a CSV file")
	fmt.Fprintln(cli.out, "  export -ids all|1,2,... [-from YYYY-MM-DD -to YYYY-MM-DD] [-format csv|xlsx] [-out FILE] - export the attendance report")
	fmt.Fprintln(cli.out, "  verify - check the data files for malformed rows")
	fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a password for the accounts config")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ContinueOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's name.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "Path of the CSV file to import.")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportFrom := exportCmd.String("from", "", "First day of the report (YYYY-MM-DD).")
	exportTo := exportCmd.String("to", "", "Last day of the report (YYYY-MM-DD).")
	exportIDs := exportCmd.String("ids", "", `Comma separated student ids, or "all".`)
	exportFormat := exportCmd.String("format", attendance.FormatCSV, "Report format: csv or xlsx.")
	exportOut := exportCmd.String("out", "", "Output file. Defaults to the generated report name.")

	verifyCmd := flag.NewFlagSet("verify", flag.ContinueOnError)
	hashPasswordCmd := flag.NewFlagSet("hashpassword", flag.ContinueOnError)

	for _, fs := range []*flag.FlagSet{addStudentCmd, importCmd, exportCmd, verifyCmd, hashPasswordCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addStudentName == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importStudents(*importFile)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *exportIDs == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportFrom, *exportTo, *exportIDs, *exportFormat, *exportOut)
	case "verify":
		if err := verifyCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.verify()
	case "hashpassword":
		if err := hashPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			hashPasswordCmd.Usage()
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
