package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in")
)

type commandLine struct {
	store *session.Store
	out   io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL          - log in; the password will be prompted next")
	fmt.Fprintln(cli.out, "  logout                      - log out and clear the saved session")
	fmt.Fprintln(cli.out, "  whoami                      - show the logged in account")
	fmt.Fprintln(cli.out, "  courses [-page N] [-size N] - list courses")
	fmt.Fprintln(cli.out, "  theme -set light|dark       - change the theme preference")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "login":
		loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
		email := loginCmd.String("email", "", "The account's email. The password will be prompted next.")
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(*email, string(pwd))

	case "logout":
		cli.store.Logout()
		fmt.Fprintln(cli.out, "logged out")
		return nil

	case "whoami":
		return cli.whoami()

	case "courses":
		coursesCmd := flag.NewFlagSet("courses", flag.ExitOnError)
		page := coursesCmd.Int("page", 1, "Page number.")
		size := coursesCmd.Int("size", 10, "Page size.")
		if err := coursesCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.courses(*page, *size)

	case "theme":
		themeCmd := flag.NewFlagSet("theme", flag.ExitOnError)
		theme := themeCmd.String("set", "", "The theme to switch to (light|dark).")
		if err := themeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *theme == "" {
			themeCmd.Usage()
			return errHelp
		}
		return cli.theme(*theme)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(email, pwd string) error {
	res := cli.store.Login(context.Background(), session.Credentials{Email: email, Password: pwd})
	fmt.Fprintf(cli.out, "%s: %s\n", res.Type, res.Message)
	if !res.Status {
		return errors.New(res.Message)
	}
	return nil
}

func (cli *commandLine) whoami() error {
	sess := cli.store.Current()
	if !sess.LoggedIn() || sess.User == nil {
		return errNotLoggedIn
	}
	fmt.Fprintf(cli.out, "%s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.Role)
	return nil
}

func (cli *commandLine) courses(page, size int) error {
	if !cli.store.LoggedIn() {
		return errNotLoggedIn
	}
	courses, total, err := cli.store.Client().Courses().Page(context.Background(), page, size, nil)
	if err != nil {
		return err
	}
	for _, course := range courses {
		fmt.Fprintf(cli.out, "%s  %s\n", course.ID, course.Title)
	}
	fmt.Fprintf(cli.out, "%d of %d courses\n", len(courses), total)
	return nil
}

func (cli *commandLine) theme(theme string) error {
	if ok := cli.store.ChangeTheme(context.Background(), theme); !ok {
		fmt.Fprintln(cli.out, "theme saved locally; server could not be notified")
		return nil
	}
	fmt.Fprintln(cli.out, "theme updated")
	return nil
}
