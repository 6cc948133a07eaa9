package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"police_flow_app_go/db"
	"police_flow_app_go/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var createUserFlags struct {
	name       string
	email      string
	nationalID string
	phone      string
	roles      []string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user with one or more roles",
	Example: `  policectl create-user --name "Reza Karimi" --email captain@police.local --role Captain
  policectl create-user --name Judge --email judge@police.local --role Judge --role "Basic User"`,
	RunE: runCreateUser,
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&createUserFlags.name, "name", "", "Full name (required)")
	f.StringVar(&createUserFlags.email, "email", "", "Login email (required)")
	f.StringVar(&createUserFlags.nationalID, "national-id", "", "National id")
	f.StringVar(&createUserFlags.phone, "phone", "", "Phone number")
	f.StringArrayVar(&createUserFlags.roles, "role", nil, "Role to grant, repeatable")

	_ = createUserCmd.MarkFlagRequired("name")
	_ = createUserCmd.MarkFlagRequired("email")
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	password, err := readPassword(cmd.OutOrStdout(), cmd.InOrStdin())
	if err != nil {
		return err
	}
	if err := openDatabase(); err != nil {
		return err
	}

	user, err := services.CreateUserWithRoles(db.DB, services.NewUserInput{
		Name:        createUserFlags.name,
		Email:       createUserFlags.email,
		Password:    password,
		NationalID:  createUserFlags.nationalID,
		PhoneNumber: createUserFlags.phone,
		Roles:       createUserFlags.roles,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "User created")
	fmt.Fprintf(out, "  ID:    %s\n", user.ID)
	fmt.Fprintf(out, "  Email: %s\n", user.Email)
	fmt.Fprintf(out, "  Roles: %s\n", strings.Join(createUserFlags.roles, ", "))
	return nil
}

// readPassword prompts without echo on a terminal and reads one line otherwise
func readPassword(out io.Writer, in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(out, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
