package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/target/wardrobe/internal/adapters/password"
	"github.com/target/wardrobe/internal/data"
	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/domain/model"
	"github.com/target/wardrobe/internal/ports"
)

type createUserOptions struct {
	Email         string
	FirstName     string
	LastName      string
	Role          domainauth.Role
	PasswordStdin bool
}

func parseCreateUserFlags(args []string) (createUserOptions, error) {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts createUserOptions
	var role string
	fs.StringVar(&opts.Email, "email", "", "Account email (required)")
	fs.StringVar(&opts.FirstName, "first-name", "", "First name")
	fs.StringVar(&opts.LastName, "last-name", "", "Last name")
	fs.StringVar(&role, "role", string(domainauth.RoleUser), "Role: user or admin")
	fs.BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from the first line of stdin")

	if err := fs.Parse(args); err != nil {
		return createUserOptions{}, err
	}
	if strings.TrimSpace(opts.Email) == "" {
		return createUserOptions{}, errors.New("--email is required")
	}
	switch domainauth.Role(role) {
	case domainauth.RoleUser, domainauth.RoleAdmin:
		opts.Role = domainauth.Role(role)
	default:
		return createUserOptions{}, fmt.Errorf("--role must be user or admin, got %q", role)
	}
	if !opts.PasswordStdin {
		return createUserOptions{}, errors.New("--password-stdin is required; passwords are never taken from flags")
	}
	return opts, nil
}

func runCreateUser(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateUserFlags(args)
	if err != nil {
		return err
	}
	pw, err := readPassword(cmdCtx.Stdin)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, defaultCommandTimeout)
	defer cancel()

	return withDB(ctx, cmdCtx, func(ctx context.Context, db *sql.DB) error {
		u, err := createUser(ctx, data.NewUserRepo(db), password.BcryptHasher{}, opts, pw)
		if err != nil {
			return err
		}
		cmdCtx.Logger.InfoContext(ctx, "created user", "user_id", u.ID, "role", u.Role)
		return writef(cmdCtx.Stdout, "Created %s account %s (%s)\n", u.Role, u.Email, u.ID)
	})
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("read password: stdin was empty")
	}
	return line, nil
}

// createUser applies the registration rules and stores a local account with the given role.
func createUser(
	ctx context.Context,
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	opts createUserOptions,
	pw string,
) (*domainauth.User, error) {
	req := &model.RegisterRequest{
		Email:           opts.Email,
		Password:        pw,
		ConfirmPassword: pw,
		FirstName:       opts.FirstName,
		LastName:        opts.LastName,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := users.Create(ctx, ports.CreateUserInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		Provider:     domainauth.ProviderLocal,
		Role:         opts.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
