package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	isAdmin(ctx context.Context) bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Lang(ctx context.Context, args []string) error
	Logout(ctx context.Context) error

	List(ctx context.Context, args []string) error
	Tree(ctx context.Context) error
	ChangeFolder(ctx context.Context, args []string) error
	MakeFolder(ctx context.Context, args []string) error
	RenameFolder(ctx context.Context, args []string) error
	RemoveFolder(ctx context.Context, args []string) error

	Upload(ctx context.Context, args []string) error
	Move(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	URL(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Usage(ctx context.Context) error
	Remote(ctx context.Context) error

	Users(ctx context.Context) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error
}

var errUsage = errors.New("wrong arguments")

const (
	helpGuest = "Available commands: signup, login, forgot, reset, lang, exit"
	helpUser  = "Available commands: ls [all], tree, cd <id|..|/>, mkdir <name>, rename <id> <name>, rmdir <id>, " +
		"upload <file...>, mv <photo> <folder|/>, rm <photo>, url <photo>, get <photo> [dest], usage, remote, lang, logout, exit"
	helpAdmin = "Admin commands: users, useradd, useredit <id>, userdel <id>"
)

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The first token of a line is the command and the rest are its arguments.
// Commands that need a session are refused until the user logs in, and the
// admin commands are refused for customers. Handler errors are printed and
// the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pv %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errUsage) {
				printlnFn("Usage:", usageOf(cmd))
				continue
			}
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		switch {
		case a.isAdmin(ctx):
			printlnFn(helpUser)
			printlnFn(helpAdmin)
		case a.isLoggedIn(ctx):
			printlnFn(helpUser)
		default:
			printlnFn(helpGuest)
		}
		return nil
	case "signup":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	case "forgot":
		return a.Forgot(ctx)
	case "reset":
		return a.Reset(ctx)
	case "lang":
		return a.Lang(ctx, args)
	}

	if !a.isLoggedIn(ctx) {
		if _, known := usage[cmd]; known {
			printlnFn("Please log in first")
		} else {
			printlnFn("Unknown command:", cmd)
		}
		return nil
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "ls", "l":
		return a.List(ctx, args)
	case "tree":
		return a.Tree(ctx)
	case "cd":
		return a.ChangeFolder(ctx, args)
	case "mkdir":
		return a.MakeFolder(ctx, args)
	case "rename":
		return a.RenameFolder(ctx, args)
	case "rmdir":
		return a.RemoveFolder(ctx, args)
	case "upload":
		return a.Upload(ctx, args)
	case "mv":
		return a.Move(ctx, args)
	case "rm":
		return a.Remove(ctx, args)
	case "url":
		return a.URL(ctx, args)
	case "get":
		return a.Download(ctx, args)
	case "usage":
		return a.Usage(ctx)
	case "remote":
		return a.Remote(ctx)
	}

	if _, admin := adminCommands[cmd]; admin {
		if !a.isAdmin(ctx) {
			printlnFn("Admin only:", cmd)
			return nil
		}
		switch cmd {
		case "users":
			return a.Users(ctx)
		case "useradd":
			return a.AddUser(ctx)
		case "useredit":
			return a.EditUser(ctx, args)
		case "userdel":
			return a.DeleteUser(ctx, args)
		}
	}

	printlnFn("Unknown command:", cmd)
	return nil
}

var adminCommands = map[string]struct{}{
	"users": {}, "useradd": {}, "useredit": {}, "userdel": {},
}

var usage = map[string]string{
	"logout":   "logout",
	"ls":       "ls [all]",
	"l":        "ls [all]",
	"tree":     "tree",
	"cd":       "cd <folder id|..|/>",
	"mkdir":    "mkdir <name>",
	"rename":   "rename <folder id> <name>",
	"rmdir":    "rmdir <folder id>",
	"upload":   "upload <file> [file...]",
	"mv":       "mv <photo id> <folder id|/>",
	"rm":       "rm <photo id>",
	"url":      "url <photo id>",
	"get":      "get <photo id> [dest]",
	"usage":    "usage",
	"remote":   "remote",
	"users":    "users",
	"useradd":  "useradd",
	"useredit": "useredit <user id>",
	"userdel":  "userdel <user id>",
}

func usageOf(cmd string) string {
	if u, ok := usage[cmd]; ok {
		return u
	}
	if cmd == "lang" {
		return "lang [pt-BR|en-US]"
	}
	return cmd
}
