package cli

import (
	"context"
	"fmt"
	"strings"
)

// getStatus renders the prompt status: the signed in user, the gateway mode
// and the current folder path.
func (a *App) getStatus(ctx context.Context) string {
	var parts []string

	u, ok, err := a.users.CurrentUser(ctx)
	if err == nil && ok {
		parts = append(parts, u.Email)
		if a.folderID != nil {
			path, err := a.folders.Path(ctx, u.ID, *a.folderID)
			if err == nil {
				names := make([]string, 0, len(path))
				for _, f := range path {
					names = append(names, f.Name)
				}
				parts = append(parts, "/"+strings.Join(names, "/"))
			}
		} else {
			parts = append(parts, "/")
		}
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to PhotoVault CLI (type 'help' for commands)")

	if u, ok, err := a.users.CurrentUser(ctx); err == nil && ok {
		printlnFn("Signed in as", u.Email)
	}

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}
