package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/photovault/internal/common"
	"github.com/dmitrijs2005/photovault/internal/folders"
	"github.com/dmitrijs2005/photovault/internal/quota"
)

// ownFolder checks that folderID belongs to userID.
func (a *App) ownFolder(ctx context.Context, userID, folderID string) error {
	_, ok, err := a.folders.Find(ctx, userID, folderID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: folder %s", common.ErrNotFound, folderID)
	}
	return nil
}

// List prints the folders and photos of the current folder, or every photo
// of the user with "ls all".
func (a *App) List(ctx context.Context, args []string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	all := len(args) > 0 && args[0] == "all"
	if len(args) > 0 && !all {
		return errUsage
	}

	if !all {
		fs, err := a.folders.List(ctx, u.ID, a.folderID)
		if err != nil {
			return err
		}
		for _, f := range fs {
			fmt.Fprintf(a.out, "[dir]  %s  %s\n", f.ID, f.Name)
		}
	}

	photos, err := a.photos.List(ctx, u.ID, a.folderID, all)
	if err != nil {
		return err
	}
	for _, p := range photos {
		fmt.Fprintf(a.out, "[img]  %s  %s  %s\n", p.ID, p.Name, quota.FormatBytes(p.Size))
	}
	return nil
}

func (a *App) Tree(ctx context.Context) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	nodes, err := a.folders.Tree(ctx, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "/")
	a.printTree(nodes, 1)
	return nil
}

func (a *App) printTree(nodes []*folders.Node, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(a.out, "%s%s  (%s)\n", strings.Repeat("  ", depth), n.Folder.Name, n.Folder.ID)
		a.printTree(n.Children, depth+1)
	}
}

// ChangeFolder moves the current folder to a child id, to the parent with
// "..", or to the root with "/".
func (a *App) ChangeFolder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	switch args[0] {
	case "/":
		a.folderID = nil
	case "..":
		if a.folderID == nil {
			return nil
		}
		f, ok, err := a.folders.Find(ctx, u.ID, *a.folderID)
		if err != nil {
			return err
		}
		if !ok {
			a.folderID = nil
			return nil
		}
		a.folderID = f.ParentID
	default:
		if err := a.ownFolder(ctx, u.ID, args[0]); err != nil {
			return err
		}
		id := args[0]
		a.folderID = &id
	}
	return nil
}

// MakeFolder creates a folder inside the current one.
func (a *App) MakeFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	f, err := a.folders.Create(ctx, u.ID, strings.Join(args, " "), a.folderID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created folder %s (%s)\n", f.Name, f.ID)
	return nil
}

func (a *App) RenameFolder(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.ownFolder(ctx, u.ID, args[0]); err != nil {
		return err
	}
	outcome, err := a.folders.Rename(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if err := outcome.Err(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Renamed")
	return nil
}

// RemoveFolder deletes a folder with everything below it.
func (a *App) RemoveFolder(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.ownFolder(ctx, u.ID, args[0]); err != nil {
		return err
	}
	res, err := a.folders.Delete(ctx, args[0])
	if err != nil {
		return err
	}
	if err := res.Outcome.Err(); err != nil {
		return err
	}
	for _, f := range res.Folders {
		if a.folderID != nil && *a.folderID == f.ID {
			a.folderID = nil
		}
	}
	fmt.Fprintf(a.out, "Deleted %d folder(s) and %d photo(s)\n", len(res.Folders), len(res.Photos))
	return nil
}
