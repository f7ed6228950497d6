package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/gophtodo/internal/client/todo"
)

// ErrBadIndex is returned when a command argument is not a list position.
var ErrBadIndex = errors.New("bad todo number")

func (a *App) requireList() error {
	if !a.canUseList() {
		a.println("You must be signed in to use your todos. Type 'signin' first.")
		return ErrNotSignedIn
	}
	return nil
}

// index turns a 1-based position typed by the user into a list index.
func (a *App) index(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		a.println("Usage: expected a todo number, see 'list'")
		return 0, fmt.Errorf("%w: %q", ErrBadIndex, arg)
	}
	return n - 1, nil
}

// fail prints err in a user-friendly way and returns it.
func (a *App) fail(err error) error {
	switch {
	case errors.Is(err, todo.ErrEmptyTitle), errors.Is(err, todo.ErrEmptyEdit):
		a.println(err.Error())
	case errors.Is(err, todo.ErrIndexOutOfRange):
		a.println("No such todo, see 'list'")
	case errors.Is(err, todo.ErrNotEditing):
		a.println("Nothing is being edited. Use 'edit <n>' first.")
	default:
		a.println("error:", err)
	}
	return err
}

func (a *App) List(ctx context.Context) error {
	if err := a.requireList(); err != nil {
		return err
	}

	items := a.todos.Items()
	if len(items) == 0 {
		a.println("No todos yet. Use 'add <title>'.")
		return nil
	}

	editing, isEditing := a.todos.Editing()
	a.println("Your Todos:")
	for i, it := range items {
		mark := " "
		if it.Completed {
			mark = "x"
		}
		line := fmt.Sprintf("%3d. [%s] %s", i+1, mark, it.Title)
		if isEditing && i == editing {
			line += fmt.Sprintf("  (editing: %q)", a.todos.Buffer())
		}
		a.println(line)
	}
	return nil
}

func (a *App) Add(ctx context.Context, title string) error {
	if err := a.requireList(); err != nil {
		return err
	}
	if _, err := a.todos.Add(ctx, title); err != nil {
		return a.fail(err)
	}
	a.println("Todo added!")
	return nil
}

func (a *App) Remove(ctx context.Context, arg string) error {
	if err := a.requireList(); err != nil {
		return err
	}
	i, err := a.index(arg)
	if err != nil {
		return err
	}
	if err := a.todos.RemoveAt(ctx, i); err != nil {
		return a.fail(err)
	}
	a.println("Todo deleted!")
	return nil
}

// Edit enters edit mode for todo arg. With a title the edit is saved at once.
func (a *App) Edit(ctx context.Context, arg, title string) error {
	if err := a.requireList(); err != nil {
		return err
	}
	i, err := a.index(arg)
	if err != nil {
		return err
	}
	if err := a.todos.Edit(i); err != nil {
		return a.fail(err)
	}
	if title == "" {
		a.println(fmt.Sprintf("Editing %q. Type 'save <new title>' or 'cancel'.", a.todos.Buffer()))
		return nil
	}
	return a.Save(ctx, title)
}

// Save stores the edit buffer, replaced by title when one is given.
func (a *App) Save(ctx context.Context, title string) error {
	if err := a.requireList(); err != nil {
		return err
	}
	if title != "" {
		if err := a.todos.SetBuffer(title); err != nil {
			return a.fail(err)
		}
	}
	if _, err := a.todos.Save(ctx); err != nil {
		return a.fail(err)
	}
	a.println("Todo updated!")
	return nil
}

func (a *App) Cancel(ctx context.Context) error {
	a.todos.CancelEdit()
	return nil
}

func (a *App) Toggle(ctx context.Context, arg string) error {
	if err := a.requireList(); err != nil {
		return err
	}
	i, err := a.index(arg)
	if err != nil {
		return err
	}
	it, err := a.todos.Toggle(ctx, i)
	if err != nil {
		return a.fail(err)
	}
	if it.Completed {
		a.println("Todo completed!")
	} else {
		a.println("Todo reopened.")
	}
	return nil
}
