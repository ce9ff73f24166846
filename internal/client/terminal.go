package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const helpText = `commands:
  list            refetch posts
  title <text>    set the title input
  body <text>     set the body input
  submit          add the post, or update the one being edited
  show <id>       print a post in full
  edit <id>       load a post into the form
  cancel          leave edit mode
  delete <id>     delete a post
  help            show this help
  quit            exit`

// Terminal is a line-oriented front end for App.
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

// Confirm prints prompt and reads a y/N answer from the same input.
func (t *Terminal) Confirm(prompt string) bool {
	fmt.Fprintf(t.out, "%s [y/N] ", prompt)
	if !t.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(t.in.Text()))
	return answer == "y" || answer == "yes"
}

// Run loads the list, then executes commands until quit or end of input,
// re-rendering after each one. Command failures are printed and the loop
// continues.
func (t *Terminal) Run(app *App) error {
	if err := app.Load(); err != nil {
		t.alert(err)
	}
	if err := Render(t.out, app.State()); err != nil {
		return err
	}

	for {
		fmt.Fprint(t.out, "> ")
		if !t.in.Scan() {
			fmt.Fprintln(t.out)
			return t.in.Err()
		}
		line := strings.TrimSpace(t.in.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprintln(t.out, helpText)
			continue
		default:
			if err := t.dispatch(app, strings.ToLower(cmd), arg); err != nil {
				t.alert(err)
			}
		}

		if err := Render(t.out, app.State()); err != nil {
			return err
		}
	}
}

func (t *Terminal) dispatch(app *App, cmd, arg string) error {
	switch cmd {
	case "list":
		return app.Load()
	case "title":
		app.SetTitle(arg)
	case "body":
		app.SetBody(arg)
	case "submit":
		return app.Submit()
	case "cancel":
		app.Cancel()
	case "show":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		post, err := app.Show(id)
		if IsNotFound(err) {
			return fmt.Errorf("post %d not found", id)
		}
		if err != nil {
			return err
		}
		return RenderPost(t.out, post)
	case "edit":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		return app.Edit(id)
	case "delete":
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		sent, err := app.Delete(id)
		if err == nil && !sent {
			fmt.Fprintln(t.out, "delete cancelled")
		}
		return err
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (t *Terminal) alert(err error) {
	if errors.Is(err, ErrEmptyFields) {
		fmt.Fprintf(t.out, "! %s\n", ErrEmptyFields)
		return
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		fmt.Fprintf(t.out, "! %s\n", apiErr.Message)
		for field, msgs := range apiErr.Fields {
			for _, m := range msgs {
				fmt.Fprintf(t.out, "  %s: %s\n", field, m)
			}
		}
		return
	}
	fmt.Fprintf(t.out, "! %v\n", err)
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid post id %q", arg)
	}
	return uint(id), nil
}
