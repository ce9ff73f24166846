package client

import (
	"bytes"
	"strings"
	"testing"

	"postboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, api PostsAPI, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader(strings.Join(script, "\n")+"\n"), &out)
	require.NoError(t, term.Run(NewApp(api, term.Confirm)))
	return out.String()
}

func TestTerminal_CreateFlow(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	out := runScript(t, api, "submit", "title Hello there", "body World", "submit", "quit")

	assert.Contains(t, out, "! Fill all fields")
	assert.Equal(t, []string{"list", "create", "list"}, api.calls)
	require.Len(t, api.posts, 1)
	assert.Equal(t, "Hello there", api.posts[0].Title)
}

func TestTerminal_EditCancel(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(models.Post{Title: "T", Body: "B"})
	out := runScript(t, api, "edit 1", "cancel", "edit 9", "quit")

	assert.Contains(t, out, "== Edit Post ==")
	assert.Contains(t, out, "no such post")
	assert.Equal(t, []string{"list"}, api.calls)
}

func TestTerminal_DeleteConfirmation(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(models.Post{Title: "T", Body: "B"})
	out := runScript(t, api, "delete 1", "n", "delete 1", "y")

	assert.Contains(t, out, "Delete this post? [y/N]")
	assert.Contains(t, out, "delete cancelled")
	assert.Equal(t, []string{"list", "delete", "list"}, api.calls)
	assert.Empty(t, api.posts)
}

func TestTerminal_BadInput(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	out := runScript(t, api, "frobnicate", "delete abc", "help", "exit")

	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, `invalid post id "abc"`)
	assert.Contains(t, out, "commands:")
}

func TestTerminal_PrintsFieldErrors(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.err = &APIError{
		Status:  422,
		Message: "The title field must not be greater than 255 characters.",
		Fields:  map[string][]string{"title": {"The title field must not be greater than 255 characters."}},
	}
	out := runScript(t, api, "title x", "body y", "submit")

	assert.Contains(t, out, "  title: The title field must not be greater than 255 characters.")
}

func TestTerminal_Show(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(models.Post{Title: "T", Body: "full body\nsecond line"})
	out := runScript(t, api, "show 1", "show 7", "quit")

	assert.Contains(t, out, "== Post #1 ==")
	assert.Contains(t, out, "full body\nsecond line")
	assert.Contains(t, out, "! post 7 not found")
	assert.Equal(t, []string{"list", "get", "get"}, api.calls)
}
