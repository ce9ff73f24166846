package client

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"postboard/internal/models"
)

const bodyPreview = 48

// Heading is the form title for the current mode.
func (s State) Heading() string {
	if s.Editing() {
		return "Edit Post"
	}
	return "Create Post"
}

// SubmitLabel is the submit action label for the current mode.
func (s State) SubmitLabel() string {
	if s.Editing() {
		return "Update Post"
	}
	return "Add Post"
}

// Render draws the whole screen from s.
func Render(w io.Writer, s State) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "== %s ==\n", s.Heading())
	if s.Editing() {
		fmt.Fprintf(tw, "editing post #%d (cancel to stop)\n", *s.EditingID)
	}
	fmt.Fprintf(tw, "title:\t%s\n", s.Title)
	fmt.Fprintf(tw, "body:\t%s\n", s.Body)
	fmt.Fprintf(tw, "[submit] %s\n\n", s.SubmitLabel())

	if len(s.Posts) == 0 {
		fmt.Fprintln(tw, "no posts yet")
		return tw.Flush()
	}

	fmt.Fprintln(tw, "ID\tTITLE\tBODY")
	for _, p := range s.Posts {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, oneLine(p.Title, 0), oneLine(p.Body, bodyPreview))
	}
	return tw.Flush()
}

// RenderPost draws a single post with its full body.
func RenderPost(w io.Writer, p *models.Post) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "== Post #%d ==\n", p.ID)
	fmt.Fprintf(tw, "title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "created:\t%s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(tw, "updated:\t%s\n", p.UpdatedAt.Format(time.RFC3339))
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n\n", p.Body)
	return err
}

// oneLine flattens newlines and tabs and truncates to max runes when max > 0.
func oneLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && utf8.RuneCountInString(s) > max {
		r := []rune(s)
		return string(r[:max-1]) + "…"
	}
	return s
}
