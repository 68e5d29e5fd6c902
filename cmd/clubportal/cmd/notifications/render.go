package notifications

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"

	"github.com/easymake/clubportal/cmd/clubportal/internal/notify"
)

// renderSnapshot prints the list in arrival order with the derived unread count.
func renderSnapshot(out io.Writer, snap notify.Snapshot) error {
	if snap.Loading {
		fmt.Fprintln(out, "Loading notifications...")
	}
	fmt.Fprintf(out, "%d unread of %d\n", snap.UnreadCount(), len(snap.Items))
	if len(snap.Items) == 0 {
		return nil
	}

	data := pterm.TableData{{"", "ID", "TITLE", "BODY", "LINK", "CREATED"}}
	for _, item := range snap.Items {
		marker := " "
		if !item.Read {
			marker = "●"
		}
		link := item.Link
		if link == "" {
			link = "-"
		}
		data = append(data, []string{
			marker,
			item.ID,
			item.Title,
			truncate(item.Body, 48),
			link,
			item.CreatedAt.Local().Format(time.DateTime),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, table)
	return err
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
