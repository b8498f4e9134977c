package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/osa030/venuebox/internal/app/catalog"
	"github.com/osa030/venuebox/internal/app/filter"
	"github.com/osa030/venuebox/internal/app/jukebox"
	"github.com/osa030/venuebox/internal/app/payment"
	"github.com/osa030/venuebox/internal/domain/song"
	"github.com/osa030/venuebox/internal/domain/user"
	"github.com/osa030/venuebox/internal/infra/config"
	"github.com/osa030/venuebox/internal/infra/fixtures"
)

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func listSongs(fx *fixtures.Fixtures, query, genre string) error {
	store, err := catalog.New(fx.Songs)
	if err != nil {
		return err
	}
	printSongs(fx.Venue.Name+" catalog", store.Search(query, genre))
	return nil
}

func printSongs(title string, songs []song.Song) {
	t := newTable(title)
	t.AppendHeader(table.Row{"ID", "Title", "Artist", "Album", "Genre", "Year", "Length", "Price"})
	for _, s := range songs {
		t.AppendRow(table.Row{s.ID, s.Title, s.Artist, s.Album, s.Genre, s.ReleaseYear, formatDuration(s.Duration()), s.Price})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Songs", len(songs)})
	t.Render()
}

func printUsers(users []user.User) {
	t := newTable("Accounts")
	t.AppendHeader(table.Row{"ID", "Name", "Email", "Credits", "Role"})
	for _, u := range users {
		role := "patron"
		if u.IsAdmin {
			role = text.FgYellow.Sprint("admin")
		}
		t.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Credits, role})
	}
	t.Render()
}

func printFilters(cfg *config.Config) {
	t := newTable("Request filters")
	t.AppendHeader(table.Row{"Name", "Enabled", "Codes", "Description"})
	for _, name := range filter.Names() {
		factory, _ := filter.Lookup(name)
		f := factory(nil)
		enabled := text.FgHiBlack.Sprint("no")
		if cfg.IsFilterEnabled(name) {
			enabled = text.FgGreen.Sprint("yes")
		}
		t.AppendRow(table.Row{f.Name(), enabled, strings.Join(f.ReturnCodes(), ", "), f.Description()})
	}
	t.Render()
}

func printStatus(status jukebox.Status) {
	t := newTable(fmt.Sprintf("%s - %s", status.Venue.Name, status.State))
	t.AppendHeader(table.Row{"#", "Song", "Requested by", "Status"})
	if status.Song != nil && status.Current != nil {
		t.AppendRow(table.Row{
			text.FgGreen.Sprint("▶"),
			status.Song.Artist + " - " + status.Song.Title,
			status.Current.UserID,
			fmt.Sprintf("%s / %s", formatDuration(status.Elapsed), formatDuration(status.Song.Duration())),
		})
	}
	for i, entry := range status.Queue {
		title := text.FgHiBlack.Sprint("(removed from catalog)")
		if entry.Song != nil {
			title = entry.Song.Artist + " - " + entry.Song.Title
		}
		t.AppendRow(table.Row{i + 1, title, entry.Item.UserID, entry.Item.Status})
	}
	t.AppendFooter(table.Row{"", "", "Queued", formatDuration(status.QueuedDuration)})
	t.Render()
}

func printTransactions(name string, txs []payment.Transaction) {
	t := newTable("Transactions for " + name)
	t.AppendHeader(table.Row{"Time", "Kind", "Song", "Method", "Amount", "Status"})
	for _, tx := range txs {
		status := string(tx.Status)
		switch tx.Status {
		case payment.StatusCompleted:
			status = text.FgGreen.Sprint(status)
		case payment.StatusFailed:
			status = text.FgHiRed.Sprint(status)
		}
		t.AppendRow(table.Row{tx.Timestamp.Format(time.TimeOnly), tx.Kind, tx.SongID, tx.Method.Label(), tx.Amount, status})
	}
	t.Render()
}

func printDashboard(d jukebox.Dashboard) {
	t := newTable("Admin dashboard")
	t.AppendRows([]table.Row{
		{"Songs in catalog", d.SongCount},
		{"Waiting requests", d.QueueSize},
		{"Songs played", d.PlayedCount},
		{"Card and PayPal revenue", d.Revenue},
		{"Subscribers", d.Subscribers},
	})
	t.Render()
	printUsers(d.Users)
}

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
