// Command logtail follows a simulated log stream with variable-height rows:
// long messages wrap, so the window runs in variable sizing mode. A sticky
// header stays pinned while the body scrolls. Press f to toggle follow, q
// to quit.
package main

import (
	"log"
	"math/rand"
	"strconv"
	"time"

	"github.com/kungfusheep/sash"
)

type entry struct {
	seq   int
	ts    time.Time
	level string
	msg   string
}

var messages = []string{
	"connection established",
	"request completed in 12ms",
	"retrying upstream call after timeout, attempt 2 of 5, backing off 400ms before the next dial",
	"cache miss for key session:81723, falling back to origin fetch which may take a while under load",
	"worker drained",
	"schema migration applied",
	"slow query detected: SELECT * FROM events WHERE tenant_id = $1 ORDER BY created_at DESC took 1.8s, consider adding an index on (tenant_id, created_at)",
}

var levels = []string{"INFO", "INFO", "INFO", "WARN", "ERROR"}

func levelStyle(level string) sash.Style {
	switch level {
	case "WARN":
		return sash.ThemeDark.Warning
	case "ERROR":
		return sash.ThemeDark.Error
	}
	return sash.ThemeDark.Muted
}

func main() {
	app, err := sash.NewApp()
	if err != nil {
		log.Fatal(err)
	}

	feed := sash.NewCappedFeed[entry](5000)
	size := app.Size()
	host := sash.NewScreenHost(app.Screen(), 0, 0, size.Width, size.Height)

	wrapWidth := func() int {
		return max(20, host.Width()-12)
	}

	win, err := sash.New(sash.Config{
		Host:  host,
		Count: feed.Len,
		ItemSize: func(i int) int {
			return 1 + len(feed.At(i).msg)/wrapWidth()
		},
		KeyOf: func(i int) string {
			return strconv.Itoa(feed.At(i).seq)
		},
		Render: func(n *sash.Node, i int) error {
			e := feed.At(i)
			ww := wrapWidth()
			n.Buf.WriteStringFast(0, 0, e.ts.Format("15:04:05"), sash.ThemeDark.Muted, 8)
			n.Buf.WriteStringFast(9, 0, e.level, levelStyle(e.level), 5)
			for row := 0; row*ww < len(e.msg); row++ {
				chunk := e.msg[row*ww : min(len(e.msg), (row+1)*ww)]
				n.Buf.WriteStringFast(11, row, chunk, sash.ThemeDark.Base, ww)
			}
			return nil
		},
		StickyHeader: true,
		RenderHeader: func(n *sash.Node) {
			n.Buf.WriteStringFast(0, 0, " logtail", sash.ThemeDark.Title, n.Buf.Width())
			hint := "f follow  j/k scroll  q quit "
			n.Buf.WriteStringFast(n.Buf.Width()-len(hint), 0, hint, sash.ThemeDark.Muted, len(hint))
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	win.Mount()
	app.Attach(win)

	follow := true
	stop := feed.DriveTail(win)
	app.WithVimKeys().
		BindRune('q', app.Stop).
		BindRune('f', func() {
			stop()
			follow = !follow
			if follow {
				stop = feed.DriveTail(win)
				win.ScrollToIndex(feed.Len()-1, sash.AlignEnd)
			} else {
				stop = feed.Drive(win)
			}
		}).
		OnResize(func(w, h int) {
			host.SetRect(0, 0, w, h)
			win.Resize(h)
			// wrap widths changed, re-measure everything
			win.Refresh()
		})

	go func() {
		seq := 0
		for range time.Tick(80 * time.Millisecond) {
			seq++
			feed.Add(entry{
				seq:   seq,
				ts:    time.Now(),
				level: levels[rand.Intn(len(levels))],
				msg:   messages[rand.Intn(len(messages))],
			})
		}
	}()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	win.Unmount()
}
