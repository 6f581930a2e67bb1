// Command dashboard arranges live panels on the layout grid: a request
// stream, a host load board, and an engine stats readout, with transient
// toasts overlaid. Tab cycles panel focus, arrows and vim keys navigate
// the focused panel, s toggles the stats readout, q quits.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/kungfusheep/sash"
)

type request struct {
	seq    int
	method string
	path   string
	status int
	dur    time.Duration
}

type hostRow struct {
	name string
	load float64
}

var (
	paths   = []string{"/api/users", "/api/orders", "/healthz", "/api/search", "/api/events", "/metrics"}
	methods = []string{"GET", "GET", "GET", "POST", "PUT"}
)

func main() {
	app, err := sash.NewApp()
	if err != nil {
		log.Fatal(err)
	}
	screen := app.Screen()
	theme := sash.ThemeDark

	requests := sash.NewCappedFeed[request](2000)
	hosts := sash.NewFeed[hostRow]()
	for i := 0; i < 16; i++ {
		hosts.Add(hostRow{name: fmt.Sprintf("node-%02d", i), load: rand.Float64()})
	}

	toasts := sash.NewToastQueue(4, 3*time.Second)
	stats := sash.NewStatsPanel(screen)

	reg := sash.NewPanelRegistry()
	reg.Register("requests", func(h sash.Host) (*sash.Window, error) {
		return sash.New(sash.Config{
			Host:       h,
			ItemHeight: 1,
			Count:      requests.Len,
			Render: func(n *sash.Node, i int) error {
				r := requests.At(i)
				style := theme.Base
				if r.status >= 500 {
					style = theme.Error
				} else if r.status >= 400 {
					style = theme.Warning
				}
				line := fmt.Sprintf(" %-4s %-14s %3d %6s", r.method, r.path, r.status, r.dur.Round(time.Millisecond))
				n.Buf.WriteStringFast(0, 0, line, style, n.Buf.Width())
				return nil
			},
		})
	})
	reg.Register("hosts", func(h sash.Host) (*sash.Window, error) {
		return sash.New(sash.Config{
			Host:       h,
			ItemHeight: 1,
			Count:      hosts.Len,
			Render: func(n *sash.Node, i int) error {
				row := hosts.At(i)
				width := n.Buf.Width()
				x := n.Buf.WriteStringFast(0, 0, " "+row.name+" ", theme.Base, width)
				bar := max(0, min(width-x-5, int(row.load*float64(width-x-5))))
				barStyle := sash.DefaultStyle().Foreground(sash.HeatColor(row.load))
				for b := 0; b < bar; b++ {
					n.Buf.Set(x+b, 0, sash.NewCell('█', barStyle))
				}
				pct := fmt.Sprintf("%3.0f%%", row.load*100)
				n.Buf.WriteStringFast(width-5, 0, pct, theme.Muted, 5)
				return nil
			},
		})
	})
	reg.Register("stats", stats.Builder())

	dash := sash.NewDashboard(screen, reg, sash.GridSpec{Columns: 12, Gap: 1}, 4).WithChrome(theme)
	size := app.Size()
	dash.Layout(size.Width, size.Height)
	if err := dash.AddTile("req", "requests", 8, 3); err != nil {
		log.Fatal(err)
	}
	if err := dash.AddTile("hosts", "hosts", 4, 3); err != nil {
		log.Fatal(err)
	}
	if err := dash.AddTile("stats", "stats", 12, 2); err != nil {
		log.Fatal(err)
	}
	stats.Watch("requests", dash.Window("req")).
		Watch("hosts", dash.Window("hosts"))

	for _, w := range dash.Windows() {
		app.Attach(w)
	}
	app.Focus(dash.Window("req"))

	toasts.OnChange(app.RequestFrame)
	app.WithVimKeys().
		BindRune('q', app.Stop).
		Bind(sash.Key{Code: sash.KeyTab}, func() {
			app.Focus(dash.WindowAfter(app.Focused()))
		}).
		BindRune('s', func() {
			if w := dash.Window("stats"); w != nil {
				if app.Focused() == w {
					app.Focus(dash.WindowAfter(w))
				}
				dash.RemoveTile("stats")
				app.Detach(w)
				return
			}
			if err := dash.AddTile("stats", "stats", 12, 2); err != nil {
				toasts.Push(sash.ToastError, "stats: "+err.Error())
				return
			}
			app.Attach(dash.Window("stats"))
		}).
		OnResize(dash.Layout).
		OnFrame(func() {
			buf := screen.Buffer()
			x := max(0, buf.Width()-42)
			if toasts.Render(buf, x, 1, 40, theme, time.Now()) > 0 {
				screen.Flush()
			}
		})

	// request stream
	go func() {
		seq := 0
		for range time.Tick(60 * time.Millisecond) {
			seq++
			r := request{
				seq:    seq,
				method: methods[rand.Intn(len(methods))],
				path:   paths[rand.Intn(len(paths))],
				status: 200,
				dur:    time.Duration(2+rand.Intn(200)) * time.Millisecond,
			}
			if rand.Intn(40) == 0 {
				r.status = 500
				toasts.Push(sash.ToastError, r.path+" returned 500")
			} else if rand.Intn(25) == 0 {
				r.status = 404
			}
			requests.Add(r)
		}
	}()

	// host load drift
	go func() {
		for range time.Tick(400 * time.Millisecond) {
			i := rand.Intn(hosts.Len())
			hosts.Update(i, func(h *hostRow) {
				h.load = min(1, max(0, h.load+rand.Float64()*0.3-0.15))
			})
		}
	}()

	// stats sampling and toast expiry
	go func() {
		for range time.Tick(500 * time.Millisecond) {
			stats.Sample()
			toasts.Prune(time.Now())
			app.RequestFrame()
		}
	}()

	requests.Drive(dash.Window("req"))
	hosts.Drive(dash.Window("hosts"))

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	dash.Unmount()
}
