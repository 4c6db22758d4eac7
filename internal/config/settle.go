package config

import (
	"time"

	"github.com/hazyhaar/dashclone/dashboard"
	"github.com/hazyhaar/dashclone/dom"
	"github.com/hazyhaar/dashclone/settle"
)

// DashboardSettle builds the settle stages. Quiet mode observes doc, which
// should report structural events only (no periodic tick).
func (c SettleConfig) DashboardSettle(doc dom.Document) dashboard.Settle {
	stage := func(d time.Duration) settle.Func {
		switch c.Mode {
		case SettleNone:
			return settle.None()
		case SettleQuiet:
			if doc != nil {
				return settle.UntilQuiet(doc, c.Quiet, d*time.Duration(c.CeilingFactor))
			}
		}
		return settle.Fixed(d)
	}
	return dashboard.Settle{
		Boot:   stage(c.Boot),
		Toggle: stage(c.Toggle),
		Panel:  stage(c.Panel),
	}
}
