package web

import (
	"context"
	"net/url"

	"github.com/hpungsan/serene/internal/session"
)

type intentKey struct{}

// intentSlot receives the Completed intent raised while a request is
// being served.
type intentSlot struct {
	done *session.Completed
}

func withIntentSlot(ctx context.Context) (context.Context, *intentSlot) {
	slot := &intentSlot{}
	return context.WithValue(ctx, intentKey{}, slot), slot
}

// Navigator returns the notifier the web host installs on its collector.
// It records the intent on the request context; the submit handler turns
// it into a redirect.
func Navigator() session.Notifier {
	return session.NotifierFunc(func(ctx context.Context, c session.Completed) {
		if slot, ok := ctx.Value(intentKey{}).(*intentSlot); ok {
			slot.done = &c
		}
	})
}

// resultsURL is where a submit lands: the results page with the requested
// section expanded.
func resultsURL(c *session.Completed) string {
	if c == nil || c.ExpandSection == "" {
		return "/results"
	}
	return "/results#" + url.PathEscape(c.ExpandSection)
}
