// internal/nav/presenter.go
//
// Navigation presenter.  Pure mapping from session state and current page
// to the header view: greeting text, which call-to-action shows, and where
// the primary button points.
//
// Context:
//   - Rendered on every page; must never block or fail.

package nav

import (
	"github.com/farmsathi/portal/internal/authgw"
	"github.com/farmsathi/portal/internal/page"
)

// View is what the header template consumes.
type View struct {
	Greeting     string // "Hello, <label>" when signed in, empty otherwise
	ShowSignOut  bool
	ShowGetStart bool
	PrimaryHref  string // target of the primary button
	CurrentPage  page.Identity
}

// Build derives the header view.  Unknown sessions render as anonymous so
// the page never stalls waiting on the identity provider.
func Build(sess authgw.Session, current page.Identity) View {
	v := View{CurrentPage: current}

	if sess.State == authgw.StateAuthenticated {
		if label := sess.Identity.Label(); label != "" {
			v.Greeting = "Hello, " + label
		}
		v.ShowSignOut = true
		v.PrimaryHref = page.Dashboard.Path()
		return v
	}

	v.ShowGetStart = true
	v.PrimaryHref = page.Dashboard.Path()
	return v
}
