// internal/page/page.go
//
// Page identities and the protected set.
//
// Context
// -------
// Every routed page carries a fixed Identity, declared where its handler is
// mounted and immutable for the life of the request.  The guard consults the
// protected set to decide whether an anonymous visitor may see the page or
// must authenticate first.  Paths keep the original site's flat ".html"
// naming so stored redirect targets stay stable across deployments.
package page

// Identity enumerates the portal's pages.
type Identity string

const (
	Index               Identity = "index"
	Dashboard           Identity = "dashboard"
	CropRecommend       Identity = "crop-recommend"
	FertilizerRecommend Identity = "fertilizer-recommend"
	DiseaseDetect       Identity = "disease-detect"
	Survey              Identity = "survey"
	Feedback            Identity = "feedback"
	Contact             Identity = "contact"
)

// protected is the fixed set of pages that require an authenticated session.
var protected = map[Identity]bool{
	Dashboard:           true,
	CropRecommend:       true,
	FertilizerRecommend: true,
	DiseaseDetect:       true,
	Survey:              true,
	Feedback:            true,
	Contact:             true,
}

// byPath maps request paths back to identities for middleware that only has
// the URL.
var byPath = map[string]Identity{
	"/":                          Index,
	"/index.html":                Index,
	"/dashboard.html":            Dashboard,
	"/crop-recommend.html":       CropRecommend,
	"/fertilizer-recommend.html": FertilizerRecommend,
	"/disease-detect.html":       DiseaseDetect,
	"/survey.html":               Survey,
	"/feedback.html":             Feedback,
	"/contact.html":              Contact,
}

// Protected reports whether the page requires authentication.
func (id Identity) Protected() bool { return protected[id] }

// Path returns the canonical request path for the page.
func (id Identity) Path() string {
	if id == Index {
		return "/index.html"
	}
	return "/" + string(id) + ".html"
}

// FromPath resolves a request path to a page Identity.  ok is false for
// non-page routes (APIs, assets, the auth endpoints).
func FromPath(path string) (Identity, bool) {
	id, ok := byPath[path]
	return id, ok
}
