package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Redirects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redirect_requests_total",
		Help: "Redirects served.",
	})
	RedirectMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "redirect_misses_total",
		Help: "Redirect lookups for unknown slugs.",
	})
	LinksCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "links_created_total",
		Help: "Redirect links created.",
	})
	LinksUpdated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "links_updated_total",
		Help: "Redirect links updated.",
	})
	LinksDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "links_deleted_total",
		Help: "Redirect links deleted.",
	})
	LoginFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "admin_login_failures_total",
		Help: "Failed admin login attempts.",
	})
	SlugExhaustion = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "slug_generation_exhausted_total",
		Help: "Random slug generation hit the retry bound.",
	})
)

func init() {
	prometheus.MustRegister(Redirects, RedirectMisses, LinksCreated, LinksUpdated, LinksDeleted, LoginFailures, SlugExhaustion)
}

func Handler(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}
