package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Alioune4002/boutique-caisse/api/controllers"
	"github.com/Alioune4002/boutique-caisse/api/middleware"
	catalogsvc "github.com/Alioune4002/boutique-caisse/internal/catalog"
	checkoutsvc "github.com/Alioune4002/boutique-caisse/internal/checkout"
	reportingsvc "github.com/Alioune4002/boutique-caisse/internal/reporting"
	restocksvc "github.com/Alioune4002/boutique-caisse/internal/restock"
	"github.com/Alioune4002/boutique-caisse/pkg/config"
	"github.com/Alioune4002/boutique-caisse/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	catalogService catalogsvc.Service,
	checkoutService checkoutsvc.Service,
	restockService restocksvc.Service,
	reportingService reportingsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbPinger,
			"redis":    redisPinger,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(logg, cfg.Cart.SessionTTL))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(checkoutService, logg))
			r.Delete("/", controllers.CartClear(checkoutService, logg))
			r.Post("/lines", controllers.CartAddLine(checkoutService, logg))
			r.Post("/lines/{index}/remove", controllers.CartRemoveLine(checkoutService, logg))
			r.Post("/lines/{index}/discounts", controllers.CartApplyLineDiscount(checkoutService, logg))
			r.Post("/discounts", controllers.CartApplyGlobalDiscount(checkoutService, logg))
			r.Post("/pay", controllers.CartPay(checkoutService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogService, logg))
			r.Post("/", controllers.CreateProduct(catalogService, logg))
			r.Post("/import", controllers.ImportProducts(catalogService, logg))
			r.Get("/critical", controllers.CriticalProducts(restockService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(catalogService, logg))
			r.Post("/{productId}/restock", controllers.RestockProduct(restockService, logg))
			r.Get("/{productId}/restock", controllers.RestockHistory(restockService, logg))
		})

		r.Post("/restock/auto", controllers.AutoRestock(restockService, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", controllers.ReportSummary(reportingService, logg))
			r.Get("/export", controllers.ReportExport(reportingService, logg))
		})
	})

	return r
}
