package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewRouter는 에이전트의 HTTP 라우트를 구성합니다.
// /health는 헬스체크, /metrics는 Prometheus 메트릭입니다.
func NewRouter(handler *Handler, health http.Handler, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(Logger(logger))

	if health != nil {
		r.Method(http.MethodGet, "/health", health)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/interfaces", func(r chi.Router) {
			r.Get("/", handler.GetInterfaces)
			r.Route("/{name}", func(r chi.Router) {
				r.Put("/", handler.UpdateInterface)
				r.Get("/items", handler.GetInterfaceItems)
				r.Post("/enable", handler.EnableInterface)
				r.Post("/disable", handler.DisableInterface)
				r.Post("/dhcp-client", handler.ManageDhcpClient)
				r.Post("/dhcp-server", handler.ManageDhcpServer)
				r.Post("/dhcp-renew", handler.RenewDhcpLease)
				r.Get("/hotspots", handler.GetHotspots)
				r.Post("/verify", handler.VerifyCredentials)
				r.Get("/drivers", handler.GetDrivers)
			})
		})

		r.Route("/firewall", func(r chi.Router) {
			r.Get("/", handler.GetFirewall)
			r.Put("/open-ports", handler.SetOpenPorts)
			r.Put("/port-forwards", handler.SetPortForwards)
			r.Put("/nats", handler.SetNATs)
			r.Post("/manage", handler.ManageFirewall)
		})

		r.Post("/rollback/network", handler.RollbackNetwork)
		r.Post("/rollback/firewall", handler.RollbackFirewall)
	})

	return r
}
