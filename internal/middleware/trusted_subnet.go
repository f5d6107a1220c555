package middleware

import (
	"net"
	"net/http"
)

const (
	realIPHeader              = "X-Real-IP"
	failedToParseCIDRMessage  = "failed to parse trusted subnet address"
	forbiddenUntrustedMessage = "forbidden"
)

// TrustedSubnet возвращает посредника, который пропускает только запросы из доверенной сети.
// Адрес клиента берется из заголовка X-Real-IP. Если сеть не задана, все запросы отклоняются.
func TrustedSubnet(subnet string) func(h http.Handler) http.Handler {
	var (
		ipNet    *net.IPNet
		parseErr error
	)
	if subnet != "" {
		_, ipNet, parseErr = net.ParseCIDR(subnet)
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if parseErr != nil {
				http.Error(w, failedToParseCIDRMessage, http.StatusInternalServerError)
				return
			}

			if ipNet == nil {
				http.Error(w, forbiddenUntrustedMessage, http.StatusForbidden)
				return
			}

			ip := net.ParseIP(r.Header.Get(realIPHeader))
			if ip == nil || !ipNet.Contains(ip) {
				http.Error(w, forbiddenUntrustedMessage, http.StatusForbidden)
				return
			}

			h.ServeHTTP(w, r)
		})
	}
}
