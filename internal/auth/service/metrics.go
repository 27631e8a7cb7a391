package service

import (
	"github.com/AlibekovAA/snapfeed/internal/observability/metrics"
)

func recordSignup(result string) {
	metrics.SignupsTotal.WithLabelValues(result).Inc()
}

func recordSignin(method, result string) {
	metrics.SigninsTotal.WithLabelValues(method, result).Inc()
}

func recordFederatedAccountCreated(provider string) {
	metrics.FederatedAccountsCreated.WithLabelValues(provider).Inc()
}

func incrementSessionTokensIssued() {
	metrics.SessionTokensIssued.Inc()
}
