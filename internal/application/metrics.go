package application

import "expvar"

// Counters published on /debug/vars.
var (
	signupsTotal      = expvar.NewInt("signups")
	loginsFailed      = expvar.NewInt("logins_failed")
	ordersFinalized   = expvar.NewInt("orders_finalized")
	invoicesGenerated = expvar.NewInt("invoices_generated")
)
