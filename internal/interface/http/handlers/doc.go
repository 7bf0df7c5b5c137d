// Package handlers holds the health checks and middleware shared by the
// course schedule HTTP server.
//
//	checker := handlers.NewChecker("v1")
//	checker.Required("postgres", handlers.NewPingCheck(conn))
//	checker.Optional("redis", handlers.NewPingCheck(cache))
//
//	h := handlers.Wrap(mux,
//	    handlers.StaticHeaders(handlers.ScheduleHeaders),
//	    handlers.LimitBody(1<<20, tooLarge),
//	)
//
// A failing optional check marks the status degraded but keeps it ready.
package handlers
