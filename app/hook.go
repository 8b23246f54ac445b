package app

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// shutdownServers drains the HTTP servers, appending failures to errs.
func (app *App) shutdownServers(errs *[]error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for name, srv := range map[string]*http.Server{"http": app.httpServer, "metrics": app.metricsServer} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil {
			*errs = append(*errs, fmt.Errorf("%s server: %w", name, err))
		}
	}
}
