package cmd

import (
	"time"

	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack serviceMode)",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
	},
	&config.Service.Path: {
		Name:        "service-host-path",
		Description: "The path prefix to serve the API under",
		Short:       helpers.Ptr("P"),
	},
	&config.Service.Metrics.Path: {
		Name:        "service-metrics-path",
		Description: "The path serving prometheus metrics",
	},
}

var svcEnvMapBool = map[*bool]boundEnvVar[bool]{
	&config.Service.Metrics.Enabled: {
		Name:        "service-metrics",
		Description: "Expose prometheus metrics",
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations",
		Short:       helpers.Ptr("t"),
	},
}
