package discovery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Registry defines a service registry.
type Registry interface {
	// Register creates a service instance record in the registry.
	Register(ctx context.Context, instanceID string, serviceName string, hostPort string) error
	// Deregister removes a service instance record from the registry.
	Deregister(ctx context.Context, instanceID string, serviceName string) error
	// ServiceAddresses returns the list of addresses of active instances of the given service.
	ServiceAddresses(ctx context.Context, serviceName string) ([]string, error)
	// ReportHealthyState is a push mechanism for reporting healthy state to the registry.
	ReportHealthyState(instanceID string, serviceName string) error
}

// ErrNotFound is returned when no service addresses are found.
var ErrNotFound = errors.New("no service addresses found")

// GenerateInstanceID generates a unique service instance id.
func GenerateInstanceID(serviceName string) string {
	return serviceName + "-" + uuid.NewString()
}

// Heartbeat reports healthy state for the instance every interval until
// ctx is done. Failures are passed to onErr and do not stop the loop.
func Heartbeat(ctx context.Context, registry Registry, instanceID, serviceName string, interval time.Duration, onErr func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := registry.ReportHealthyState(instanceID, serviceName); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}
}
