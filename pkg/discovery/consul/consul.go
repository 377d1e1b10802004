package consul

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"topmovies/pkg/discovery"
	"topmovies/pkg/logging"

	consul "github.com/hashicorp/consul/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const tracerID = "discovery-consul"

const (
	ttl = 5 * time.Second
	// Instances failing their checks this long are dropped by the agent.
	deregisterAfter = time.Minute
)

// Registry defines a Consul-based service registry.
type Registry struct {
	client     *consul.Client
	logger     *zap.Logger
	healthPath string
	tags       []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithHTTPCheck makes Consul also probe path on every registered instance,
// next to the heartbeat TTL check.
func WithHTTPCheck(path string) Option {
	return func(r *Registry) {
		r.healthPath = path
	}
}

// WithTags attaches tags to every registered instance.
func WithTags(tags ...string) Option {
	return func(r *Registry) {
		r.tags = append(r.tags, tags...)
	}
}

// NewRegistry creates a new Consul-based service registry instance.
func NewRegistry(addr string, logger *zap.Logger, opts ...Option) (*Registry, error) {
	logger = logger.With(
		zap.String(logging.FieldComponent, "discovery"),
		zap.String(logging.FieldType, "consul"),
	)
	config := consul.DefaultConfig()
	config.Address = addr
	client, err := consul.NewClient(config)
	if err != nil {
		return nil, err
	}
	r := &Registry{client: client, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register creates a service record with a TTL check named after the
// instance, which ReportHealthyState keeps passing.
func (r *Registry) Register(ctx context.Context, instanceID string, serviceName string, hostPort string) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Register")
	defer span.End()
	span.SetAttributes(attribute.String("instance", instanceID), attribute.String("service", serviceName))

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return fmt.Errorf("hostPort must be in a form of <host>:<port>: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port in %q: %w", hostPort, err)
	}

	checks := consul.AgentServiceChecks{{
		CheckID:                        instanceID,
		TTL:                            ttl.String(),
		DeregisterCriticalServiceAfter: deregisterAfter.String(),
	}}
	if r.healthPath != "" {
		checks = append(checks, &consul.AgentServiceCheck{
			CheckID:  instanceID + ":http",
			HTTP:     "http://" + hostPort + r.healthPath,
			Method:   "GET",
			Interval: (2 * ttl).String(),
			Timeout:  ttl.String(),
		})
	}

	r.logger.Info("Registering service instance",
		zap.String("instance", instanceID),
		zap.String("address", hostPort),
		zap.Int("checks", len(checks)),
	)
	return r.client.Agent().ServiceRegister(&consul.AgentServiceRegistration{
		ID:      instanceID,
		Name:    serviceName,
		Address: host,
		Port:    port,
		Tags:    r.tags,
		Checks:  checks,
	})
}

// Deregister removes a service record from the registry.
func (r *Registry) Deregister(ctx context.Context, instanceID string, _ string) error {
	_, span := otel.Tracer(tracerID).Start(ctx, "Deregister")
	defer span.End()
	r.logger.Info("Deregistering service instance", zap.String("instance", instanceID))
	return r.client.Agent().ServiceDeregister(instanceID)
}

// ServiceAddresses returns the host:port of every passing instance.
func (r *Registry) ServiceAddresses(ctx context.Context, serviceName string) ([]string, error) {
	_, span := otel.Tracer(tracerID).Start(ctx, "ServiceAddresses")
	defer span.End()
	entries, _, err := r.client.Health().Service(serviceName, "", true, (&consul.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, discovery.ErrNotFound
	}
	res := make([]string, 0, len(entries))
	for _, e := range entries {
		res = append(res, net.JoinHostPort(e.Service.Address, strconv.Itoa(e.Service.Port)))
	}
	return res, nil
}

// ReportHealthyState passes the instance's TTL check.
func (r *Registry) ReportHealthyState(instanceID string, _ string) error {
	return r.client.Agent().PassTTL(instanceID, "")
}
