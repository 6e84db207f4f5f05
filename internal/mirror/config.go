package mirror

import "time"

// SinkConfig defines one mirror destination.
type SinkConfig struct {
	Type    string            `yaml:"type"    json:"type"`   // "webhook", "redis"
	URL     string            `yaml:"url"     json:"url"`    // webhook endpoint or redis://
	Format  string            `yaml:"format"  json:"format"` // webhook: "generic", "neo4j"
	Headers map[string]string `yaml:"headers" json:"headers"`
	Key     string            `yaml:"key"     json:"key"`     // redis: snapshot key
	Channel string            `yaml:"channel" json:"channel"` // redis: update channel
}

const (
	TypeWebhook = "webhook"
	TypeRedis   = "redis"

	FormatGeneric = "generic"
	FormatNeo4j   = "neo4j"

	DefaultRedisKey     = "ontoguard:graph"
	DefaultRedisChannel = "ontoguard:graph:updates"

	// notifyTimeout bounds one sink delivery including retries.
	notifyTimeout = 30 * time.Second
)

// Name identifies a sink in logs.
func (c SinkConfig) Name() string {
	if c.Type == "" {
		return TypeWebhook + ":" + c.URL
	}
	return c.Type + ":" + c.URL
}
