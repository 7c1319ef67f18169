package state

import (
	"net/netip"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

func TestLinkHealthSerialization(t *testing.T) {
	maxFailures := 3
	pingDelay := 10 * time.Second
	httpDelay := 5 * time.Second

	tests := []struct {
		name    string
		wrapper LinkHealthWrapper
		yamlStr string
	}{
		{
			name: "StaticLinkHealth",
			wrapper: LinkHealthWrapper{
				LinkHealth: &StaticLinkHealth{
					Neighbour: "node-2",
					IfName:    "eth0",
					Metric:    100,
				},
			},
			yamlStr: `type: static
neighbour: node-2
if_name: eth0
metric: 100
`,
		},
		{
			name: "PingLinkHealth",
			wrapper: LinkHealthWrapper{
				LinkHealth: &PingLinkHealth{
					Neighbour:   "node-2",
					IfName:      "eth1",
					Addr:        netip.MustParseAddr("8.8.8.8"),
					MaxFailures: &maxFailures,
					Delay:       &pingDelay,
				},
			},
			yamlStr: `type: ping
neighbour: node-2
if_name: eth1
addr: 8.8.8.8
max_failures: 3
delay: 10s
`,
		},
		{
			name: "HTTPLinkHealth",
			wrapper: LinkHealthWrapper{
				LinkHealth: &HTTPLinkHealth{
					Neighbour: "node-3",
					IfName:    "wg0",
					URL:       "http://example.com/health",
					Delay:     &httpDelay,
				},
			},
			yamlStr: `type: http
neighbour: node-3
if_name: wg0
url: http://example.com/health
delay: 5s
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name+" Marshal", func(t *testing.T) {
			data, err := yaml.Marshal(&tt.wrapper)
			assert.NoError(t, err)
			assert.YAMLEq(t, tt.yamlStr, string(data))
		})

		t.Run(tt.name+" Unmarshal", func(t *testing.T) {
			var wrapper LinkHealthWrapper
			err := yaml.Unmarshal([]byte(tt.yamlStr), &wrapper)
			assert.NoError(t, err)
			assert.NotNil(t, wrapper.LinkHealth)
			assert.Equal(t, tt.wrapper.GetNeighbour(), wrapper.GetNeighbour())
			assert.Equal(t, tt.wrapper.GetIfName(), wrapper.GetIfName())
		})

		t.Run(tt.name+" RoundTrip", func(t *testing.T) {
			data, err := yaml.Marshal(&tt.wrapper)
			assert.NoError(t, err)

			var wrapper LinkHealthWrapper
			err = yaml.Unmarshal(data, &wrapper)
			assert.NoError(t, err)

			assert.Equal(t, tt.wrapper.GetNeighbour(), wrapper.GetNeighbour())
			assert.Equal(t, tt.wrapper.GetIfName(), wrapper.GetIfName())

			switch orig := tt.wrapper.LinkHealth.(type) {
			case *StaticLinkHealth:
				result, ok := wrapper.LinkHealth.(*StaticLinkHealth)
				assert.True(t, ok)
				assert.Equal(t, orig.Metric, result.Metric)
			case *PingLinkHealth:
				result, ok := wrapper.LinkHealth.(*PingLinkHealth)
				assert.True(t, ok)
				assert.Equal(t, orig.Addr, result.Addr)
				assert.Equal(t, orig.MaxFailures, result.MaxFailures)
				assert.Equal(t, orig.Delay, result.Delay)
			case *HTTPLinkHealth:
				result, ok := wrapper.LinkHealth.(*HTTPLinkHealth)
				assert.True(t, ok)
				assert.Equal(t, orig.URL, result.URL)
				assert.Equal(t, orig.Delay, result.Delay)
			}
		})
	}
}

func TestLinkHealthUnknownType(t *testing.T) {
	var wrapper LinkHealthWrapper
	err := yaml.Unmarshal([]byte("type: carrier-pigeon\nneighbour: node-2\n"), &wrapper)
	assert.NoError(t, err)
	assert.Nil(t, wrapper.LinkHealth)
}

func TestStaticLinkHealthMetric(t *testing.T) {
	s := &StaticLinkHealth{Neighbour: "node-2", IfName: "eth0"}
	// an unset metric still advertises a usable link
	assert.Equal(t, uint64(1), s.GetMetric())
	s.Metric = 77
	assert.Equal(t, uint64(77), s.GetMetric())
}
