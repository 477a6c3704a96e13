package dimension

import (
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/hashicorp/consul/api"

	"github.com/omnifone/metrics-cloudwatch/log"
)

var consulRetryInterval = time.Minute

// ConsulNode adds Node and Datacenter dimensions resolved from the local
// Consul agent. Resolution follows the same discipline as InstanceID:
// lazy, retried on a cool-down, sentinel values while unresolved, and
// permanent once it succeeds.
type ConsulNode struct {
	mu          sync.Mutex
	filter      Filter
	client      *api.Client
	now         func() time.Time
	node        string
	datacenter  string
	lastAttempt time.Time
	everFailed  bool
}

// NewConsulNode creates a provider reading node identity from the given
// Consul client. A nil client connects to the local agent with default
// settings. filter may be nil to match all metrics.
func NewConsulNode(client *api.Client, filter Filter) (*ConsulNode, error) {
	if client == nil {
		var err error
		client, err = api.NewClient(api.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("create consul client: %w", err)
		}
	}
	return &ConsulNode{
		filter: filter,
		client: client,
		now:    time.Now,
	}, nil
}

func (p *ConsulNode) Dimensions(metricName string) []types.Dimension {
	if p.filter != nil && !p.filter(metricName) {
		return nil
	}
	return p.GlobalDimensions()
}

func (p *ConsulNode) GlobalDimensions() []types.Dimension {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.node == "" && p.now().Sub(p.lastAttempt) > consulRetryInterval {
		p.fetch()
	}

	node, dc := p.node, p.datacenter
	if node == "" {
		node = UnknownInstanceID
	}
	if dc == "" {
		dc = UnknownInstanceID
	}
	return []types.Dimension{
		{Name: aws.String("Node"), Value: aws.String(node)},
		{Name: aws.String("Datacenter"), Value: aws.String(dc)},
	}
}

// fetch queries the agent's self endpoint once. Called with p.mu held.
func (p *ConsulNode) fetch() {
	p.lastAttempt = p.now()

	self, err := p.client.Agent().Self()
	if err != nil {
		if !p.everFailed {
			log.Warn().Err(err).
				Msg("failed reading node identity from the consul agent; will retry every minute, reporting Node 'unknown' until it succeeds")
		}
		p.everFailed = true
		return
	}

	cfg, ok := self["Config"]
	if !ok {
		if !p.everFailed {
			log.Warn().Msg("consul agent self response is missing its Config section")
		}
		p.everFailed = true
		return
	}

	if name, ok := cfg["NodeName"].(string); ok {
		p.node = name
	}
	if dc, ok := cfg["Datacenter"].(string); ok {
		p.datacenter = dc
	}
	if p.everFailed && p.node != "" {
		log.Warn().Str("node", p.node).
			Msg("succeeded reading consul node identity after earlier failures")
	}
}
