package dimension

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/omnifone/metrics-cloudwatch/log"
)

const (
	// UnknownInstanceID is sent while the instance id is unresolved.
	UnknownInstanceID = "unknown"

	instanceIDDimension = "InstanceId"
)

var (
	// instanceMetadataURL is the EC2 metadata endpoint returning the
	// plaintext instance id. Package-level so tests can point it at an
	// httptest server.
	instanceMetadataURL = "http://169.254.169.254/latest/meta-data/instance-id"

	// instanceIDRetryInterval is the cool-down between failed resolution
	// attempts.
	instanceIDRetryInterval = time.Minute
)

// InstanceID adds an InstanceId dimension resolved from the EC2 metadata
// service. Resolution is lazy: the first report cycle triggers it, and
// while it keeps failing it is retried at most once per cool-down window
// with the sentinel value "unknown" sent in the meantime. A successful
// resolution is permanent for the process lifetime.
//
// Supplying a fixed id up front (NewFixedInstanceID) short-circuits the
// lookup entirely.
type InstanceID struct {
	mu          sync.Mutex
	filter      Filter
	client      *http.Client
	now         func() time.Time
	id          string
	lastAttempt time.Time
	everFailed  bool
}

// NewInstanceID creates a provider that resolves the instance id from the
// metadata service. filter may be nil to match all metrics.
func NewInstanceID(filter Filter) *InstanceID {
	return &InstanceID{
		filter: filter,
		client: &http.Client{Timeout: 3 * time.Second},
		now:    time.Now,
	}
}

// NewFixedInstanceID creates a provider that always sends the given id.
func NewFixedInstanceID(id string, filter Filter) *InstanceID {
	p := NewInstanceID(filter)
	p.id = id
	return p
}

func (p *InstanceID) Dimensions(metricName string) []types.Dimension {
	if p.filter != nil && !p.filter(metricName) {
		return nil
	}
	return p.GlobalDimensions()
}

func (p *InstanceID) GlobalDimensions() []types.Dimension {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id == "" && p.now().Sub(p.lastAttempt) > instanceIDRetryInterval {
		p.fetch()
	}

	id := p.id
	if id == "" {
		id = UnknownInstanceID
	}
	return []types.Dimension{{
		Name:  aws.String(instanceIDDimension),
		Value: aws.String(id),
	}}
}

// fetch performs one bounded resolution attempt. Called with p.mu held.
func (p *InstanceID) fetch() {
	p.lastAttempt = p.now()

	id, err := p.fetchOnce()
	if err != nil {
		if !p.everFailed {
			log.Warn().Err(err).
				Msg("failed fetching the EC2 instance id; will retry every minute, reporting InstanceId 'unknown' until it succeeds. If running outside EC2, set a fixed instance id on the enabler")
		}
		p.everFailed = true
		return
	}

	p.id = id
	if p.everFailed {
		log.Warn().Str("instanceId", id).
			Msg("succeeded fetching the EC2 instance id after earlier failures; the InstanceId dimension is correct from now on")
	}
}

func (p *InstanceID) fetchOnce() (string, error) {
	resp, err := p.client.Get(instanceMetadataURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("metadata service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(string(body))
	if id == "" {
		return "", fmt.Errorf("metadata service returned an empty instance id")
	}
	return id, nil
}
