package dimension

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Static attaches a fixed set of dimensions to every matching metric.
type Static struct {
	dims   []types.Dimension
	filter Filter
}

// NewStatic creates a provider with a single fixed dimension.
func NewStatic(name, value string) *Static {
	return NewStaticMap(map[string]string{name: value}, nil)
}

// NewStaticMap creates a provider from a name→value map, optionally
// restricted by filter. Dimensions are ordered by name for deterministic
// output.
func NewStaticMap(dims map[string]string, filter Filter) *Static {
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]types.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(dims[name]),
		})
	}
	return &Static{dims: out, filter: filter}
}

func (s *Static) Dimensions(metricName string) []types.Dimension {
	if s.filter != nil && !s.filter(metricName) {
		return nil
	}
	return s.dims
}

func (s *Static) GlobalDimensions() []types.Dimension {
	return s.dims
}
