package reporting

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// DataPoint is one named, timestamped, unit-tagged measurement ready for
// export. Values are already clamped to the sendable domain.
type DataPoint struct {
	Name       string
	Timestamp  time.Time
	Value      float64
	Unit       types.StandardUnit
	Dimensions []types.Dimension
}

// datum converts the point to the wire representation.
func (p DataPoint) datum() types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(p.Name),
		Timestamp:  aws.Time(p.Timestamp),
		Value:      aws.Float64(p.Value),
		Unit:       p.Unit,
		Dimensions: p.Dimensions,
	}
}
