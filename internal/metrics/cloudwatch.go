package metrics

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"bookfeed/config"
	"bookfeed/logger"
)

type cloudWatchState struct {
	client    *cloudwatch.Client
	namespace string
}

var cwState atomic.Pointer[cloudWatchState]

func init() {
	cwState.Store(&cloudWatchState{namespace: "Bookfeed"})
}

// InitCloudWatch builds the CloudWatch client from the default AWS credential
// chain. When the configuration cannot be loaded it logs a warning and leaves
// publishing disabled; the recorder keeps counting either way.
func InitCloudWatch(cfg config.CloudWatchConfig) {
	log := logger.GetLogger().WithComponent("cloudwatch")
	if !cfg.Enabled {
		return
	}

	ctx := context.Background()
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS configuration; CloudWatch metrics disabled")
		return
	}

	state := cloudWatchState{client: cloudwatch.NewFromConfig(awsCfg), namespace: "Bookfeed"}
	if cfg.Namespace != "" {
		state.namespace = cfg.Namespace
	}
	cwState.Store(&state)

	log.WithFields(logger.Fields{"region": awsCfg.Region, "namespace": state.namespace}).
		Info("initialized CloudWatch client")
}

// Publish pushes the recorder's current stats as one datum batch. A nil client
// (publishing disabled) is a no-op.
func Publish(ctx context.Context, r *Recorder) {
	state := cwState.Load()
	if state == nil || state.client == nil {
		return
	}

	stats := r.Snapshot()
	data := make([]cwtypes.MetricDatum, 0, len(stats)*3)
	for _, st := range stats {
		dims := []cwtypes.Dimension{
			{Name: aws.String("exchange"), Value: aws.String(st.Exchange)},
			{Name: aws.String("symbol"), Value: aws.String(st.Symbol)},
		}
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("CycleSuccess"),
				Dimensions: dims,
				Unit:       cwtypes.StandardUnitCount,
				Value:      aws.Float64(float64(st.Success)),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("CycleFailure"),
				Dimensions: dims,
				Unit:       cwtypes.StandardUnitCount,
				Value:      aws.Float64(float64(st.Failure)),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("CycleLatency"),
				Dimensions: dims,
				Unit:       cwtypes.StandardUnitMilliseconds,
				Value:      aws.Float64(float64(st.LastLatency.Milliseconds())),
			},
		)
	}
	if len(data) == 0 {
		return
	}

	if _, err := state.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(state.namespace),
		MetricData: data,
	}); err != nil {
		logger.GetLogger().WithComponent("cloudwatch").WithError(err).Warn("failed to publish CloudWatch metrics")
	}
}

// Run publishes on every flush interval until ctx is cancelled.
func Run(ctx context.Context, r *Recorder, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			Publish(ctx, r)
		}
	}
}
