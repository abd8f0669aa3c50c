package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/rjoseph-dev/crewsched/core/metrics"
	"github.com/rjoseph-dev/crewsched/core/model"
	"github.com/rjoseph-dev/crewsched/infra/logger"
)

// InfluxSink writes schedule events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB
// endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordScheduleResult writes accepted entries as line protocol events.
func (s *InfluxSink) RecordScheduleResult(res []coremetrics.ScheduleResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range res {
		p := write.NewPointWithMeasurement("schedule_event").
			AddTag("run_id", r.RunID).
			AddTag("schedule_type", string(r.ScheduleType)).
			AddTag("route_id", string(r.Entry.Route)).
			AddTag("bus_id", string(r.Entry.Bus)).
			AddTag("component", "schedule_generator").
			AddField("driver_fatigue", r.Entry.DriverFatigue).
			AddField("conductor_fatigue", r.Entry.ConductorFatigue).
			AddField("combined_fatigue", r.Entry.CombinedFatigue).
			AddField("service_date", r.Entry.Date.Format("2006-01-02")).
			SetTime(r.GeneratedAt)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordConflicts writes rejected slots.
func (s *InfluxSink) RecordConflicts(runID string, conflicts []model.ConflictRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, c := range conflicts {
		p := write.NewPointWithMeasurement("schedule_conflict").
			AddTag("run_id", runID).
			AddTag("route_id", string(c.Route)).
			AddTag("component", "schedule_generator").
			AddField("reason", c.Reason).
			AddField("service_date", c.Date.Format("2006-01-02")).
			SetTime(time.Now())
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary writes a per-run rollup.
func (s *InfluxSink) RecordRunSummary(summary model.Summary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("run_id", summary.RunID).
		AddTag("schedule_type", string(summary.ScheduleType)).
		AddTag("component", "schedule_generator").
		AddField("entries", summary.TotalGenerated).
		AddField("conflicts", summary.ConflictCount).
		AddField("conflict_ratio", ratio(summary.ConflictCount, summary.TotalGenerated+summary.ConflictCount)).
		SetTime(summary.GeneratedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 1000
}
