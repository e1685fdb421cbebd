package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineCollector exposes frame loop, picking and recording metrics. It
// satisfies core.MetricsRecorder.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	FrameDuration prometheus.Histogram
	Frames        *prometheus.CounterVec
	Picks         *prometheus.CounterVec
	Bodies        *prometheus.GaugeVec
	SimTime       prometheus.Gauge
	PosesRecorded prometheus.Counter
}

// NewEngineCollector registers engine metrics against the provided registerer.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := gathererFor(reg)

	frameHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orrery_frame_duration_seconds",
		Help:    "Time spent computing one frame of poses and effects.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})
	frameHistogram, err := registerHistogram(reg, frameHistogram, "orrery_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_frames_total",
		Help: "Frames stepped, labeled by whether the simulation was paused.",
	}, []string{"paused"})
	frames, err = registerCounterVec(reg, frames, "orrery_frames_total")
	if err != nil {
		return nil, err
	}

	picks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orrery_picks_total",
		Help: "Pointer picks, labeled by result (hit or miss).",
	}, []string{"result"})
	picks, err = registerCounterVec(reg, picks, "orrery_picks_total")
	if err != nil {
		return nil, err
	}

	bodies := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "orrery_bodies",
		Help: "Registered bodies by kind.",
	}, []string{"kind"})
	bodies, err = registerGaugeVec(reg, bodies, "orrery_bodies")
	if err != nil {
		return nil, err
	}

	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "orrery_sim_time",
		Help: "Current simulated time in orbit time units.",
	}), "orrery_sim_time")
	if err != nil {
		return nil, err
	}

	poses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orrery_recorded_poses_total",
		Help: "Body poses written by the trajectory recorder.",
	})
	poses, err = registerCounter(reg, poses, "orrery_recorded_poses_total")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:      gatherer,
		FrameDuration: frameHistogram,
		Frames:        frames,
		Picks:         picks,
		Bodies:        bodies,
		SimTime:       simTime,
		PosesRecorded: poses,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *EngineCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	return handlerFor(c.Gatherer())
}

// ObserveFrame records one frame step.
func (c *EngineCollector) ObserveFrame(d time.Duration, paused bool) {
	if c == nil {
		return
	}
	if c.FrameDuration != nil {
		c.FrameDuration.Observe(d.Seconds())
	}
	if c.Frames != nil {
		label := "false"
		if paused {
			label = "true"
		}
		c.Frames.WithLabelValues(label).Inc()
	}
}

// ObservePick counts a pick by result.
func (c *EngineCollector) ObservePick(hit bool) {
	if c == nil || c.Picks == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.Picks.WithLabelValues(result).Inc()
}

// SetBodyCount updates the body gauge for one kind.
func (c *EngineCollector) SetBodyCount(kind string, n int) {
	if c == nil || c.Bodies == nil {
		return
	}
	c.Bodies.WithLabelValues(kind).Set(float64(n))
}

// SetSimTime updates the simulated time gauge.
func (c *EngineCollector) SetSimTime(t float64) {
	if c == nil || c.SimTime == nil {
		return
	}
	c.SimTime.Set(t)
}

// AddRecordedPoses counts poses persisted by the recorder.
func (c *EngineCollector) AddRecordedPoses(n int) {
	if c == nil || c.PosesRecorded == nil || n <= 0 {
		return
	}
	c.PosesRecorded.Add(float64(n))
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
