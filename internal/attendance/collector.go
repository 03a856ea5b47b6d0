package attendance

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"attendverify/internal/geofence"
	"attendverify/internal/metrics"
	"attendverify/internal/session"
	"attendverify/internal/verifier"
)

// FaceVerifier is the external 1:1 face match collaborator.
type FaceVerifier interface {
	Verify(ctx context.Context, subjectID, imageURL string) (verifier.FaceResult, error)
}

// LivenessVerifier is the external anti-spoofing collaborator.
type LivenessVerifier interface {
	Check(ctx context.Context, imageURL string) (verifier.LivenessResult, error)
}

// Collector gathers the verification channels for one submission. The face
// and liveness calls are untrusted I/O and run concurrently, each bounded by
// checkTimeout; the geofence check is pure and evaluated inline.
type Collector struct {
	face         FaceVerifier
	liveness     LivenessVerifier
	checkTimeout time.Duration
	metrics      *metrics.Metrics
}

// NewCollector wires the external verifiers.
func NewCollector(face FaceVerifier, liveness LivenessVerifier, checkTimeout time.Duration, m *metrics.Metrics) *Collector {
	if checkTimeout <= 0 {
		checkTimeout = 5 * time.Second
	}
	return &Collector{face: face, liveness: liveness, checkTimeout: checkTimeout, metrics: m}
}

// Collect runs every check the session requires and merges the results.
// A verifier error or timeout marks that check failed, never skipped: when a
// required channel cannot answer, the submission must not pass on its
// account. One failing check does not cancel the others; partial evidence is
// kept for the record.
func (c *Collector) Collect(ctx context.Context, s session.Session, sub Submission) ResultVector {
	v := ResultVector{FaceOK: true, GeoOK: true, LivenessOK: true}

	c.collectGeo(s, sub, &v)

	g, _ := errgroup.WithContext(ctx)
	if s.RequireFace {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
			defer cancel()

			start := time.Now()
			res, err := c.face.Verify(checkCtx, sub.SubjectID, sub.ImageURL)
			c.observe("face", time.Since(start))

			if err != nil {
				log.Printf("session %s subject %s: face verifier unavailable: %v", sub.SessionID, sub.SubjectID, err)
				v.FaceOK = false
				v.FaceCause = CauseUnavailable
				c.countFailure("face", CauseUnavailable)
				return nil
			}
			v.FaceOK = res.Matched
			v.FaceScore = &res.Confidence
			if !res.Matched {
				v.FaceCause = CauseMismatch
				c.countFailure("face", CauseMismatch)
			}
			return nil
		})
	}
	if s.RequireLiveness {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
			defer cancel()

			start := time.Now()
			res, err := c.liveness.Check(checkCtx, sub.ImageURL)
			c.observe("liveness", time.Since(start))

			if err != nil {
				log.Printf("session %s subject %s: liveness verifier unavailable: %v", sub.SessionID, sub.SubjectID, err)
				v.LivenessOK = false
				v.LivenessCause = CauseUnavailable
				c.countFailure("liveness", CauseUnavailable)
				return nil
			}
			v.LivenessOK = res.Live
			v.LivenessScore = &res.Score
			if !res.Live {
				v.LivenessCause = CauseMismatch
				c.countFailure("liveness", CauseMismatch)
			}
			return nil
		})
	}
	_ = g.Wait()

	return v
}

// collectGeo evaluates the geofence. Missing coordinates or a session without
// a configured center cannot be evaluated; if the session requires the geo
// check that fails it closed.
func (c *Collector) collectGeo(s session.Session, sub Submission, v *ResultVector) {
	if sub.Latitude == nil || sub.Longitude == nil {
		if s.RequireGeo {
			v.GeoOK = false
			v.GeoCause = CauseUnavailable
			c.countFailure("geo", CauseUnavailable)
		}
		return
	}

	res := geofence.Evaluate(geofence.Point{Lat: *sub.Latitude, Lon: *sub.Longitude}, s.Center, s.FenceRadiusM)
	if res.Applicable {
		d := res.DistanceM
		v.DistanceM = &d
	}
	if !s.RequireGeo {
		return
	}

	switch {
	case !res.Applicable:
		v.GeoOK = false
		v.GeoCause = CauseUnavailable
		c.countFailure("geo", CauseUnavailable)
	case !res.Within:
		v.GeoOK = false
		v.GeoCause = CauseMismatch
		c.countFailure("geo", CauseMismatch)
	}
}

func (c *Collector) observe(channel string, d time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveCheckLatency(channel, d)
	}
}

func (c *Collector) countFailure(channel string, cause Cause) {
	if c.metrics != nil {
		c.metrics.IncCheckFailure(channel, string(cause))
	}
}
